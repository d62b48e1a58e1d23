package core

import (
	"errors"
)

var (
	ErrInvalidName          = errors.New("asset name must not be empty")
	ErrDuplicateName        = errors.New("asset name already registered")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrInvalidTransition    = errors.New("invalid asset state transition")
	ErrSettingsNotLoaded    = errors.New("asset settings not loaded")
	ErrDependencyNotCreated = errors.New("dependent resource not created")
	ErrInvalidExtension     = errors.New("invalid file extension")
	ErrFileNotFound         = errors.New("file not found")
	ErrMalformedDescriptor  = errors.New("malformed descriptor")
	ErrInvalidShader        = errors.New("invalid shader binary")
	ErrInvalidLogLevel      = errors.New("invalid log level")
)
