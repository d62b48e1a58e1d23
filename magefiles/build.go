//go:build mage

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// Compiles every .vert and .frag file under assets/shaders to SPIR-V next to it (world.vert -> world.vert.spv).
func (Build) Shaders() error {
	return filepath.WalkDir(shaderDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".vert", ".frag":
		default:
			return nil
		}
		_, err = executeCmd("glslc", withArgs(path, "-o", path+".spv"), withStream())
		return err
	})
}

// Builds the smok CLI into bin/.
func (Build) Cli() error {
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "smok"), "./cmd/smok"), withStream())
	return err
}
