//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Writes the cube mesh and checks assets/manifest.yaml, creating everything against the in-memory device.
func (Run) Check() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Checking assets...")
	if _, err := executeCmd("go", withArgs("run", "./cmd/smok", "cube", "assets/meshes/cube.smeshdecl", "assets/meshes/cube.smesh"), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("run", "./cmd/smok", "check", "--create", "assets/manifest.yaml"), withStream())
	return err
}
