/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/notargets/godiffusion/InputParameters"
)

// VEM3DCmd solves 3D diffusion with virtual elements, optionally partitioned
var VEM3DCmd = newSolveCmd(InputParameters.VEM3D, "3D diffusion with virtual elements on polyhedra")

func init() {
	rootCmd.AddCommand(VEM3DCmd)
}
