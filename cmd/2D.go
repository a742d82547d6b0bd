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

var (
	// FEM2DCmd solves the 2D Poisson problem with P1 finite elements
	FEM2DCmd = newSolveCmd(InputParameters.FEM2D, "2D Poisson problem with P1 finite elements on triangles")
	// MFD2DCmd solves 2D diffusion with mixed mimetic finite differences
	MFD2DCmd = newSolveCmd(InputParameters.MFD2D, "2D diffusion with mixed mimetic finite differences on polygons")
	VEM2DCmd = newSolveCmd(InputParameters.VEM2D, "2D diffusion with virtual elements on polygons")
)

func init() {
	rootCmd.AddCommand(FEM2DCmd, MFD2DCmd, VEM2DCmd)
}
