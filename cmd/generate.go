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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/mesh/writers"
)

// GenerateCmd writes a structured mesh of the unit square or cube
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a structured mesh of the unit square or cube as legacy VTK",
	Long: `
Writes an n x n (x n) grid of the unit square (tri, quad) or cube (hex, tet),
optionally moving the interior vertices at random by a fraction of the local
cell size. The output can be fed to any solver command.

godiffusion generate --shape quad -n 16 --perturb 0.2 -o quad16.vtk`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		shape, _ := cmd.Flags().GetString("shape")
		n, _ := cmd.Flags().GetInt("n")
		amp, _ := cmd.Flags().GetFloat64("perturb")
		seed, _ := cmd.Flags().GetInt64("seed")
		out, _ := cmd.Flags().GetString("output")
		var m *mesh.Mesh
		if m, err = generateMesh(shape, n, amp, seed); err != nil {
			return
		}
		if err = writers.WriteVTK(out, mesh.NewSerialPartition(m), nil); err != nil {
			return
		}
		fmt.Printf("Wrote %s: %d vertices, %d elements\n", out, m.NumVertices, m.NumElements)
		return
	},
}

func generateMesh(shape string, n int, amp float64, seed int64) (m *mesh.Mesh, err error) {
	if n < 1 {
		return nil, fmt.Errorf("need at least one cell per direction, got %d", n)
	}
	if m, err = mesh.NewStructured(shape, n); err != nil {
		return
	}
	if amp != 0 {
		err = m.PerturbInterior(amp, seed)
	}
	return
}

func init() {
	rootCmd.AddCommand(GenerateCmd)
	GenerateCmd.Flags().String("shape", "quad", "cell shape: tri, quad, hex or tet")
	GenerateCmd.Flags().IntP("n", "n", 8, "cells per direction")
	GenerateCmd.Flags().Float64("perturb", 0, "random displacement of interior vertices, fraction of the cell size")
	GenerateCmd.Flags().Int64("seed", 1, "random seed for the perturbation")
	GenerateCmd.Flags().StringP("output", "o", "mesh.vtk", "output file")
}
