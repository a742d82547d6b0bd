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
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/godiffusion/InputParameters"
	"github.com/notargets/godiffusion/model_problems"
	"github.com/notargets/godiffusion/report"
)

// ConvergenceCmd measures the observed order of a scheme under refinement
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence family",
	Short: "Run a family on a sequence of refined generated meshes and report the order",
	Long: `
Solves on generated meshes with n, 2n, 4n ... cells per direction and prints
the max norm error and the observed order at each level. The table can be
appended to a CSV file read back by tools/convOrder.

godiffusion convergence fem2d --shape tri -n 4 --levels 4 --csv study.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			family    = args[0]
			shape, _  = cmd.Flags().GetString("shape")
			n, _      = cmd.Flags().GetInt("n")
			levels, _ = cmd.Flags().GetInt("levels")
			amp, _    = cmd.Flags().GetFloat64("perturb")
			csvFile   = flagOrConfig(cmd, "csv")
			cs        *report.ConvergenceStudy
		)
		ip, err := processInput(family, flagOrConfig(cmd, "inputConditionsFile"))
		if err != nil {
			return
		}
		if len(shape) == 0 {
			shape = defaultShape(family)
		}
		if cs, err = runConvergence(family, shape, n, levels, amp, ip); err != nil {
			return
		}
		cs.Print(os.Stdout)
		if len(csvFile) == 0 {
			return
		}
		var f *os.File
		if f, err = os.Create(csvFile); err != nil {
			return
		}
		defer f.Close()
		return report.WriteCSV(f, cs)
	},
}

func defaultShape(family string) string {
	switch family {
	case InputParameters.FEM2D:
		return "tri"
	case InputParameters.VEM3D:
		return "hex"
	}
	return "quad"
}

func runConvergence(family, shape string, n, levels int, amp float64,
	ip *InputParameters.InputParameters) (cs *report.ConvergenceStudy, err error) {
	if levels < 1 {
		return nil, fmt.Errorf("need at least one level, got %d", levels)
	}
	cs = report.NewConvergenceStudy(fmt.Sprintf("%s %s %s", family, shape, ip.ExactSolution))
	for l := 0; l < levels; l++ {
		m, err := generateMesh(shape, n<<l, amp, int64(l+1))
		if err != nil {
			return nil, err
		}
		p, _, err := NewProblem(family, m, ip)
		if err != nil {
			return nil, err
		}
		t := p.Timers()
		if err = t.Time(report.Init, p.Init); err != nil {
			return nil, err
		}
		if err = t.Time(report.Assemble, p.Assemble); err != nil {
			return nil, err
		}
		if err = p.Solve(); err != nil {
			return nil, err
		}
		ndof, errC := p.Result()
		log.Printf("level %d: n = %d, %d unknowns, |err|_C = %.6e", l, n<<l, ndof, errC)
		cs.Add(model_problems.MeshSize(m), ndof, errC)
	}
	return
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	ConvergenceCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters")
	ConvergenceCmd.Flags().String("shape", "", "cell shape: tri, quad, hex or tet (default by family)")
	ConvergenceCmd.Flags().IntP("n", "n", 4, "cells per direction on the coarsest level")
	ConvergenceCmd.Flags().Int("levels", 3, "number of refinement levels")
	ConvergenceCmd.Flags().Float64("perturb", 0, "random displacement of interior vertices, fraction of the cell size")
	ConvergenceCmd.Flags().String("csv", "", "write the study to this CSV file")
}
