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
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/notargets/godiffusion/InputParameters"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/mesh/readers"
	"github.com/notargets/godiffusion/model_problems"
	"github.com/notargets/godiffusion/model_problems/DiffusionMFD"
	"github.com/notargets/godiffusion/model_problems/DiffusionVEM"
	"github.com/notargets/godiffusion/model_problems/PoissonFEM"
)

// ModelDiffusion is one solver run as requested on the command line
type ModelDiffusion struct {
	Family     string
	MeshFile   string
	ICFile     string
	Output     string
	Partitions int // 0 keeps the input file value
	Objective  string
	Graph      bool
	Delay      time.Duration
}

const exampleInput = `
########################################
Title: "Test Case"
Tensor: [1, 10, 0]          # Dxx, Dyy, Dxy (3D: Dxx, Dyy, Dzz, Dxy, Dxz, Dyz)
ExactSolution: linear-x     # linear-x, quadratic-x, sine or affine
Affine: [0, 1, 2, 3]        # C0, Cx, Cy, Cz for affine
Solver:
  Method: gmres             # cg, bicgstab, gmres or lu
  Preconditioner: none      # none, jacobi or ilu0
  RelativeTolerance: 1.e-12
  MaxIterations: 10000
Partitions: 1
PartitionObjective: vol     # vol or cut
########################################
`

// newSolveCmd builds the command running one problem family on a mesh file
func newSolveCmd(family, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   family + " meshFile",
		Short: short,
		Long: short + `, reading the mesh from a Gambit (.neu), Gmsh (.msh),
SU2 (.su2) or legacy VTK (.vtk) file. Parameters missing from the input
file keep their defaults. Example input file:
` + exampleInput,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			md := &ModelDiffusion{
				Family:    family,
				MeshFile:  args[0],
				ICFile:    flagOrConfig(cmd, "inputConditionsFile"),
				Output:    flagOrConfig(cmd, "output"),
				Objective: flagOrConfig(cmd, "partitioner"),
			}
			if md.Partitions, err = strconv.Atoi(flagOrConfig(cmd, "partitions")); err != nil {
				return
			}
			md.Graph, _ = cmd.Flags().GetBool("graph")
			dr, _ := cmd.Flags().GetInt("delay")
			md.Delay = time.Duration(dr) * time.Millisecond
			_, err = RunDiffusion(md)
			return
		},
	}
	c.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Tensor\n\t- ExactSolution\n\t- Solver")
	c.Flags().StringP("output", "o", "res", "prefix of the output files")
	c.Flags().IntP("partitions", "p", 0, "number of partitions, overrides the input file")
	c.Flags().String("partitioner", "", "METIS objective, vol or cut, overrides the input file")
	c.Flags().BoolP("graph", "g", false, "display the solution when done (2D, single partition)")
	c.Flags().IntP("delay", "d", 0, "milliseconds to hold the graph")
	return c
}

// processInput starts from the family defaults and overlays the input file
func processInput(family, icFile string) (ip *InputParameters.InputParameters, err error) {
	if ip, err = InputParameters.Defaults(family); err != nil {
		return
	}
	if len(icFile) == 0 {
		return
	}
	var data []byte
	if data, err = os.ReadFile(icFile); err != nil {
		return
	}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", icFile, err)
	}
	return
}

// NewProblem builds the driver of a family over m
func NewProblem(family string, m *mesh.Mesh, ip *InputParameters.InputParameters) (
	p model_problems.Problem, pp *model_problems.Partitioned, err error) {
	switch family {
	case InputParameters.FEM2D:
		var c *PoissonFEM.Poisson
		if c, err = PoissonFEM.NewPoisson(m, ip); err == nil {
			p, pp = c, c.Partitioned
		}
	case InputParameters.MFD2D:
		var c *DiffusionMFD.Diffusion
		if c, err = DiffusionMFD.NewDiffusion(m, ip); err == nil {
			p, pp = c, c.Partitioned
		}
	case InputParameters.VEM2D, InputParameters.VEM3D:
		want := 2
		if family == InputParameters.VEM3D {
			want = 3
		}
		if m.Dim != want {
			return nil, nil, fmt.Errorf("%s needs a %dD mesh, got %dD", family, want, m.Dim)
		}
		var c *DiffusionVEM.Diffusion
		if c, err = DiffusionVEM.NewDiffusion(m, ip); err == nil {
			p, pp = c, c.Partitioned
		}
	default:
		err = fmt.Errorf("unknown problem family %q", family)
	}
	return
}

// RunDiffusion reads the inputs, solves, writes the output files and prints
// the error and timings
func RunDiffusion(md *ModelDiffusion) (p model_problems.Problem, err error) {
	ip, err := processInput(md.Family, md.ICFile)
	if err != nil {
		return
	}
	if md.Partitions > 0 {
		ip.Partitions = md.Partitions
	}
	if len(md.Objective) != 0 {
		ip.PartitionObjective = md.Objective
	}
	ip.Print()
	m, err := readers.ReadMeshFile(md.MeshFile)
	if err != nil {
		return
	}
	m.PrintStatistics()
	p, pp, err := NewProblem(md.Family, m, ip)
	if err != nil {
		return
	}
	files, err := model_problems.Run(p, md.Output)
	if err != nil {
		return
	}
	_, errC := p.Result()
	model_problems.PrintSummary(ip.Title, errC, p.Timers(), os.Stdout)
	for _, f := range files {
		fmt.Printf("Wrote %s\n", f)
	}
	if md.Graph {
		if m.Dim != 2 || len(pp.Parts) != 1 {
			fmt.Println("graph is only drawn for 2D meshes on a single partition")
			return
		}
		var sol *fields.Field
		if sol, err = pp.Stores[0].Field(fields.Solution); err != nil {
			return
		}
		model_problems.PlotSolution(m, model_problems.NodeValues(m, sol), md.Delay)
	}
	return
}
