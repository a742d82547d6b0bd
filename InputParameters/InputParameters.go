package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/godiffusion/linsolve"
	"github.com/notargets/godiffusion/manufactured"
	"github.com/notargets/godiffusion/utils"
)

// Problem families
const (
	FEM2D = "fem2d"
	MFD2D = "mfd2d"
	VEM2D = "vem2d"
	VEM3D = "vem3d"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title              string              `yaml:"Title"`
	Tensor             []float64           `yaml:"Tensor"` // Dxx, Dyy, Dxy in 2D; Dxx, Dyy, Dzz, Dxy, Dxz, Dyz in 3D
	ExactSolution      string              `yaml:"ExactSolution"`
	Affine             []float64           `yaml:"Affine"` // C0, Cx, Cy, Cz
	Solver             linsolve.Parameters `yaml:"Solver"`
	Partitions         int                 `yaml:"Partitions"`
	PartitionObjective string              `yaml:"PartitionObjective"` // vol or cut
}

// Defaults returns the parameters each family runs with when no input file
// is given
func Defaults(family string) (ip *InputParameters, err error) {
	ip = &InputParameters{Partitions: 1, PartitionObjective: "vol"}
	switch family {
	case FEM2D:
		ip.Title = "2D Poisson, P1 finite elements"
		ip.Tensor = []float64{100, 1, 0}
		ip.ExactSolution = manufactured.NameQuadraticX
		ip.Solver = linsolve.NewParameters(linsolve.CG, linsolve.Jacobi)
	case MFD2D:
		ip.Title = "2D diffusion, mixed mimetic finite differences"
		ip.Tensor = []float64{1, 10, 0}
		ip.ExactSolution = manufactured.NameLinearX
		ip.Solver = linsolve.NewParameters(linsolve.GMRES, linsolve.None)
		ip.Solver.MaxIterations = 10000
	case VEM2D, VEM3D:
		ip.Title = "2D diffusion, virtual elements"
		ip.Tensor = []float64{1, 1, 0}
		ip.ExactSolution = manufactured.NameLinearX
		if family == VEM3D {
			ip.Title = "3D diffusion, virtual elements"
			ip.Tensor = []float64{10, 2, 1, 0, 0, 0}
			ip.ExactSolution = manufactured.NameSine
		}
		ip.Solver = linsolve.NewParameters(linsolve.BiCGStab, linsolve.ILU0)
		ip.Solver.RelativeTolerance = 1.e-10
		ip.Solver.AbsoluteTolerance = 1.e-13
	default:
		return nil, fmt.Errorf("unknown problem family %q", family)
	}
	return
}

// Parse overrides the receiver with the values present in data
func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// Validate checks the parameters against the mesh dimension
func (ip *InputParameters) Validate(dim int) (err error) {
	var D utils.Tensor
	if D, err = ip.DiffusionTensor(); err != nil {
		return
	}
	if D.Dim != dim {
		return fmt.Errorf("%d tensor components for a %dD mesh: %w", len(ip.Tensor), dim, utils.ErrTensorComponents)
	}
	if _, err = ip.Exact(dim); err != nil {
		return
	}
	if ip.Partitions < 1 {
		return fmt.Errorf("Partitions must be positive, got %d", ip.Partitions)
	}
	switch ip.PartitionObjective {
	case "vol", "cut":
	default:
		return fmt.Errorf("unknown partition objective %q, want vol or cut", ip.PartitionObjective)
	}
	return ip.Solver.Validate()
}

func (ip *InputParameters) DiffusionTensor() (utils.Tensor, error) {
	return utils.NewTensor(ip.Tensor)
}

func (ip *InputParameters) Exact(dim int) (manufactured.Solution, error) {
	return manufactured.Parse(ip.ExactSolution, dim, ip.Affine)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%v\t\t= Diffusion Tensor\n", ip.Tensor)
	fmt.Printf("[%s]\t\t= Exact Solution\n", ip.ExactSolution)
	if ip.ExactSolution == manufactured.NameAffine {
		fmt.Printf("%v\t\t= Affine Coefficients\n", ip.Affine)
	}
	fmt.Printf("[%s]\t\t= Linear Solver\n", ip.Solver)
	fmt.Printf("%8.2e\t\t= Relative Tolerance\n", ip.Solver.RelativeTolerance)
	fmt.Printf("%8.2e\t\t= Absolute Tolerance\n", ip.Solver.AbsoluteTolerance)
	fmt.Printf("[%d]\t\t\t= Max Iterations\n", ip.Solver.MaxIterations)
	if ip.Partitions > 1 {
		fmt.Printf("[%d]\t\t\t= Partitions (%s)\n", ip.Partitions, ip.PartitionObjective)
	}
}
