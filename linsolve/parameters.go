package linsolve

import "fmt"

const (
	CG       = "cg"
	BiCGStab = "bicgstab"
	GMRES    = "gmres"
	LU       = "lu"

	None   = "none"
	Jacobi = "jacobi"
	ILU0   = "ilu0"
)

// Parameters selects and tunes a linear solver
type Parameters struct {
	Method            string  `yaml:"Method"`
	Preconditioner    string  `yaml:"Preconditioner"`
	RelativeTolerance float64 `yaml:"RelativeTolerance"`
	AbsoluteTolerance float64 `yaml:"AbsoluteTolerance"`
	MaxIterations     int     `yaml:"MaxIterations"` // restart cycles for GMRES
	Restart           int     `yaml:"Restart"` // GMRES only
}

func NewParameters(method, preconditioner string) Parameters {
	return Parameters{
		Method:            method,
		Preconditioner:    preconditioner,
		RelativeTolerance: 1.e-12,
		AbsoluteTolerance: 1.e-14,
		MaxIterations:     5000,
		Restart:           50,
	}
}

// Merge fills unset values of p from defaults
func (p Parameters) Merge(defaults Parameters) Parameters {
	if p.Method == "" {
		p.Method = defaults.Method
	}
	if p.Preconditioner == "" {
		p.Preconditioner = defaults.Preconditioner
	}
	if p.RelativeTolerance == 0 {
		p.RelativeTolerance = defaults.RelativeTolerance
	}
	if p.AbsoluteTolerance == 0 {
		p.AbsoluteTolerance = defaults.AbsoluteTolerance
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = defaults.MaxIterations
	}
	if p.Restart == 0 {
		p.Restart = defaults.Restart
	}
	return p
}

func (p Parameters) Validate() error {
	switch p.Method {
	case CG, BiCGStab, GMRES, LU:
	default:
		return fmt.Errorf("unknown solver method %q, want %s, %s, %s or %s", p.Method, CG, BiCGStab, GMRES, LU)
	}
	switch p.Preconditioner {
	case None, Jacobi, ILU0:
	default:
		return fmt.Errorf("unknown preconditioner %q, want %s, %s or %s", p.Preconditioner, None, Jacobi, ILU0)
	}
	if p.RelativeTolerance < 0 || p.AbsoluteTolerance < 0 {
		return fmt.Errorf("negative solver tolerance")
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("MaxIterations must be positive, got %d", p.MaxIterations)
	}
	if p.Method == GMRES && p.Restart < 1 {
		return fmt.Errorf("GMRES restart must be positive, got %d", p.Restart)
	}
	return nil
}

func (p Parameters) String() string {
	s := p.Method
	if p.Method != LU {
		s += "+" + p.Preconditioner
	}
	if p.Method == GMRES {
		s += fmt.Sprintf("(%d)", p.Restart)
	}
	return s
}
