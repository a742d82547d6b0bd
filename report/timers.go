package report

import (
	"fmt"
	"io"
	"time"
)

type Phase uint8

const (
	Assemble Phase = iota
	Precond
	Solve
	IO
	Update
	Init
	numPhases
)

func (p Phase) String() string {
	return [...]string{"assemble", "precond", "solve", "IO", "update", "init"}[p]
}

// Timers accumulate wall clock time per phase of a run
type Timers struct {
	start  time.Time
	phases [numPhases]time.Duration
}

func NewTimers() *Timers { return &Timers{start: time.Now()} }

// Time runs fn and charges its duration to phase
func (t *Timers) Time(phase Phase, fn func() error) error {
	st := time.Now()
	err := fn()
	t.phases[phase] += time.Since(st)
	return err
}

func (t *Timers) Add(phase Phase, d time.Duration) { t.phases[phase] += d }

func (t *Timers) Get(phase Phase) time.Duration { return t.phases[phase] }

// Total is the time since the timers were created
func (t *Timers) Total() time.Duration { return time.Since(t.start) }

// Merge keeps, for every phase, the largest time of t and o
func (t *Timers) Merge(o *Timers) {
	for i := range t.phases {
		t.phases[i] = max(t.phases[i], o.phases[i])
	}
	if o.start.Before(t.start) {
		t.start = o.start
	}
}

func (t *Timers) Print(w io.Writer) {
	fmt.Fprintf(w, "\n+=========================\n")
	for p := Phase(0); p < numPhases; p++ {
		fmt.Fprintf(w, "| T_%-9s= %f\n", p, t.phases[p].Seconds())
	}
	fmt.Fprintf(w, "+-------------------------\n")
	fmt.Fprintf(w, "| T_%-9s= %f\n", "total", t.Total().Seconds())
	fmt.Fprintf(w, "+=========================\n")
}
