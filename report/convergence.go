package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// ConvergenceStudy is one scheme run on a sequence of refined meshes
type ConvergenceStudy struct {
	Title  string
	H      []float64 // mesh size
	NumDOF []int
	Errors []float64 // max norm
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{Title: title}
}

func (cs *ConvergenceStudy) Add(h float64, ndof int, err float64) {
	cs.H = append(cs.H, h)
	cs.NumDOF = append(cs.NumDOF, ndof)
	cs.Errors = append(cs.Errors, err)
}

// Orders returns the observed order between each level and the previous
// one, NaN for the first level or when an error vanishes
func (cs *ConvergenceStudy) Orders() (p []float64) {
	p = make([]float64, len(cs.H))
	for i := range p {
		p[i] = math.NaN()
		if i == 0 || cs.Errors[i] <= 0 || cs.Errors[i-1] <= 0 {
			continue
		}
		p[i] = math.Log(cs.Errors[i-1]/cs.Errors[i]) / math.Log(cs.H[i-1]/cs.H[i])
	}
	return
}

func (cs *ConvergenceStudy) Print(w io.Writer) {
	fmt.Fprintf(w, "Title = %s\n", cs.Title)
	fmt.Fprintf(w, "%12s %10s %14s %8s\n", "h", "dofs", "|err|_C", "order")
	for i, p := range cs.Orders() {
		fmt.Fprintf(w, "%12.6e %10d %14.6e %8.3f\n", cs.H[i], cs.NumDOF[i], cs.Errors[i], p)
	}
}

var csvHeader = []string{"Title", "h", "NumDOF", "MaxError"}

// WriteCSV writes the studies one row per level, after a header row
func WriteCSV(w io.Writer, studies ...*ConvergenceStudy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, cs := range studies {
		for i := range cs.H {
			rec := []string{
				cs.Title,
				strconv.FormatFloat(cs.H[i], 'g', -1, 64),
				strconv.Itoa(cs.NumDOF[i]),
				strconv.FormatFloat(cs.Errors[i], 'g', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV collects the rows written by WriteCSV into studies keyed by title,
// returned sorted by title
func ReadCSV(r io.Reader) (studies []*ConvergenceStudy, err error) {
	var records [][]string
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	if records, err = cr.ReadAll(); err != nil {
		return
	}
	byTitle := make(map[string]*ConvergenceStudy)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		var (
			h, e float64
			n    int
		)
		if h, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if n, err = strconv.Atoi(rec[2]); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if e, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		cs, ok := byTitle[rec[0]]
		if !ok {
			cs = NewConvergenceStudy(rec[0])
			byTitle[rec[0]] = cs
			studies = append(studies, cs)
		}
		cs.Add(h, n, e)
	}
	sort.Slice(studies, func(a, b int) bool { return studies[a].Title < studies[b].Title })
	return
}
