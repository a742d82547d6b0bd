package readers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/utils"
)

// ReadVTK reads a legacy ASCII VTK UNSTRUCTURED_GRID file, either the classic
// "CELLS n size" layout or the 5.x OFFSETS / CONNECTIVITY layout. Point and
// cell data sections are ignored.
func ReadVTK(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	header := make([]string, 3)
	for i := range header {
		if header[i], err = reader.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("truncated VTK header: %w", err)
		}
		header[i] = strings.TrimSpace(header[i])
	}
	if !strings.HasPrefix(header[0], "# vtk DataFile") {
		return nil, fmt.Errorf("%w: missing VTK identifier", ErrUnsupportedFormat)
	}
	if strings.ToUpper(header[2]) != "ASCII" {
		return nil, fmt.Errorf("%w: VTK %s encoding", ErrUnsupportedFormat, header[2])
	}

	var (
		tok   = newTokens(reader)
		msh   = mesh.NewMesh()
		cells [][]int
		types []int
	)
scan:
	for tok.Scan() {
		switch strings.ToUpper(tok.Text()) {
		case "DATASET":
			if kind := tok.Next(); strings.ToUpper(kind) != "UNSTRUCTURED_GRID" {
				return nil, fmt.Errorf("%w: VTK dataset %s", ErrUnsupportedFormat, kind)
			}
		case "POINTS":
			n, err := tok.Int()
			if err != nil {
				return nil, err
			}
			tok.Next() // data type
			for i := 0; i < n; i++ {
				xyz := make([]float64, 3)
				for j := range xyz {
					if xyz[j], err = tok.Float(); err != nil {
						return nil, err
					}
				}
				msh.AddNode(i, xyz)
			}
		case "CELLS":
			if cells, err = readVTKCells(tok); err != nil {
				return nil, err
			}
		case "CELL_TYPES":
			n, err := tok.Int()
			if err != nil {
				return nil, err
			}
			types = make([]int, n)
			for i := range types {
				if types[i], err = tok.Int(); err != nil {
					return nil, err
				}
			}
		case "POINT_DATA", "CELL_DATA":
			// Topology is complete
			break scan
		}
	}
	if err = tok.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if len(types) != len(cells) {
		return nil, fmt.Errorf("%d cells but %d cell types", len(cells), len(types))
	}
	for k, nodes := range cells {
		etype, ok := utils.ElementTypeFromVTK(types[k])
		if !ok {
			return nil, fmt.Errorf("cell %d: unsupported VTK type %d", k, types[k])
		}
		if nn := etype.GetNumNodes(); nn > 0 && nn != len(nodes) {
			return nil, fmt.Errorf("cell %d: %s needs %d nodes, got %d", k, etype, nn, len(nodes))
		}
		if err = msh.AddElement(etype, 0, nodes); err != nil {
			return nil, fmt.Errorf("cell %d: %w", k, err)
		}
	}
	if err = msh.BuildConnectivity(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return msh, nil
}

func readVTKCells(tok *tokens) (cells [][]int, err error) {
	var n, size int
	if n, err = tok.Int(); err != nil {
		return
	}
	if size, err = tok.Int(); err != nil {
		return
	}
	if !tok.Scan() {
		return nil, fmt.Errorf("unexpected EOF in CELLS")
	}
	if strings.ToUpper(tok.Text()) == "OFFSETS" {
		// 5.x: n offsets (one more than cells) then size connectivity entries
		tok.Next()
		offsets := make([]int, n)
		for i := range offsets {
			if offsets[i], err = tok.Int(); err != nil {
				return
			}
		}
		if kw := tok.Next(); strings.ToUpper(kw) != "CONNECTIVITY" {
			return nil, fmt.Errorf("expected CONNECTIVITY, got %q", kw)
		}
		tok.Next()
		conn := make([]int, size)
		for i := range conn {
			if conn[i], err = tok.Int(); err != nil {
				return
			}
		}
		for i := 0; i+1 < n; i++ {
			cells = append(cells, conn[offsets[i]:offsets[i+1]])
		}
		return
	}
	// Classic: "count id id ..." per cell, the first count already scanned
	cells = make([][]int, n)
	for i := range cells {
		var count int
		if i == 0 {
			count, err = strconv.Atoi(tok.Text())
		} else {
			count, err = tok.Int()
		}
		if err != nil {
			return nil, fmt.Errorf("invalid cell size: %w", err)
		}
		cells[i] = make([]int, count)
		for j := range cells[i] {
			if cells[i][j], err = tok.Int(); err != nil {
				return
			}
		}
	}
	return
}

// tokens splits the body of a VTK file on white space
type tokens struct {
	*bufio.Scanner
}

func newTokens(r *bufio.Reader) *tokens {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &tokens{s}
}

func (t *tokens) Next() string {
	if !t.Scan() {
		return ""
	}
	return t.Text()
}

func (t *tokens) Int() (int, error) {
	s := t.Next()
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	return n, nil
}

func (t *tokens) Float() (float64, error) {
	s := t.Next()
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %q", s)
	}
	return x, nil
}
