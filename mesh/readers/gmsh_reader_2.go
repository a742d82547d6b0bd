package readers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/godiffusion/mesh"
)

// ReadGmsh22 reads a Gmsh MSH file format version 2.2
func ReadGmsh22(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	msh := mesh.NewMesh()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "$MeshFormat":
			if _, err = readMeshFormat(scanner); err != nil {
				return nil, err
			}
		case "$Nodes":
			if err = readNodes22(scanner, msh); err != nil {
				return nil, err
			}
		case "$Elements":
			if err = readElements22(scanner, msh); err != nil {
				return nil, err
			}
		default:
			// Skip PhysicalNames, Periodic and data sections
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				if err = skipTo(scanner, "$End"+line[1:]); err != nil {
					return nil, err
				}
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if err = msh.BuildConnectivity(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return msh, nil
}

// readNodes22 reads "id x y z" lines
func readNodes22(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid node count: %w", err)
	}
	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}
		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id: %w", err)
		}
		xyz, err := parseFloats(parts[1:4])
		if err != nil {
			return err
		}
		msh.AddNode(nodeID, xyz)
	}
	return skipTo(scanner, "$EndNodes")
}

// readElements22 reads "id type ntags tags... nodes..." lines, the first tag
// being the physical group
func readElements22(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid element count: %w", err)
	}
	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		parts, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil {
			return err
		}
		if len(parts) < 3 {
			return fmt.Errorf("invalid element line: %q", scanner.Text())
		}
		etype, ok := gmshElementType[parts[1]]
		if !ok {
			continue
		}
		var (
			numTags = parts[2]
			tag     int
			nodes   = parts[3+numTags:]
		)
		if numTags > 0 {
			tag = parts[3]
		}
		if len(nodes) != etype.GetNumNodes() {
			return fmt.Errorf("element %d: %s needs %d nodes, got %d",
				parts[0], etype, etype.GetNumNodes(), len(nodes))
		}
		if err = msh.AddElement(etype, tag, nodes); err != nil {
			return fmt.Errorf("element %d: %w", parts[0], err)
		}
	}
	return skipTo(scanner, "$EndElements")
}

func parseFloats(fields []string) (x []float64, err error) {
	x = make([]float64, len(fields))
	for i, f := range fields {
		if x[i], err = strconv.ParseFloat(f, 64); err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
	}
	return
}

func parseInts(fields []string) (n []int, err error) {
	n = make([]int, len(fields))
	for i, f := range fields {
		if n[i], err = strconv.Atoi(f); err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", f, err)
		}
	}
	return
}
