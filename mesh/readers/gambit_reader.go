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

// gambitElement maps Gambit NTYPE to element types and the permutation from
// Gambit node order to the VTK order used by the mesh
var gambitElement = map[int]struct {
	etype utils.ElementType
	order []int
}{
	1: {utils.Line, []int{0, 1}},
	2: {utils.Quad, []int{0, 1, 2, 3}},
	3: {utils.Triangle, []int{0, 1, 2}},
	4: {utils.Hex, []int{0, 1, 3, 2, 4, 5, 7, 6}},
	5: {utils.Prism, []int{0, 1, 2, 3, 4, 5}},
	6: {utils.Tet, []int{0, 1, 2, 3}},
	7: {utils.Pyramid, []int{0, 1, 3, 2, 4}},
}

// ReadGambitNeutral reads a Gambit neutral file (.neu). Element groups become
// element tags, boundary condition sets are skipped.
func ReadGambitNeutral(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		msh     = mesh.NewMesh()
		scanner = bufio.NewScanner(file)
		// Control variables from header
		numnp, nelem, ndfcd int
		elemIndex                  = make(map[int]int) // file element ID -> mesh element
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			// Next line contains the actual values
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected EOF after control header")
			}
			values, err := parseInts(strings.Fields(scanner.Text()))
			if err != nil || len(values) < 5 {
				return nil, fmt.Errorf("invalid control line: %q", scanner.Text())
			}
			numnp, nelem, ndfcd = values[0], values[1], values[4]
			break
		}
	}
	if ndfcd != 2 && ndfcd != 3 {
		return nil, fmt.Errorf("unsupported coordinate dimension NDFCD=%d", ndfcd)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.Contains(line, "NODAL COORDINATES"):
			for i := 0; i < numnp; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 1+ndfcd {
					return nil, fmt.Errorf("invalid node line: %q", scanner.Text())
				}
				nodeID, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, fmt.Errorf("invalid node id: %w", err)
				}
				xyz, err := parseFloats(fields[1 : 1+ndfcd])
				if err != nil {
					return nil, err
				}
				msh.AddNode(nodeID, xyz)
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields, err := parseInts(strings.Fields(scanner.Text()))
				if err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid element line: %q", scanner.Text())
				}
				// Long node lists continue on the following lines
				for len(fields) < 3+fields[2] {
					if !scanner.Scan() {
						return nil, fmt.Errorf("unexpected EOF in element %d", fields[0])
					}
					more, err := parseInts(strings.Fields(scanner.Text()))
					if err != nil {
						return nil, err
					}
					fields = append(fields, more...)
				}
				ge, ok := gambitElement[fields[1]]
				if !ok || len(ge.order) != fields[2] {
					return nil, fmt.Errorf("element %d: unsupported type %d with %d nodes",
						fields[0], fields[1], fields[2])
				}
				nodes := make([]int, len(ge.order))
				for j, k := range ge.order {
					nodes[j] = fields[3+k]
				}
				elemIndex[fields[0]] = len(msh.EToV)
				if err = msh.AddElement(ge.etype, 0, nodes); err != nil {
					return nil, fmt.Errorf("element %d: %w", fields[0], err)
				}
			}

		case strings.Contains(line, "ELEMENT GROUP"):
			if err = readGambitGroup(scanner, msh, elemIndex); err != nil {
				return nil, err
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if err = msh.BuildConnectivity(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return msh, nil
}

// readGambitGroup reads one group:
//
//	GROUP: id ELEMENTS: n MATERIAL: m NFLAGS: k
//	name
//	flags
//	element ids ...
func readGambitGroup(scanner *bufio.Scanner, msh *mesh.Mesh, elemIndex map[int]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in element group")
	}
	var (
		parts                      = strings.Fields(scanner.Text())
		groupID, numElems, nflags int
	)
	for i := 0; i+1 < len(parts); i++ {
		switch parts[i] {
		case "GROUP:":
			groupID, _ = strconv.Atoi(parts[i+1])
		case "ELEMENTS:":
			numElems, _ = strconv.Atoi(parts[i+1])
		case "NFLAGS:":
			nflags, _ = strconv.Atoi(parts[i+1])
		}
	}
	// Entity name, then the flags line
	scanner.Scan()
	if nflags > 0 {
		scanner.Scan()
	}
	for read := 0; read < numElems; {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in group %d", groupID)
		}
		ids, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil {
			return err
		}
		for _, id := range ids {
			if k, ok := elemIndex[id]; ok {
				msh.ElementTags[k] = groupID
			}
		}
		read += len(ids)
	}
	return skipTo(scanner, "ENDOFSECTION")
}
