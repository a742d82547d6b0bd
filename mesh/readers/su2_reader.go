package readers

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/utils"
)

// ReadSU2 reads an SU2 native format file. Boundary markers are skipped, the
// boundary is recovered from the cell connectivity.
func ReadSU2(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		msh               = mesh.NewMesh()
		scanner           = bufio.NewScanner(file)
		ndime             int
		hasNDIME, hasPOIN bool
	)
scan:
	for scanner.Scan() {
		line := su2Line(scanner.Text())
		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "NDIME="):
			hasNDIME = true
			if _, err = fmt.Sscanf(line, "NDIME=%d", &ndime); err != nil {
				return nil, fmt.Errorf("invalid NDIME line: %w", err)
			}
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension: NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NPOIN="):
			if !hasNDIME {
				return nil, fmt.Errorf("NPOIN= before NDIME=")
			}
			hasPOIN = true
			var npoin int
			if _, err = fmt.Sscanf(line, "NPOIN=%d", &npoin); err != nil {
				return nil, fmt.Errorf("invalid NPOIN line: %w", err)
			}
			for i := 0; i < npoin; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading nodes")
				}
				fields := strings.Fields(su2Line(scanner.Text()))
				if len(fields) < ndime {
					return nil, fmt.Errorf("invalid node line: expected at least %d coordinates", ndime)
				}
				xyz, err := parseFloats(fields[:ndime])
				if err != nil {
					return nil, err
				}
				// Node ID is implicit (0-based), a trailing index is ignored
				msh.AddNode(i, xyz)
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			if _, err = fmt.Sscanf(line, "NELEM=%d", &nelem); err != nil {
				return nil, fmt.Errorf("invalid NELEM line: %w", err)
			}
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF reading elements")
				}
				fields, err := parseInts(strings.Fields(su2Line(scanner.Text())))
				if err != nil {
					return nil, err
				}
				if len(fields) < 2 {
					return nil, fmt.Errorf("invalid element line %d", i)
				}
				// SU2 uses VTK element numbering
				etype, ok := utils.ElementTypeFromVTK(fields[0])
				if !ok || etype == utils.Polygon {
					return nil, fmt.Errorf("unknown element type: %d", fields[0])
				}
				numNodes := etype.GetNumNodes()
				if len(fields) < numNodes+1 {
					return nil, fmt.Errorf("element type %v expects %d nodes, got %d fields",
						etype, numNodes, len(fields)-1)
				}
				if err = msh.AddElement(etype, 0, fields[1:1+numNodes]); err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
			}

		case strings.HasPrefix(line, "NMARK="):
			// Boundary markers close the file as far as cells are concerned
			break scan
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if !hasNDIME {
		return nil, fmt.Errorf("missing required NDIME= section")
	}
	if !hasPOIN {
		return nil, fmt.Errorf("missing required NPOIN= section")
	}
	if err = msh.BuildConnectivity(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return msh, nil
}

// su2Line strips comments after %
func su2Line(line string) string {
	if idx := strings.Index(line, "%"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
