package readers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/godiffusion/mesh"
)

// entityKey identifies a Gmsh geometric entity
type entityKey struct {
	dim, tag int
}

// ReadGmsh4 reads a Gmsh MSH file format version 4.1 (ASCII)
func ReadGmsh4(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		scanner = bufio.NewScanner(file)
		msh     = mesh.NewMesh()
		// First physical tag of each geometric entity
		physical = make(map[entityKey]int)
	)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "$MeshFormat":
			var version string
			if version, err = readMeshFormat(scanner); err != nil {
				return nil, err
			}
			if version != "4.1" {
				return nil, fmt.Errorf("%w: Gmsh version %s", ErrUnsupportedFormat, version)
			}
		case "$Entities":
			if err = readEntities4(scanner, physical); err != nil {
				return nil, err
			}
		case "$Nodes":
			if err = readNodes4(scanner, msh); err != nil {
				return nil, err
			}
		case "$Elements":
			if err = readElements4(scanner, msh, physical); err != nil {
				return nil, err
			}
		default:
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

// readEntities4 records the first physical tag of every entity.
// Points: tag x y z numPhys phys...
// Others: tag minX minY minZ maxX maxY maxZ numPhys phys... numBnd bnd...
func readEntities4(scanner *bufio.Scanner, physical map[entityKey]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Entities")
	}
	counts, err := parseInts(strings.Fields(scanner.Text()))
	if err != nil || len(counts) < 4 {
		return fmt.Errorf("invalid Entities header: %q", scanner.Text())
	}
	for dim := 0; dim < 4; dim++ {
		physOffset := 7
		if dim == 0 {
			physOffset = 4
		}
		for i := 0; i < counts[dim]; i++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading entities")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) <= physOffset {
				return fmt.Errorf("invalid entity line: %q", scanner.Text())
			}
			tag, _ := strconv.Atoi(fields[0])
			if nphys, _ := strconv.Atoi(fields[physOffset]); nphys > 0 && len(fields) > physOffset+1 {
				p, _ := strconv.Atoi(fields[physOffset+1])
				physical[entityKey{dim, tag}] = p
			}
		}
	}
	return skipTo(scanner, "$EndEntities")
}

// readNodes4 reads entity blocks of node tags followed by their coordinates
func readNodes4(scanner *bufio.Scanner, msh *mesh.Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}
	// Format: numEntityBlocks numNodes minNodeTag maxNodeTag
	header, err := parseInts(strings.Fields(scanner.Text()))
	if err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Nodes header: %q", scanner.Text())
	}
	for i := 0; i < header[0]; i++ {
		// entityDim entityTag parametric numNodesInBlock
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in node entity block %d", i)
		}
		block, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil || len(block) < 4 {
			return fmt.Errorf("invalid node block header: %q", scanner.Text())
		}
		if block[2] != 0 {
			return fmt.Errorf("%w: parametric node coordinates", ErrUnsupportedFormat)
		}
		nodeTags := make([]int, block[3])
		for j := range nodeTags {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node tags")
			}
			if nodeTags[j], err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
				return fmt.Errorf("invalid node tag: %w", err)
			}
		}
		for j := range nodeTags {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 3 {
				return fmt.Errorf("invalid node coordinate line: %q", scanner.Text())
			}
			xyz, err := parseFloats(fields[:3])
			if err != nil {
				return err
			}
			msh.AddNode(nodeTags[j], xyz)
		}
	}
	return skipTo(scanner, "$EndNodes")
}

// readElements4 reads entity blocks of "elementTag node..." lines
func readElements4(scanner *bufio.Scanner, msh *mesh.Mesh, physical map[entityKey]int) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}
	// Format: numEntityBlocks numElements minElementTag maxElementTag
	header, err := parseInts(strings.Fields(scanner.Text()))
	if err != nil || len(header) < 4 {
		return fmt.Errorf("invalid Elements header: %q", scanner.Text())
	}
	for i := 0; i < header[0]; i++ {
		// entityDim entityTag elementType numElementsInBlock
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element entity block %d", i)
		}
		block, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil || len(block) < 4 {
			return fmt.Errorf("invalid element block header: %q", scanner.Text())
		}
		etype, known := gmshElementType[block[2]]
		tag, ok := physical[entityKey{block[0], block[1]}]
		if !ok {
			tag = block[1]
		}
		for j := 0; j < block[3]; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading elements")
			}
			if !known {
				continue
			}
			fields, err := parseInts(strings.Fields(scanner.Text()))
			if err != nil {
				return err
			}
			if len(fields) != 1+etype.GetNumNodes() {
				return fmt.Errorf("element %d: %s needs %d nodes, got %d",
					fields[0], etype, etype.GetNumNodes(), len(fields)-1)
			}
			if err = msh.AddElement(etype, tag, fields[1:]); err != nil {
				return fmt.Errorf("element %d: %w", fields[0], err)
			}
		}
	}
	return skipTo(scanner, "$EndElements")
}
