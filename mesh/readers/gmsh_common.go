package readers

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/utils"
)

// ReadGmshAuto automatically detects the Gmsh format version and reads the file
func ReadGmshAuto(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(file)
	var version string

	// Look for $MeshFormat section to determine version
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$MeshFormat" {
			if scanner.Scan() {
				if parts := strings.Fields(scanner.Text()); len(parts) > 0 {
					version = parts[0]
				}
			}
			break
		}
	}
	file.Close()

	switch {
	case strings.HasPrefix(version, "4."):
		return ReadGmsh4(filename)
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	case version == "":
		return nil, fmt.Errorf("%w: could not find $MeshFormat section", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: Gmsh version %s", ErrUnsupportedFormat, version)
	}
}

// gmshElementType maps linear Gmsh element types, higher order types are skipped
var gmshElementType = map[int]utils.ElementType{
	1:  utils.Line,
	2:  utils.Triangle,
	3:  utils.Quad,
	4:  utils.Tet,
	5:  utils.Hex,
	6:  utils.Prism,
	7:  utils.Pyramid,
	15: utils.Point,
}

// readMeshFormat checks the file is ASCII and returns its version
func readMeshFormat(scanner *bufio.Scanner) (version string, err error) {
	if !scanner.Scan() {
		return "", fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return "", fmt.Errorf("invalid MeshFormat line: %q", scanner.Text())
	}
	if parts[1] != "0" {
		return "", fmt.Errorf("%w: binary Gmsh files", ErrUnsupportedFormat)
	}
	return parts[0], skipTo(scanner, "$EndMeshFormat")
}
