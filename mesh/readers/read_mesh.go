package readers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/godiffusion/mesh"
)

var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		// Version is read from the $MeshFormat section
		return ReadGmshAuto(filename)
	case ".su2":
		return ReadSU2(filename)
	case ".vtk":
		return ReadVTK(filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// skipTo advances the scanner past the line equal to endMarker
func skipTo(scanner lineScanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF looking for %s", endMarker)
}

type lineScanner interface {
	Scan() bool
	Text() string
}
