package writers

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
)

// WriteVTK writes the local cells of a partition as a legacy ASCII VTK
// unstructured grid. Node fields become POINT_DATA, cell fields CELL_DATA;
// face fields have no legacy representation and are skipped. A nil store
// writes the geometry only.
func WriteVTK(path string, p *mesh.Partition, store *fields.Store) (err error) {
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(file)

	var (
		m     = p.Mesh
		local = make(map[int]int, len(p.Nodes)) // global node -> output index
		size  int
	)
	for i, n := range p.Nodes {
		local[n] = i
	}
	fmt.Fprintf(w, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(w, "partition %d\n", p.ID)
	fmt.Fprintf(w, "ASCII\nDATASET UNSTRUCTURED_GRID\n")
	fmt.Fprintf(w, "POINTS %d double\n", len(p.Nodes))
	for _, n := range p.Nodes {
		x := m.NodeCoords(n)
		fmt.Fprintf(w, "%.16g %.16g %.16g\n", x[0], x[1], x[2])
	}
	for _, c := range p.Cells {
		size += 1 + len(m.CellNodes(c))
	}
	fmt.Fprintf(w, "CELLS %d %d\n", len(p.Cells), size)
	for _, c := range p.Cells {
		nodes := m.CellNodes(c)
		fmt.Fprintf(w, "%d", len(nodes))
		for _, n := range nodes {
			fmt.Fprintf(w, " %d", local[n])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "CELL_TYPES %d\n", len(p.Cells))
	for _, c := range p.Cells {
		fmt.Fprintf(w, "%d\n", m.ElementTypes[c].VTKType())
	}

	var nodeFields, cellFields []*fields.Field
	if store != nil {
		for _, f := range store.Fields() {
			switch f.Kind {
			case mesh.Node:
				nodeFields = append(nodeFields, f)
			case mesh.Cell:
				cellFields = append(cellFields, f)
			}
		}
	}
	if len(nodeFields) > 0 {
		fmt.Fprintf(w, "POINT_DATA %d\n", len(p.Nodes))
		writeFieldData(w, nodeFields, p.Nodes)
	}
	// Cell ownership always goes out so ghost layers can be told apart
	fmt.Fprintf(w, "CELL_DATA %d\n", len(p.Cells))
	fmt.Fprintf(w, "FIELD FieldData %d\n", len(cellFields)+1)
	fmt.Fprintf(w, "OWNER 1 %d int\n", len(p.Cells))
	for _, c := range p.Cells {
		fmt.Fprintf(w, "%d\n", m.Owner(mesh.Cell, c))
	}
	writeArrays(w, cellFields, p.Cells)
	return w.Flush()
}

func writeFieldData(w *bufio.Writer, fs []*fields.Field, ids []int) {
	fmt.Fprintf(w, "FIELD FieldData %d\n", len(fs))
	writeArrays(w, fs, ids)
}

func writeArrays(w *bufio.Writer, fs []*fields.Field, ids []int) {
	for _, f := range fs {
		fmt.Fprintf(w, "%s %d %d double\n", f.Name, f.NComp, len(ids))
		for _, id := range ids {
			for k, v := range f.Vector(id) {
				if k > 0 {
					fmt.Fprint(w, " ")
				}
				fmt.Fprintf(w, "%.16g", v)
			}
			fmt.Fprintln(w)
		}
	}
}

// WritePVTK writes one file per partition. A single partition goes to
// prefix.vtk; otherwise each goes to prefix_<p>.vtk and prefix.pvtk lists
// them. The names of the files written are returned.
func WritePVTK(prefix string, parts []*mesh.Partition, stores []*fields.Store) (files []string, err error) {
	if len(parts) != len(stores) {
		return nil, fmt.Errorf("%d stores for %d partitions", len(stores), len(parts))
	}
	if len(parts) == 1 {
		path := prefix + ".vtk"
		return []string{path}, WriteVTK(path, parts[0], stores[0])
	}
	for i, p := range parts {
		path := fmt.Sprintf("%s_%d.vtk", prefix, p.ID)
		if err = WriteVTK(path, p, stores[i]); err != nil {
			return
		}
		files = append(files, path)
	}
	index := prefix + ".pvtk"
	var file *os.File
	if file, err = os.Create(index); err != nil {
		return
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	fmt.Fprintf(file, "<File version=\"pvtk-1.0\" dataType=\"vtkUnstructuredGrid\" numberOfPieces=\"%d\">\n", len(files))
	for _, path := range files {
		fmt.Fprintf(file, "  <Piece fileName=\"%s\"/>\n", filepath.Base(path))
	}
	fmt.Fprintf(file, "</File>\n")
	files = append(files, index)
	return
}
