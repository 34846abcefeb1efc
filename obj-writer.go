package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonnenauha/obj-decimate/objectfile"
)

// Writer serializes an OBJ document.
type Writer struct {
	obj *objectfile.OBJ
	// gzip level, 0 writes plain text
	gzip int
	// leave out the timestamp of the header comment
	noTimestamp bool
}

func (wr *Writer) WriteFile(path string) (int, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	linesWritten, errWrite := wr.WriteTo(f)
	if cErr := f.Close(); cErr != nil && errWrite == nil {
		errWrite = cErr
	}
	return linesWritten, errWrite
}

func (wr *Writer) WriteTo(writer io.Writer) (linesWritten int, err error) {
	var gz *gzip.Writer
	if wr.gzip >= gzip.BestSpeed && wr.gzip <= gzip.BestCompression {
		if gz, err = gzip.NewWriterLevel(writer, wr.gzip); err != nil {
			return 0, err
		}
		writer = gz
	}
	w := bufio.NewWriter(writer)
	defer func() {
		if fErr := w.Flush(); fErr != nil && err == nil {
			err = fErr
		}
		if gz != nil {
			if cErr := gz.Close(); cErr != nil && err == nil {
				err = cErr
			}
		}
	}()

	ln := func() {
		fmt.Fprint(w, "\n")
		linesWritten++
	}
	writeLine := func(t objectfile.Type, value string, newline bool) {
		fmt.Fprintf(w, "%s %s\n", t, value)
		linesWritten++
		if newline {
			ln()
		}
	}
	writeLines := func(t objectfile.Type, values []string, newline bool) {
		for _, v := range values {
			writeLine(t, v, false)
		}
		if newline && len(values) > 0 {
			ln()
		}
	}
	writeComments := func(values []string, newline bool) {
		comments := values
		// trim empty lines at both ends, keep the ones inside long comments
		for len(comments) > 0 && comments[0] == "" {
			comments = comments[1:]
		}
		for len(comments) > 0 && comments[len(comments)-1] == "" {
			comments = comments[0 : len(comments)-1]
		}
		writeLines(objectfile.Comment, comments, newline)
	}

	obj := wr.obj

	header := fmt.Sprintf("Processed with %s %s", ApplicationName, getVersion(false))
	if !wr.noTimestamp {
		header += " | " + time.Now().UTC().Format(time.RFC3339)
	}
	writeLine(objectfile.Comment, header+" | "+ApplicationURL, true)

	writeComments(obj.Comments, true)
	writeLines(objectfile.MtlLib, obj.MaterialLibraries, true)

	geom := obj.Geometry
	stats := geom.Stats()
	section := func(t objectfile.Type, n int, first bool) {
		if !first {
			ln()
		}
		writeLine(objectfile.Comment, fmt.Sprintf("%s [%d]", t.Name(), n), true)
	}
	if n := stats.Vertices; n > 0 {
		section(objectfile.Vertex, n, true)
		for _, v := range geom.Vertices {
			writeLine(objectfile.Vertex, objectfile.FormatVec3(v), false)
		}
	}
	if n := stats.Normals; n > 0 {
		section(objectfile.Normal, n, stats.Vertices == 0)
		for _, v := range geom.Normals {
			writeLine(objectfile.Normal, objectfile.FormatVec3(v), false)
		}
	}
	if n := stats.UVs; n > 0 {
		section(objectfile.UV, n, stats.Vertices+stats.Normals == 0)
		for _, v := range geom.UVs {
			writeLine(objectfile.UV, objectfile.FormatVec2(v), false)
		}
	}
	ln()

	// objects keep the parsing order of o/g
	writeLine(objectfile.Comment, fmt.Sprintf("objects [%d]", len(obj.Objects)), true)
	for _, child := range obj.Objects {
		writeComments(child.Comments, true)
		writeLine(child.Type, child.Name, false)
		// written on every child, easier to read and costs a few bytes
		if len(child.Material) > 0 {
			writeLine(objectfile.MtlUse, child.Material, false)
		}
		ln()
		for _, f := range child.Faces {
			if len(f.Smoothing) > 0 {
				writeLine(objectfile.SmoothingGroup, f.Smoothing, false)
			}
			writeLine(objectfile.Face, f.String(), false)
		}
		ln()
	}
	return linesWritten, nil
}
