// Package gridfile reads rectangular sub-regions from chunked, compressed,
// self-describing multidimensional array files, fetching only the byte
// ranges a request actually needs.
//
// A gridfile holds a tree of variables; each array variable is stored in
// fixed-shape chunks, compressed independently, and addressed through a
// per-variable chunk index table. Reading a hyper-rectangle works in two
// coalesced phases: the reader first fetches the index entries of the
// overlapping chunks (merging nearby table spans into few backend reads),
// then fetches and decodes the chunk payloads the same way, writing each
// decoded element straight into its position in the output buffer.
//
// # Basic Usage
//
// Reading a sub-region from a local file:
//
//	import "github.com/arloliu/gridfile"
//
//	reader, err := gridfile.OpenFile("temperature.grd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	dims, _ := reader.Dimensions()
//	values, err := gridfile.Read[float32](reader, []gridfile.Range{
//	    {Start: 100, End: 200},
//	    {Start: 0, End: dims[1]},
//	})
//
// Reading over HTTP range requests works the same way through OpenURL; any
// backend satisfying source.Source (fetch an exact byte span, report the
// total size) plugs in through grid.Open.
//
// # Package Structure
//
// This package provides convenient top-level constructors around the grid
// package. For fine-grained control (custom sources, planner tunables), use
// the grid and source packages directly.
package gridfile

import (
	"net/http"

	"github.com/arloliu/gridfile/grid"
	"github.com/arloliu/gridfile/source"
)

// Range is a half-open [Start, End) request interval along one dimension.
type Range = grid.Range

// Reader reads one variable of a gridfile. See grid.Reader.
type Reader = grid.Reader

// Option configures a Reader during open. See the grid package for the
// available options (WithMergeThreshold, WithMaxBatchSize, WithCloser).
type Option = grid.Option

// OpenFile opens a local gridfile. The returned reader owns the file handle
// and closes it on Close.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	src, err := source.OpenFileSource(path)
	if err != nil {
		return nil, err
	}

	reader, err := grid.Open(src, append(opts, grid.WithCloser(src))...)
	if err != nil {
		src.Close()
		return nil, err
	}

	return reader, nil
}

// OpenBytes opens a gridfile held in memory. The buffer is not copied and
// must stay immutable while the reader is in use.
func OpenBytes(data []byte, opts ...Option) (*Reader, error) {
	return grid.Open(source.NewMemSource(data), opts...)
}

// OpenURL opens a gridfile served over HTTP range requests. A nil client
// falls back to http.DefaultClient; pass a custom one to control timeouts
// or authentication.
func OpenURL(url string, client *http.Client, opts ...Option) (*Reader, error) {
	return grid.Open(source.NewHTTPSource(url, client), opts...)
}

// Read reads the requested hyper-rectangle from reader into a freshly
// allocated slice. See grid.Read.
func Read[T grid.Element](reader *Reader, ranges []Range) ([]T, error) {
	return grid.Read[T](reader, ranges)
}

// ReadInto reads the requested hyper-rectangle into dst. See grid.ReadInto.
func ReadInto[T grid.Element](reader *Reader, ranges []Range, dst []T) error {
	return grid.ReadInto(reader, ranges, dst)
}

// ReadScalar returns the scalar value of a variable whose data type matches
// the type argument. See grid.ReadScalar.
func ReadScalar[T grid.Element](reader *Reader) (T, bool, error) {
	return grid.ReadScalar[T](reader)
}
