// Package source defines the byte-range capability the gridfile reader pulls
// data through, plus ready-made implementations for local files, in-memory
// buffers, and HTTP range requests.
//
// A Source only knows how to fetch an exact byte span and report the total
// addressable length. Caching, retries, credentials, and deadlines are the
// concern of individual implementations (or wrappers around them), never of
// the reader core.
package source

// Source is the byte-range capability backing a reader.
//
// Implementations must be safe for concurrent GetBytes calls: independent
// readers may share one Source.
type Source interface {
	// GetBytes returns exactly size bytes starting at offset, or an error.
	// A short read is an error, never a truncated slice.
	GetBytes(offset, size uint64) ([]byte, error)

	// Count returns the total addressable length in bytes.
	Count() (uint64, error)
}
