package source

import "fmt"

// MemSource serves byte ranges from an in-memory buffer. Useful for small
// files, tests, and data already fetched by other means.
type MemSource struct {
	data []byte
}

var _ Source = (*MemSource)(nil)

// NewMemSource creates a Source over data. The buffer is not copied; the
// caller must not mutate it while the source is in use.
func NewMemSource(data []byte) *MemSource {
	return &MemSource{data: data}
}

func (s *MemSource) GetBytes(offset, size uint64) ([]byte, error) {
	end := offset + size
	if end < offset || end > uint64(len(s.data)) {
		return nil, fmt.Errorf("range [%d, %d) outside buffer of %d bytes", offset, end, len(s.data))
	}

	return s.data[offset:end], nil
}

func (s *MemSource) Count() (uint64, error) {
	return uint64(len(s.data)), nil
}
