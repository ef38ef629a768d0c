package source

import (
	"fmt"
	"io"
	"os"
)

// FileSource serves byte ranges from a local file through pread-style
// ReadAt calls, so concurrent readers never contend on a shared file offset.
type FileSource struct {
	f    *os.File
	size uint64
}

var _ Source = (*FileSource)(nil)

// OpenFileSource opens path for reading and stats it once for the total size.
// The caller owns the returned source and must Close it.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &FileSource{f: f, size: uint64(info.Size())}, nil
}

func (s *FileSource) GetBytes(offset, size uint64) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := s.f.ReadAt(buf, int64(offset)); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("range [%d, %d) outside file of %d bytes", offset, offset+size, s.size)
		}

		return nil, fmt.Errorf("read %s at %d: %w", s.f.Name(), offset, err)
	}

	return buf, nil
}

func (s *FileSource) Count() (uint64, error) {
	return s.size, nil
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.f.Close()
}
