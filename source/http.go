package source

import (
	"fmt"
	"io"
	"net/http"
	"sync"
)

// HTTPSource serves byte ranges from a URL using HTTP Range requests.
//
// The server must honor Range headers (respond 206 Partial Content); a
// server that ignores them would force full-body downloads, which defeats
// the point of range reads, so a 200 response is treated as an error.
// The total size is resolved lazily with a single HEAD request and cached.
type HTTPSource struct {
	client *http.Client
	url    string

	once sync.Once
	size uint64
	err  error
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a Source over url. A nil client falls back to
// http.DefaultClient; pass a custom client to control timeouts, proxies,
// or authentication transports.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPSource{client: client, url: url}
}

func (s *HTTPSource) GetBytes(offset, size uint64) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", s.url, err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+size-1))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("fetch %s: expected 206 Partial Content, got %s", s.url, resp.Status)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(resp.Body, buf); err != nil {
		return nil, fmt.Errorf("fetch %s at %d: short body: %w", s.url, offset, err)
	}

	return buf, nil
}

func (s *HTTPSource) Count() (uint64, error) {
	s.once.Do(func() {
		resp, err := s.client.Head(s.url)
		if err != nil {
			s.err = fmt.Errorf("head %s: %w", s.url, err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK || resp.ContentLength < 0 {
			s.err = fmt.Errorf("head %s: no usable Content-Length (status %s)", s.url, resp.Status)
			return
		}

		s.size = uint64(resp.ContentLength)
	})

	return s.size, s.err
}
