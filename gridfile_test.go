package gridfile_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridfile"
	"github.com/arloliu/gridfile/format"
	"github.com/arloliu/gridfile/section"
)

// buildTinyFile assembles a minimal single-variable file: an int8 vector of
// {10, 11, 12, 13} stored uncompressed in two chunks of two elements.
func buildTinyFile(t *testing.T) []byte {
	t.Helper()

	record := &section.Variable{
		DataType:    format.TypeInt8Array,
		Compression: format.CompressionNone,
		Dimensions:  []uint64{4},
		ChunkShape:  []uint64{2},
		Name:        "v",
	}
	recordSize := uint64(len(record.Bytes()))

	payloadStart := uint64(section.HeaderSize) + recordSize
	record.ChunkIndexOffset = payloadStart + 4

	file := section.Header{Mode: section.ModeLegacy, RootSize: recordSize}.Bytes()
	file = append(file, record.Bytes()...)
	file = append(file, 10, 11, 12, 13)
	file = append(file, section.ChunkEntry{PayloadOffset: payloadStart, PayloadLength: 2}.Bytes()...)
	file = append(file, section.ChunkEntry{PayloadOffset: payloadStart + 2, PayloadLength: 2}.Bytes()...)

	return file
}

func TestOpenBytes(t *testing.T) {
	reader, err := gridfile.OpenBytes(buildTinyFile(t))
	require.NoError(t, err)
	defer reader.Close()

	name, err := reader.Name()
	require.NoError(t, err)
	require.Equal(t, "v", name)

	out, err := gridfile.Read[int8](reader, []gridfile.Range{{Start: 0, End: 4}})
	require.NoError(t, err)
	require.Equal(t, []int8{10, 11, 12, 13}, out)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.grd")
	require.NoError(t, os.WriteFile(path, buildTinyFile(t), 0o644))

	reader, err := gridfile.OpenFile(path)
	require.NoError(t, err)

	out, err := gridfile.Read[int8](reader, []gridfile.Range{{Start: 1, End: 3}})
	require.NoError(t, err)
	require.Equal(t, []int8{11, 12}, out)

	var dst [4]int8
	require.NoError(t, gridfile.ReadInto(reader, []gridfile.Range{{Start: 0, End: 4}}, dst[:]))
	require.Equal(t, [4]int8{10, 11, 12, 13}, dst)

	// Close releases the underlying file handle.
	require.NoError(t, reader.Close())
}

func TestOpenFileMissing(t *testing.T) {
	_, err := gridfile.OpenFile(filepath.Join(t.TempDir(), "nope.grd"))
	require.Error(t, err)
}

func TestOpenURL(t *testing.T) {
	file := buildTinyFile(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "tiny.grd", time.Time{}, bytes.NewReader(file))
	}))
	defer server.Close()

	reader, err := gridfile.OpenURL(server.URL, server.Client())
	require.NoError(t, err)
	defer reader.Close()

	out, err := gridfile.Read[int8](reader, []gridfile.Range{{Start: 0, End: 4}})
	require.NoError(t, err)
	require.Equal(t, []int8{10, 11, 12, 13}, out)
}
