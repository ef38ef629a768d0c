package section

// Fixed sizes of the on-disk records. The header and trailer never change
// size; the variable metadata record is variable-length with a fixed prefix.
const (
	// HeaderSize is the byte length of the file header at offset 0.
	HeaderSize = 16

	// TrailerSize is the byte length of the trailer at fileSize-TrailerSize
	// in trailer-addressed files.
	TrailerSize = 24

	// VariablePrefixSize is the fixed-length prefix of a variable metadata
	// record, up to but excluding the dimension extents.
	VariablePrefixSize = 28

	// ChunkEntrySize is the byte length of one chunk index entry
	// (payload offset + payload length).
	ChunkEntrySize = 16

	// OffsetSizeLen is the byte length of an encoded OffsetSize pair.
	OffsetSizeLen = 16
)

// Magic is the 4-byte tag at the start of every gridfile.
var Magic = [4]byte{'G', 'R', 'D', '1'}

// Mode identifies where the root metadata record lives.
type Mode uint8

const (
	// ModeInvalid marks a file that is not a gridfile.
	ModeInvalid Mode = 0
	// ModeLegacy embeds the root metadata record directly after the header;
	// its size is carried in the header, so the file size is never needed.
	ModeLegacy Mode = 1
	// ModeTrailerAddressed stores an (offset, size) pointer to the root
	// metadata record in a fixed-size trailer at the end of the file.
	ModeTrailerAddressed Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "Legacy"
	case ModeTrailerAddressed:
		return "TrailerAddressed"
	default:
		return "Invalid"
	}
}

// OffsetSize points at a byte span in the backing store. Immutable once
// resolved; used for the trailer pointer and for child variable locations.
type OffsetSize struct {
	Offset uint64
	Size   uint64
}
