package encoding

// Reverse2DXor32 undoes the vertical XOR chain over float32 bit patterns in
// place. words holds rows*width words in row-major order; the first row is
// stored raw, every later row is XORed against the reconstructed row above.
func Reverse2DXor32(words []uint32, rows, width int) {
	for r := 1; r < rows; r++ {
		row := words[r*width : (r+1)*width]
		prev := words[(r-1)*width : r*width]
		for c := range row {
			row[c] ^= prev[c]
		}
	}
}

// Reverse2DXor64 is Reverse2DXor32 for float64 bit patterns.
func Reverse2DXor64(words []uint64, rows, width int) {
	for r := 1; r < rows; r++ {
		row := words[r*width : (r+1)*width]
		prev := words[(r-1)*width : r*width]
		for c := range row {
			row[c] ^= prev[c]
		}
	}
}

// Apply2DXor32 applies the forward chain, bottom-up. XOR is its own inverse
// per word, so this mirrors Apply2DDelta. Used by test fixture builders.
func Apply2DXor32(words []uint32, rows, width int) {
	for r := rows - 1; r >= 1; r-- {
		row := words[r*width : (r+1)*width]
		prev := words[(r-1)*width : r*width]
		for c := range row {
			row[c] ^= prev[c]
		}
	}
}

// Apply2DXor64 is Apply2DXor32 for float64 bit patterns.
func Apply2DXor64(words []uint64, rows, width int) {
	for r := rows - 1; r >= 1; r-- {
		row := words[r*width : (r+1)*width]
		prev := words[(r-1)*width : r*width]
		for c := range row {
			row[c] ^= prev[c]
		}
	}
}
