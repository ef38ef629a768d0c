package encoding

// Reverse2DDelta undoes the vertical delta chain in place: each row of the
// 2D block is the stored residual plus the reconstructed row above it.
// vals holds rows*width values in row-major order.
func Reverse2DDelta(vals []int64, rows, width int) {
	for r := 1; r < rows; r++ {
		row := vals[r*width : (r+1)*width]
		prev := vals[(r-1)*width : r*width]
		for c := range row {
			row[c] += prev[c]
		}
	}
}

// Apply2DDelta replaces each row below the first with its difference from
// the row above, bottom-up so every subtraction sees original values.
// Inverse of Reverse2DDelta; used by test fixture builders.
func Apply2DDelta(vals []int64, rows, width int) {
	for r := rows - 1; r >= 1; r-- {
		row := vals[r*width : (r+1)*width]
		prev := vals[(r-1)*width : r*width]
		for c := range row {
			row[c] -= prev[c]
		}
	}
}

// BlockShape maps a chunk's (possibly clamped) shape onto the 2D block the
// delta and XOR transforms operate on: the last dimension is the row width,
// everything in front of it multiplies into the row count. Rank-1 chunks
// become a single column so the chain still runs along the only axis.
func BlockShape(shape []uint64) (rows, width int) {
	if len(shape) == 0 {
		return 0, 0
	}

	if len(shape) == 1 {
		return int(shape[0]), 1
	}

	rows = 1
	for _, extent := range shape[:len(shape)-1] {
		rows *= int(extent)
	}

	return rows, int(shape[len(shape)-1])
}
