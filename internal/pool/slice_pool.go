// Package pool provides pooled scratch slices for the chunk decode path.
//
// Every chunk decode needs a transient residual or word buffer sized to the
// chunk's element count; pooling them keeps steady-state reads allocation-free
// regardless of how many chunks a request touches.
package pool

import "sync"

var (
	int64SlicePool = sync.Pool{
		New: func() any { return &[]int64{} },
	}
	uint32SlicePool = sync.Pool{
		New: func() any { return &[]uint32{} },
	}
	uint64SlicePool = sync.Pool{
		New: func() any { return &[]uint64{} },
	}
)

// GetInt64Slice retrieves an int64 slice of exactly size elements from the
// pool, allocating only when the pooled slice is too small. The returned
// cleanup function must be called (typically with defer) to return the slice;
// contents are not zeroed, callers overwrite every element.
func GetInt64Slice(size int) ([]int64, func()) {
	ptr, _ := int64SlicePool.Get().(*[]int64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]int64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { int64SlicePool.Put(ptr) }
}

// GetUint32Slice is GetInt64Slice for float32 bit patterns.
func GetUint32Slice(size int) ([]uint32, func()) {
	ptr, _ := uint32SlicePool.Get().(*[]uint32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint32, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint32SlicePool.Put(ptr) }
}

// GetUint64Slice is GetInt64Slice for float64 bit patterns.
func GetUint64Slice(size int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
		*ptr = slice
	} else {
		slice = slice[:size]
		*ptr = slice
	}

	return slice, func() { uint64SlicePool.Put(ptr) }
}
