package pool

import "sync"

var windowPool = sync.Pool{
	New: func() any { return &[]byte{} },
}

// GetWindow retrieves a byte slice of exactly size bytes from the pool.
//
// It is used for the boundary aligner's lookahead reads, which are issued a
// few times per worker with a window that may grow between attempts.
// The caller must call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	window, cleanup := pool.GetWindow(64)
//	defer cleanup()
//	n, err := f.ReadAt(window, off)
func GetWindow(size int) ([]byte, func()) {
	ptr, _ := windowPool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { windowPool.Put(ptr) }
}
