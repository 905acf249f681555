package record

import "errors"

var (
	// ErrSizeMismatch indicates that a buffer is smaller than the record it should hold.
	ErrSizeMismatch = errors.New("record: buffer smaller than record size")

	// ErrBufferOverflow indicates that an encoded record would not fit the output slot.
	ErrBufferOverflow = errors.New("record: output record exceeds output area")

	// ErrInvalidView indicates a view index outside 1..ViewCount.
	ErrInvalidView = errors.New("record: view must be in range [1, 4]")
)
