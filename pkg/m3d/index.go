package m3d

import "strconv"

// Undef is the wire sentinel for "no value".
const Undef = -1

// Index is an optional reference into one of the model tables.
// The zero value is absent.
type Index struct {
	value uint32
	valid bool
}

// None is the absent index.
var None Index

// Some returns a present index.
func Some(v uint32) Index {
	return Index{value: v, valid: true}
}

// Valid reports whether the index is present.
func (i Index) Valid() bool {
	return i.valid
}

// Get returns the index value and whether it is present.
func (i Index) Get() (int, bool) {
	return int(i.value), i.valid
}

// Int returns the index value, or Undef when absent.
func (i Index) Int() int {
	if !i.valid {
		return Undef
	}
	return int(i.value)
}

// String returns the decimal value or "-" when absent.
func (i Index) String() string {
	if !i.valid {
		return "-"
	}
	return strconv.FormatUint(uint64(i.value), 10)
}

// inRange reports whether a present index addresses a table of length n.
// Absent indices are always in range.
func (i Index) inRange(n int) bool {
	return !i.valid || int(i.value) < n
}
