package m3d

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/m3d/pkg/encoding"
)

// Cursor is a position-tracked little-endian view over an immutable buffer.
// Reads past the end return ErrUnexpectedEOF and leave the position unchanged.
type Cursor struct {
	buf  []byte
	pos  int
	base int // absolute offset of buf[0], used in error messages
}

// NewCursor returns a cursor at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{buf: data}
}

// Pos returns the current position relative to the start of the buffer.
func (c *Cursor) Pos() int { return c.pos }

// Offset returns the current absolute position within the decoded stream.
func (c *Cursor) Offset() int { return c.base + c.pos }

// Len returns the buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.buf)-c.pos {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrUnexpectedEOF, n, c.Offset(), c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

// Bytes returns a copy of the next n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// Sub consumes the next n bytes and returns a cursor bounded to them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	start := c.Offset()
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{buf: b, base: start}, nil
}

// PeekAt returns n bytes at absolute position off without moving the cursor.
func (c *Cursor) PeekAt(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(c.buf) {
		return nil, fmt.Errorf("%w: peek %d bytes at offset %d", ErrUnexpectedEOF, n, c.base+off)
	}
	return c.buf[off : off+n], nil
}

// Tag reads a 4-byte chunk tag.
func (c *Cursor) Tag() (string, error) {
	b, err := c.take(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a little-endian uint16.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 reads a little-endian uint64.
func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Float32 reads an IEEE 754 single.
func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

// Float64 reads an IEEE 754 double.
func (c *Cursor) Float64() (float64, error) {
	v, err := c.Uint64()
	return math.Float64frombits(v), err
}

// Uint reads an unsigned integer of the given byte width (1, 2 or 4).
// Width 0 reads nothing and returns 0.
func (c *Cursor) Uint(width int) (uint32, error) {
	switch width {
	case 0:
		return 0, nil
	case 1:
		v, err := c.Uint8()
		return uint32(v), err
	case 2:
		v, err := c.Uint16()
		return uint32(v), err
	case 4:
		return c.Uint32()
	default:
		return 0, fmt.Errorf("%w: %d-byte integer", ErrInvalidFieldWidth, width)
	}
}

// Index reads an index of the given kind. Undefined kinds read nothing and
// an all-ones value is the wire sentinel; both yield None.
func (c *Cursor) Index(t IndexType) (Index, error) {
	size := t.Size()
	if size == 0 {
		return None, nil
	}
	v, err := c.Uint(size)
	if err != nil {
		return None, err
	}
	if v == math.MaxUint32>>(32-8*size) {
		return None, nil
	}
	return Some(v), nil
}

// Coord reads one vertex coordinate component. Integer kinds are
// normalized to [-1, 1].
func (c *Cursor) Coord(t CoordType) (float64, error) {
	switch t {
	case CoordInt8:
		v, err := c.Uint8()
		return float64(int8(v)) / 127.0, err
	case CoordInt16:
		v, err := c.Uint16()
		return float64(int16(v)) / 32767.0, err
	case CoordFloat:
		v, err := c.Float32()
		return float64(v), err
	case CoordDouble:
		return c.Float64()
	default:
		return 0, fmt.Errorf("%w: coordinate %s", ErrInvalidFieldWidth, t)
	}
}

// TexCoord reads one texture coordinate component. Integer kinds are
// unsigned and normalized to [0, 1].
func (c *Cursor) TexCoord(t CoordType) (float64, error) {
	switch t {
	case CoordInt8:
		v, err := c.Uint8()
		return float64(v) / 255.0, err
	case CoordInt16:
		v, err := c.Uint16()
		return float64(v) / 65535.0, err
	default:
		return c.Coord(t)
	}
}

// String reads a null-terminated string and then discards pad bytes.
func (c *Cursor) String(pad int) (string, error) {
	end := bytes.IndexByte(c.buf[c.pos:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrUnexpectedEOF, c.Offset())
	}
	s := encoding.DecodeString(c.buf[c.pos : c.pos+end])
	start := c.pos
	c.pos += end + 1
	if err := c.Skip(pad); err != nil {
		c.pos = start
		return "", err
	}
	return s, nil
}
