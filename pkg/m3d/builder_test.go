package m3d

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
)

// Synthetic M3D fixtures for tests.

// testWidths is the layout used by most tests: float coordinates, 1-byte
// vertex, color and texture indices, no string padding, everything else absent.
var testWidths = FieldWidths{
	VertexCoord:    CoordFloat,
	VertexIndex:    IndexUint8,
	StringOffset:   IndexUndefined,
	ColorIndex:     IndexUint8,
	TextureIndex:   IndexUint8,
	BoneIndex:      IndexUndefined,
	BonesPerVertex: 1,
	SkinIndex:      IndexUndefined,
	FrameBoneCount: IndexUndefined,
	ShapeIndex:     IndexUndefined,
	FaceIndex:      IndexUndefined,
	VoxelDimension: IndexUndefined,
	VoxelPixel:     IndexUndefined,
}

func encodeDescriptor(w FieldWidths) uint32 {
	nb := map[int]uint32{1: 0, 2: 1, 4: 2, 8: 3}[w.BonesPerVertex]
	return uint32(w.VertexCoord) |
		uint32(w.VertexIndex)<<2 |
		uint32(w.StringOffset)<<4 |
		uint32(w.ColorIndex)<<6 |
		uint32(w.TextureIndex)<<8 |
		uint32(w.BoneIndex)<<10 |
		nb<<12 |
		uint32(w.SkinIndex)<<14 |
		uint32(w.FrameBoneCount)<<16 |
		uint32(w.ShapeIndex)<<18 |
		uint32(w.FaceIndex)<<20 |
		uint32(w.VoxelDimension)<<22 |
		uint32(w.VoxelPixel)<<24
}

func makeChunk(tag string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(tag)
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)+8))
	buf.Write(payload)
	return buf.Bytes()
}

// makePreview builds a PRVW block. Its length counts only the image bytes.
func makePreview(image []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(TagPreview)
	binary.Write(&buf, binary.LittleEndian, uint32(len(image)))
	buf.Write(image)
	return buf.Bytes()
}

func cstr(s string) []byte {
	return append([]byte(s), 0)
}

func makeHeader(scale float32, w FieldWidths, strs ...string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, scale)
	binary.Write(&buf, binary.LittleEndian, encodeDescriptor(w))
	for len(strs) < 4 {
		strs = append(strs, "")
	}
	for _, s := range strs {
		buf.Write(cstr(s))
	}
	return makeChunk(TagHeader, buf.Bytes())
}

// makeStream concatenates chunks and appends the end tag.
func makeStream(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	for _, c := range chunks {
		buf.Write(c)
	}
	buf.WriteString(TagEnd)
	return buf.Bytes()
}

// makeFile wraps a chunk stream with the magic and size fields.
func makeFile(stream []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(MagicBinary)
	binary.Write(&buf, binary.LittleEndian, uint32(len(stream)+8))
	buf.Write(stream)
	return buf.Bytes()
}

func makeModelFile(chunks ...[]byte) []byte {
	return makeFile(makeStream(chunks...))
}

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// colorMapPayload stores colors as alpha, blue, green, red.
func colorMapPayload(colors ...Color) []byte {
	var out []byte
	for _, c := range colors {
		out = append(out, c.A, c.B, c.G, c.R)
	}
	return out
}

type testVertex struct {
	x, y, z, w float32
	color      uint8
}

// floatVertices encodes vertices for testWidths (float coords, 1-byte color).
func floatVertices(vs ...testVertex) []byte {
	var buf bytes.Buffer
	for _, v := range vs {
		binary.Write(&buf, binary.LittleEndian, [4]float32{v.x, v.y, v.z, v.w})
		buf.WriteByte(v.color)
	}
	return buf.Bytes()
}

func le16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func le32f(v float32) []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v))
}

// triangleVertices returns three vertices of a right triangle.
func triangleVertices() []byte {
	return floatVertices(
		testVertex{0, 0, 0, 1, 0},
		testVertex{1, 0, 0, 1, 1},
		testVertex{0, 1, 0, 1, 0},
	)
}

func twoColors() []byte {
	return colorMapPayload(Color{R: 255, A: 255}, Color{G: 255, B: 10, A: 128})
}
