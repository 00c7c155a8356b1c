package m3d

import (
	"fmt"
	"strings"
)

// MaxBonesPerVertex is the number of bone weights a vertex skin can carry.
const MaxBonesPerVertex = 4

// CoordType is the storage kind of vertex and texture coordinates.
type CoordType uint8

const (
	CoordInt8   CoordType = 0 // signed byte, normalized
	CoordInt16  CoordType = 1 // signed short, normalized
	CoordFloat  CoordType = 2 // IEEE 754 single
	CoordDouble CoordType = 3 // IEEE 754 double
)

var coordSizes = [4]int{1, 2, 4, 8}

// Size returns the encoded byte width.
func (t CoordType) Size() int {
	if int(t) >= len(coordSizes) {
		return 0
	}
	return coordSizes[t]
}

// String returns the type name.
func (t CoordType) String() string {
	switch t {
	case CoordInt8:
		return "int8"
	case CoordInt16:
		return "int16"
	case CoordFloat:
		return "float"
	case CoordDouble:
		return "double"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// IndexType is the storage kind of an index field.
type IndexType uint8

const (
	IndexUint8     IndexType = 0
	IndexUint16    IndexType = 1
	IndexUint32    IndexType = 2
	IndexUndefined IndexType = 3 // field not present in the file
)

var indexSizes = [4]int{1, 2, 4, 0}

// Size returns the encoded byte width, 0 for undefined.
func (t IndexType) Size() int {
	if int(t) >= len(indexSizes) {
		return 0
	}
	return indexSizes[t]
}

// Defined reports whether the field is present in the file.
func (t IndexType) Defined() bool {
	return t.Size() != 0
}

// String returns the type name.
func (t IndexType) String() string {
	switch t {
	case IndexUint8:
		return "uint8"
	case IndexUint16:
		return "uint16"
	case IndexUint32:
		return "uint32"
	default:
		return "undefined"
	}
}

var bonesPerVertex = [4]int{1, 2, 4, 8}

// FieldWidths holds the per-kind widths selected by the header's
// quantization descriptor. It is read-only for the rest of a decode.
type FieldWidths struct {
	VertexCoord    CoordType // VC_T
	VertexIndex    IndexType // VI_T
	StringOffset   IndexType // SI_T
	ColorIndex     IndexType // CI_T
	TextureIndex   IndexType // TI_T
	BoneIndex      IndexType // BI_T
	BonesPerVertex int       // NB_T
	SkinIndex      IndexType // SK_T
	FrameBoneCount IndexType // FC_T
	ShapeIndex     IndexType // HI_T
	FaceIndex      IndexType // FI_T
	VoxelDimension IndexType // VD_T
	VoxelPixel     IndexType // VP_T
}

// ResolveFieldWidths decodes the 32-bit descriptor. Each field is a 2-bit
// slot at shifts 0, 2, ..., 24.
func ResolveFieldWidths(descriptor uint32) FieldWidths {
	slot := func(shift uint) uint8 {
		return uint8(descriptor>>shift) & 3
	}
	index := func(shift uint) IndexType {
		return IndexType(slot(shift))
	}

	return FieldWidths{
		VertexCoord:    CoordType(slot(0)),
		VertexIndex:    index(2),
		StringOffset:   index(4),
		ColorIndex:     index(6),
		TextureIndex:   index(8),
		BoneIndex:      index(10),
		BonesPerVertex: bonesPerVertex[slot(12)],
		SkinIndex:      index(14),
		FrameBoneCount: index(16),
		ShapeIndex:     index(18),
		FaceIndex:      index(20),
		VoxelDimension: index(22),
		VoxelPixel:     index(24),
	}
}

// Validate returns ErrInvalidFieldWidth for widths the decoder cannot index with.
func (w FieldWidths) Validate() error {
	if w.VertexIndex.Size() > 4 {
		return fmt.Errorf("%w: vertex index %s", ErrInvalidFieldWidth, w.VertexIndex)
	}
	if w.StringOffset.Size() > 4 {
		return fmt.Errorf("%w: string offset %s", ErrInvalidFieldWidth, w.StringOffset)
	}
	if w.VoxelPixel.Size() == 4 {
		return fmt.Errorf("%w: voxel pixel %s", ErrInvalidFieldWidth, w.VoxelPixel)
	}
	return nil
}

// String returns a multi-line dump of every selector.
func (w FieldWidths) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "VC_T [vertex coordinate]: %s\n", w.VertexCoord)
	fmt.Fprintf(&sb, "VI_T [vertex index]: %s\n", w.VertexIndex)
	fmt.Fprintf(&sb, "SI_T [string offset]: %s\n", w.StringOffset)
	fmt.Fprintf(&sb, "CI_T [color index]: %s\n", w.ColorIndex)
	fmt.Fprintf(&sb, "TI_T [texture index]: %s\n", w.TextureIndex)
	fmt.Fprintf(&sb, "BI_T [bone index]: %s\n", w.BoneIndex)
	fmt.Fprintf(&sb, "NB_T [bones per vertex]: %d\n", w.BonesPerVertex)
	fmt.Fprintf(&sb, "SK_T [skin index]: %s\n", w.SkinIndex)
	fmt.Fprintf(&sb, "FC_T [frame bone count]: %s\n", w.FrameBoneCount)
	fmt.Fprintf(&sb, "HI_T [shape index]: %s\n", w.ShapeIndex)
	fmt.Fprintf(&sb, "FI_T [face index]: %s\n", w.FaceIndex)
	fmt.Fprintf(&sb, "VD_T [voxel dimension]: %s\n", w.VoxelDimension)
	fmt.Fprintf(&sb, "VP_T [voxel pixel]: %s", w.VoxelPixel)
	return sb.String()
}

// Header is the decoded HEAD chunk.
type Header struct {
	Scale       float32 // 1.0 when the file stores a non-positive value
	Title       string
	License     string
	Author      string
	Description string

	// StringTable holds any further strings stored in the HEAD chunk.
	StringTable []string

	Descriptor uint32
	Widths     FieldWidths
}
