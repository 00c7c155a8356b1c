// Package m3d decodes binary Model 3D (.m3d/.a3d) files.
//
// A file is a 4-byte magic, a 4-byte total size and a sequence of
// tag/length chunks closed by an OMD3 tag. The HEAD chunk carries a
// descriptor that selects the byte width of every index and coordinate
// kind used by the chunks after it.
package m3d

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// File signatures.
const (
	MagicBinary = "3DMO"
	MagicASCII  = "3dmo"
)

// Chunk tags.
const (
	TagPreview    = "PRVW"
	TagHeader     = "HEAD"
	TagColorMap   = "CMAP"
	TagTextureMap = "TMAP"
	TagVertices   = "VRTS"
	TagBones      = "BONE"
	TagMaterial   = "MTRL"
	TagProcedural = "PROC"
	TagMesh       = "MESH"
	TagShape      = "SHPE"
	TagVoxelTypes = "VOXT"
	TagVoxelData  = "VOXD"
	TagLabels     = "LBLS"
	TagActions    = "ACTN"
	TagAssets     = "ASET"
	TagEnd        = "OMD3"
)

// chunkFraming is the size of a chunk's tag and length fields.
const chunkFraming = 8

// Decoder holds decode settings. A Decoder is safe for concurrent use;
// all per-file state lives in the Decode call.
type Decoder struct {
	// VertexMax enables parsing of vertex-max parameter groups in MESH chunks.
	VertexMax bool

	// Logger receives decode messages. Nil disables logging.
	Logger *zap.Logger
}

// Parse decodes an M3D file from a byte slice with default settings.
func Parse(data []byte) (*Model, error) {
	var d Decoder
	return d.Decode(data)
}

// ParseFile decodes an M3D file from disk with default settings.
func ParseFile(path string) (*Model, error) {
	var d Decoder
	return d.DecodeFile(path)
}

// HasModelExt reports whether path names an .m3d or .a3d file.
func HasModelExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3d", ".a3d":
		return true
	}
	return false
}

// DecodeFile reads and decodes an M3D file from disk.
func (d *Decoder) DecodeFile(path string) (*Model, error) {
	if !HasModelExt(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading M3D file: %w", err)
	}
	return d.Decode(data)
}

// Decode decodes an M3D file held in memory. data is not modified.
// On a fatal error no Model is returned.
func (d *Decoder) Decode(data []byte) (*Model, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cur := NewCursor(data)
	magic, err := cur.Tag()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}

	switch magic {
	case MagicBinary:
		size, err := cur.Uint32()
		if err != nil {
			return nil, err
		}
		log.Info("binary M3D magic found", zap.Uint32("size", size))

		s := newDecodeState(log, d.VertexMax)
		return s.decodeBinary(cur)

	case MagicASCII:
		log.Warn("ASCII M3D is not supported")
		return nil, ErrASCIIUnsupported

	default:
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, magic)
	}
}
