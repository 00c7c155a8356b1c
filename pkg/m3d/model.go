package m3d

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// String returns the color as #RRGGBBAA.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// TexCoord is a texture coordinate pair.
type TexCoord struct {
	U, V float64
}

// Vertex is one entry of the vertex table.
type Vertex struct {
	X, Y, Z float64
	W       float64 // weight/bias, not a homogeneous coordinate

	ColorIndex Index // palette entry; absent for inline or missing colors
	Color      Color // resolved color, zero when the file stores none
	SkinIndex  Index
}

// Position returns the vertex position.
func (v Vertex) Position() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Property is a decoded material property.
type Property struct {
	ID     uint8
	Format PropertyFormat
	Key    string // catalog key, empty for unlisted texture ids

	Color       Color   // PropertyColor
	ColorIndex  Index   // PropertyColor with a palette
	Uint        uint32  // PropertyUint8/16/32
	Float       float32 // PropertyFloat
	Texture     Index   // PropertyMap: entry in Model.Textures
	TextureName string  // PropertyMap
}

// Value returns the property value for its format.
func (p Property) Value() any {
	switch p.Format {
	case PropertyColor:
		return p.Color
	case PropertyUint8, PropertyUint16, PropertyUint32:
		return p.Uint
	case PropertyFloat:
		return p.Float
	case PropertyMap:
		return p.Texture
	default:
		return nil
	}
}

// Material is a named list of properties.
type Material struct {
	Name       string
	Properties []Property
}

// Property returns the first property with the given key, or nil.
func (m *Material) Property(key string) *Property {
	for i := range m.Properties {
		if m.Properties[i].Key == key {
			return &m.Properties[i]
		}
	}
	return nil
}

// Texture is a texture referenced by name from a material.
type Texture struct {
	Name string
}

// Face is a triangle.
type Face struct {
	Vertices  [3]uint32
	Normals   [3]Index // entries in the vertex table
	TexCoords [3]Index
	VertexMax [3]Index // only populated in vertex-max mode

	Material Index
	Param    Index
}

// Parameter is a named vertex-max group.
type Parameter struct {
	Name  string
	Count int // faces emitted while the parameter was active
}

// Preview is the embedded preview image.
type Preview struct {
	Data []byte // PNG encoded
}

// Image decodes the preview PNG.
func (p *Preview) Image() (image.Image, error) {
	if p == nil || len(p.Data) == 0 {
		return nil, fmt.Errorf("no preview image")
	}
	return png.Decode(bytes.NewReader(p.Data))
}

// SkippedChunk records a chunk that was recognized or tolerated but not decoded.
type SkippedChunk struct {
	Tag    string
	Offset int // offset of the chunk tag in the decoded stream
	Length int // payload length
}

// Model is a decoded M3D file.
type Model struct {
	Header     Header
	Preview    *Preview // nil when the file has no PRVW chunk
	ColorMap   []Color
	TextureMap []TexCoord
	Vertices   []Vertex
	Materials  []Material
	Textures   []Texture
	Faces      []Face
	Parameters []Parameter

	Skipped  []SkippedChunk
	Warnings []error // recoverable conditions, in the order they occurred
}

// MaterialByName returns the material with the given name, or nil.
func (m *Model) MaterialByName(name string) *Material {
	if i := m.materialIndex(name); i >= 0 {
		return &m.Materials[i]
	}
	return nil
}

func (m *Model) materialIndex(name string) int {
	for i := range m.Materials {
		if m.Materials[i].Name == name {
			return i
		}
	}
	return -1
}

func (m *Model) textureIndex(name string) int {
	for i := range m.Textures {
		if m.Textures[i].Name == name {
			return i
		}
	}
	return -1
}

func (m *Model) parameterIndex(name string) int {
	for i := range m.Parameters {
		if m.Parameters[i].Name == name {
			return i
		}
	}
	return -1
}

// Triangle returns the vertex positions of face i. It reports false when i
// is out of range or the face references a vertex the model does not hold,
// which happens when MESH was decoded before VRTS.
func (m *Model) Triangle(i int) ([3]mgl64.Vec3, bool) {
	var tri [3]mgl64.Vec3
	if i < 0 || i >= len(m.Faces) {
		return tri, false
	}
	for j, vi := range m.Faces[i].Vertices {
		if int(vi) >= len(m.Vertices) {
			return [3]mgl64.Vec3{}, false
		}
		tri[j] = m.Vertices[vi].Position()
	}
	return tri, true
}

// FaceNormal returns the unit normal of face i from its winding order.
// Degenerate faces yield a zero vector.
func (m *Model) FaceNormal(i int) (mgl64.Vec3, bool) {
	tri, ok := m.Triangle(i)
	if !ok {
		return mgl64.Vec3{}, false
	}
	n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
	if n.Len() == 0 {
		return n, true
	}
	return n.Normalize(), true
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Model) Bounds() (min, max mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}

	min = m.Vertices[0].Position()
	max = min
	for _, v := range m.Vertices[1:] {
		p := v.Position()
		min = mgl64.Vec3{math.Min(min[0], p[0]), math.Min(min[1], p[1]), math.Min(min[2], p[2])}
		max = mgl64.Vec3{math.Max(max[0], p[0]), math.Max(max[1], p[1]), math.Max(max[2], p[2])}
	}
	return min, max
}

// Stats summarizes table sizes.
type Stats struct {
	Colors, TexCoords, Vertices, Materials, Textures, Faces, Parameters int
	Skipped, Warnings                                                   int
}

// Stats returns the table sizes of the model.
func (m *Model) Stats() Stats {
	return Stats{
		Colors:     len(m.ColorMap),
		TexCoords:  len(m.TextureMap),
		Vertices:   len(m.Vertices),
		Materials:  len(m.Materials),
		Textures:   len(m.Textures),
		Faces:      len(m.Faces),
		Parameters: len(m.Parameters),
		Skipped:    len(m.Skipped),
		Warnings:   len(m.Warnings),
	}
}
