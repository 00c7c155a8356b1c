package m3d

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (s *decodeState) decodeHeader(c *Cursor, ch chunk) error {
	h := &s.model.Header

	scale, err := c.Float32()
	if err != nil {
		return err
	}
	if !(scale > 0) {
		scale = 1.0
	}
	h.Scale = scale

	if h.Descriptor, err = c.Uint32(); err != nil {
		return err
	}
	h.Widths = ResolveFieldWidths(h.Descriptor)
	s.widths = h.Widths

	for _, dst := range []*string{&h.Title, &h.License, &h.Author, &h.Description} {
		if *dst, err = c.String(0); err != nil {
			return err
		}
	}

	for c.Remaining() > 0 {
		str, err := c.String(0)
		if err != nil {
			s.log.Debug("unterminated string table entry", zap.Int("offset", c.Offset()))
			break
		}
		h.StringTable = append(h.StringTable, str)
	}

	s.log.Debug("field widths", zap.Uint32("descriptor", h.Descriptor), zap.Stringer("widths", h.Widths))
	s.log.Info("model metadata",
		zap.String("title", h.Title),
		zap.String("license", h.License),
		zap.String("author", h.Author),
		zap.String("description", h.Description),
		zap.Float32("scale", h.Scale),
	)
	return nil
}

// readColor reads an RGBA8 tuple stored as alpha, blue, green, red.
func readColor(c *Cursor) (Color, error) {
	b, err := c.take(4)
	if err != nil {
		return Color{}, err
	}
	return Color{A: b[0], B: b[1], G: b[2], R: b[3]}, nil
}

// readColorRef reads a color field sized by CI_T. Four-byte colors are
// inline; narrower ones index the color map.
func (s *decodeState) readColorRef(c *Cursor) (Color, Index, bool, error) {
	switch s.widths.ColorIndex.Size() {
	case 0:
		return Color{}, None, true, nil
	case 4:
		col, err := readColor(c)
		return col, None, true, err
	}

	idx, err := c.Index(s.widths.ColorIndex)
	if err != nil || len(s.model.ColorMap) == 0 {
		return Color{}, None, true, err
	}
	if !idx.inRange(len(s.model.ColorMap)) {
		return Color{}, None, false, nil
	}
	if i, ok := idx.Get(); ok {
		return s.model.ColorMap[i], idx, true, nil
	}
	return Color{}, None, true, nil
}

func decodeColorMap(s *decodeState, c *Cursor, ch chunk) error {
	// Gated on the color index width, not the texture index width: the
	// palette is only reachable through color indices.
	if s.duplicate(ch) || !s.requireWidth(ch, s.widths.ColorIndex, "color index") {
		return nil
	}
	s.loaded[ch.tag] = true

	colors := make([]Color, 0, c.Remaining()/4)
	for c.Remaining() >= 4 {
		col, err := readColor(c)
		if err != nil {
			return err
		}
		colors = append(colors, col)
	}
	s.model.ColorMap = colors

	s.log.Debug("colors loaded", zap.Int("count", len(colors)))
	return nil
}

func decodeTextureMap(s *decodeState, c *Cursor, ch chunk) error {
	if s.duplicate(ch) || !s.requireWidth(ch, s.widths.TextureIndex, "texture index") {
		return nil
	}
	s.loaded[ch.tag] = true

	vc := s.widths.VertexCoord
	count := ch.length / (vc.Size() * 2)
	coords := make([]TexCoord, count)
	for i := range coords {
		u, err := c.TexCoord(vc)
		if err != nil {
			return err
		}
		v, err := c.TexCoord(vc)
		if err != nil {
			return err
		}
		coords[i] = TexCoord{U: u, V: v}
	}
	s.model.TextureMap = coords

	s.log.Debug("texture coordinates loaded", zap.Int("count", count))
	return nil
}

func decodeVertices(s *decodeState, c *Cursor, ch chunk) error {
	if s.duplicate(ch) {
		return nil
	}
	w := s.widths
	if w.ColorIndex.Defined() && w.ColorIndex.Size() < 4 && !s.loaded[TagColorMap] {
		s.report(zapcore.WarnLevel, fmt.Errorf("%w: %s before %s, vertex colors unresolved",
			ErrOutOfOrderChunk, TagVertices, TagColorMap), ch.fields()...)
	}
	s.loaded[ch.tag] = true

	recordSize := w.VertexCoord.Size()*4 + w.ColorIndex.Size() + w.SkinIndex.Size()
	count := ch.length / recordSize
	vertices := make([]Vertex, count)
	badColors := 0

	for i := range vertices {
		v := &vertices[i]
		for _, dst := range []*float64{&v.X, &v.Y, &v.Z, &v.W} {
			f, err := c.Coord(w.VertexCoord)
			if err != nil {
				return err
			}
			*dst = f
		}

		col, idx, ok, err := s.readColorRef(c)
		if err != nil {
			return err
		}
		if !ok {
			badColors++
		}
		v.Color, v.ColorIndex = col, idx

		if v.SkinIndex, err = c.Index(w.SkinIndex); err != nil {
			return err
		}
	}
	s.model.Vertices = vertices

	if badColors > 0 {
		s.report(zapcore.WarnLevel, fmt.Errorf("%w: %d vertex color indices exceed %d colors",
			ErrIndexOutOfRange, badColors, len(s.model.ColorMap)), ch.fields()...)
	}
	s.log.Debug("vertices loaded", zap.Int("count", count), zap.Int("recordSize", recordSize))
	return nil
}

// decodeBones validates placement of the BONE chunk. Skeleton data is not decoded.
func decodeBones(s *decodeState, c *Cursor, ch chunk) error {
	if s.duplicate(ch) || !s.requireWidth(ch, s.widths.BoneIndex, "bone index") {
		return nil
	}
	if !s.loaded[TagVertices] {
		s.report(zapcore.ErrorLevel, fmt.Errorf("%w: %s before %s", ErrOutOfOrderChunk, TagBones, TagVertices), ch.fields()...)
		return nil
	}
	s.loaded[ch.tag] = true
	return skipChunk(s, c, ch)
}

func decodeMaterial(s *decodeState, c *Cursor, ch chunk) error {
	name, err := c.String(0)
	if err != nil {
		return err
	}
	if s.model.materialIndex(name) >= 0 {
		s.report(zapcore.ErrorLevel, fmt.Errorf("%w: %q", ErrDuplicateMaterial, name), ch.fields()...)
		return nil
	}

	mat := Material{Name: name}
	for c.Remaining() > 0 {
		id, err := c.Uint8()
		if err != nil {
			return err
		}
		def, ok := LookupProperty(id)
		if !ok {
			s.report(zapcore.WarnLevel, fmt.Errorf("%w: id %d in material %q", ErrUnknownProperty, id, name), ch.fields()...)
			break
		}

		prop, err := s.readProperty(c, def)
		if err != nil {
			return fmt.Errorf("material %q property %d: %w", name, id, err)
		}
		mat.Properties = append(mat.Properties, prop)
	}

	s.model.Materials = append(s.model.Materials, mat)
	s.log.Debug("material loaded", zap.String("name", name), zap.Int("properties", len(mat.Properties)))
	return nil
}

func (s *decodeState) readProperty(c *Cursor, def PropertyDef) (Property, error) {
	prop := Property{ID: def.ID, Format: def.Format, Key: def.Key}

	var err error
	switch def.Format {
	case PropertyColor:
		var ok bool
		prop.Color, prop.ColorIndex, ok, err = s.readColorRef(c)
		if err == nil && s.widths.ColorIndex.Size() == 1 {
			err = c.Skip(1)
		}
		if err == nil && !ok {
			s.report(zapcore.WarnLevel, fmt.Errorf("%w: color of property %s", ErrIndexOutOfRange, def.Key))
		}
	case PropertyUint8:
		var v uint8
		if v, err = c.Uint8(); err == nil {
			prop.Uint = uint32(v)
			err = c.Skip(1)
		}
	case PropertyUint16:
		var v uint16
		v, err = c.Uint16()
		prop.Uint = uint32(v)
	case PropertyUint32:
		prop.Uint, err = c.Uint32()
	case PropertyFloat:
		prop.Float, err = c.Float32()
	case PropertyMap:
		if prop.TextureName, err = c.String(s.widths.StringOffset.Size()); err == nil {
			prop.Texture = s.textureRef(prop.TextureName)
		}
	}
	return prop, err
}

// textureRef returns the texture table entry for name, adding it on first use.
func (s *decodeState) textureRef(name string) Index {
	if name == "" {
		return None
	}
	i := s.model.textureIndex(name)
	if i < 0 {
		i = len(s.model.Textures)
		s.model.Textures = append(s.model.Textures, Texture{Name: name})
	}
	return Some(uint32(i))
}

func decodeMesh(s *decodeState, c *Cursor, ch chunk) error {
	hasVertices := s.loaded[TagVertices]
	if !hasVertices {
		s.report(zapcore.ErrorLevel, fmt.Errorf("%w: %s before %s", ErrOutOfOrderChunk, TagMesh, TagVertices), ch.fields()...)
	}

	w := s.widths
	m := s.model
	material, param := None, None
	badTexCoords, badNormals := 0, 0

	for c.Remaining() > 0 {
		offset := c.Offset()
		magic, err := c.Uint8()
		if err != nil {
			return err
		}
		n, k := magic>>4, magic&0x0f

		if n == 0 {
			name, err := c.String(w.StringOffset.Size())
			if err != nil {
				return err
			}
			if k == 0 {
				material = s.materialRef(name, ch)
			} else if s.vertexMax {
				param = s.parameterRef(name)
			}
			continue
		}

		if n != 3 {
			return fmt.Errorf("%w: %d-sided face at offset %d, only triangles are supported",
				ErrMalformedMesh, n, offset)
		}

		face := Face{Material: material, Param: param}
		for j := 0; j < 3; j++ {
			vi, err := c.Index(w.VertexIndex)
			if err != nil {
				return fmt.Errorf("%w: face at offset %d truncated: %w", ErrMalformedMesh, offset, err)
			}
			v, ok := vi.Get()
			if !ok || (hasVertices && v >= len(m.Vertices)) {
				return fmt.Errorf("%w: face at offset %d references vertex %s of %d",
					ErrMalformedMesh, offset, vi, len(m.Vertices))
			}
			face.Vertices[j] = uint32(v)

			if k&1 != 0 {
				ti, err := c.Index(w.TextureIndex)
				if err != nil {
					return fmt.Errorf("%w: face at offset %d truncated: %w", ErrMalformedMesh, offset, err)
				}
				if !ti.inRange(len(m.TextureMap)) {
					ti = None
					badTexCoords++
				}
				face.TexCoords[j] = ti
			}

			if k&2 != 0 {
				ni, err := c.Index(w.VertexIndex)
				if err != nil {
					return fmt.Errorf("%w: face at offset %d truncated: %w", ErrMalformedMesh, offset, err)
				}
				if hasVertices && !ni.inRange(len(m.Vertices)) {
					ni = None
					badNormals++
				}
				face.Normals[j] = ni
			}

			if k&4 != 0 {
				if s.vertexMax {
					face.VertexMax[j], err = c.Index(w.VertexIndex)
				} else {
					err = c.Skip(w.VertexIndex.Size())
				}
				if err != nil {
					return fmt.Errorf("%w: face at offset %d truncated: %w", ErrMalformedMesh, offset, err)
				}
			}
		}

		m.Faces = append(m.Faces, face)
		if p, ok := param.Get(); ok {
			m.Parameters[p].Count++
		}
	}

	if badTexCoords > 0 {
		s.report(zapcore.WarnLevel, fmt.Errorf("%w: %d texture coordinate indices exceed %d entries",
			ErrIndexOutOfRange, badTexCoords, len(m.TextureMap)), ch.fields()...)
	}
	if badNormals > 0 {
		s.report(zapcore.WarnLevel, fmt.Errorf("%w: %d normal indices exceed %d vertices",
			ErrIndexOutOfRange, badNormals, len(m.Vertices)), ch.fields()...)
	}
	s.log.Debug("mesh loaded", zap.Int("faces", len(m.Faces)))
	return nil
}

// materialRef resolves a material name. An empty name selects no material.
func (s *decodeState) materialRef(name string, ch chunk) Index {
	if name == "" {
		return None
	}
	if i := s.model.materialIndex(name); i >= 0 {
		return Some(uint32(i))
	}
	s.report(zapcore.ErrorLevel, fmt.Errorf("%w: %q", ErrUnknownMaterial, name), ch.fields()...)
	return None
}

// parameterRef resolves a vertex-max parameter, creating it on first use.
func (s *decodeState) parameterRef(name string) Index {
	if name == "" {
		return None
	}
	i := s.model.parameterIndex(name)
	if i < 0 {
		i = len(s.model.Parameters)
		s.model.Parameters = append(s.model.Parameters, Parameter{Name: name})
	}
	return Some(uint32(i))
}

// skipChunk records a recognized chunk whose contents are not decoded.
func skipChunk(s *decodeState, c *Cursor, ch chunk) error {
	s.model.Skipped = append(s.model.Skipped, SkippedChunk{Tag: ch.tag, Offset: ch.offset, Length: ch.length})
	s.log.Debug("chunk skipped", ch.fields()...)
	return c.Skip(c.Remaining())
}

func skipUnknown(s *decodeState, c *Cursor, ch chunk) error {
	s.report(zapcore.WarnLevel, fmt.Errorf("%w: %q at offset %d", ErrUnknownChunkTag, ch.tag, ch.offset), ch.fields()...)
	return skipChunk(s, c, ch)
}
