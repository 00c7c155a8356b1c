package m3d

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// chunk describes the chunk being decoded.
type chunk struct {
	tag    string
	offset int // offset of the tag in the decoded stream
	length int // payload length, framing excluded
}

func (ch chunk) fields() []zap.Field {
	return []zap.Field{
		zap.String("chunk", ch.tag),
		zap.Int("offset", ch.offset),
		zap.Int("length", ch.length),
	}
}

// chunkHandler decodes one chunk. c is bounded to the chunk payload.
type chunkHandler func(s *decodeState, c *Cursor, ch chunk) error

var chunkHandlers = map[string]chunkHandler{
	TagColorMap:   decodeColorMap,
	TagTextureMap: decodeTextureMap,
	TagVertices:   decodeVertices,
	TagBones:      decodeBones,
	TagMaterial:   decodeMaterial,
	TagMesh:       decodeMesh,
	TagProcedural: skipChunk,
	TagShape:      skipChunk,
	TagVoxelTypes: skipChunk,
	TagVoxelData:  skipChunk,
	TagLabels:     skipChunk,
	TagActions:    skipChunk,
	TagAssets:     skipChunk,
}

// decodeState is the per-call decoder context.
type decodeState struct {
	log       *zap.Logger
	vertexMax bool

	model  *Model
	widths FieldWidths
	loaded map[string]bool // unique chunks seen: CMAP, TMAP, VRTS, BONE
}

func newDecodeState(log *zap.Logger, vertexMax bool) *decodeState {
	return &decodeState{
		log:       log,
		vertexMax: vertexMax,
		model:     &Model{},
		loaded:    make(map[string]bool),
	}
}

// report logs a recoverable condition and records it on the model.
func (s *decodeState) report(level zapcore.Level, err error, fields ...zap.Field) {
	s.model.Warnings = append(s.model.Warnings, err)
	if ce := s.log.Check(level, err.Error()); ce != nil {
		ce.Write(fields...)
	}
}

// duplicate reports a second occurrence of a unique chunk.
func (s *decodeState) duplicate(ch chunk) bool {
	if !s.loaded[ch.tag] {
		return false
	}
	s.report(zapcore.ErrorLevel, fmt.Errorf("%w: %s at offset %d", ErrDuplicateChunk, ch.tag, ch.offset), ch.fields()...)
	return true
}

// requireWidth reports a chunk whose data needs an undefined index width.
func (s *decodeState) requireWidth(ch chunk, t IndexType, field string) bool {
	if t.Defined() {
		return true
	}
	s.report(zapcore.ErrorLevel, fmt.Errorf("%w: %s needs %s", ErrMissingFieldWidth, ch.tag, field), ch.fields()...)
	return false
}

// readChunk reads the tag and length prefix and returns a cursor over the payload.
func readChunk(cur *Cursor, tag string, offset int) (*Cursor, chunk, error) {
	size, err := cur.Uint32()
	if err != nil {
		return nil, chunk{}, err
	}
	if size < chunkFraming || int64(size)-chunkFraming > int64(cur.Remaining()) {
		return nil, chunk{}, fmt.Errorf("%w: %s at offset %d declares %d bytes, %d available",
			ErrInvalidChunkLength, tag, offset, size, cur.Remaining()+chunkFraming)
	}
	ch := chunk{tag: tag, offset: offset, length: int(size) - chunkFraming}
	payload, err := cur.Sub(ch.length)
	if err != nil {
		return nil, chunk{}, err
	}
	return payload, ch, nil
}

// readPreview reads the preview image. Unlike other chunks its length
// counts only the image bytes.
func readPreview(cur *Cursor, offset int) ([]byte, error) {
	size, err := cur.Uint32()
	if err != nil {
		return nil, err
	}
	if int64(size) > int64(cur.Remaining()) {
		return nil, fmt.Errorf("%w: %s at offset %d declares %d bytes, %d available",
			ErrInvalidChunkLength, TagPreview, offset, size, cur.Remaining())
	}
	return cur.Bytes(int(size))
}

func (s *decodeState) decodeBinary(cur *Cursor) (*Model, error) {
	offset := cur.Offset()
	tag, err := cur.Tag()
	if err != nil {
		return nil, err
	}

	if tag == TagPreview {
		data, err := readPreview(cur, offset)
		if err != nil {
			return nil, err
		}
		s.model.Preview = &Preview{Data: data}
		s.log.Debug("preview image", zap.Int("offset", offset), zap.Int("length", len(data)))

		offset = cur.Offset()
		if tag, err = cur.Tag(); err != nil {
			return nil, err
		}
	}

	if tag != TagHeader {
		s.log.Info("header not found, assuming compressed data", zap.Int("offset", offset))

		start := cur.Pos() - 4
		raw, err := cur.PeekAt(start, cur.Len()-start)
		if err != nil {
			return nil, err
		}
		inflated, err := inflate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMissingHeader, err)
		}
		s.log.Debug("decompressed chunk stream", zap.Int("compressed", len(raw)), zap.Int("size", len(inflated)))

		cur = NewCursor(inflated)
		offset = 0
		if tag, err = cur.Tag(); err != nil || tag != TagHeader {
			return nil, fmt.Errorf("%w: got %q after decompression", ErrMissingHeader, tag)
		}
	}

	payload, ch, err := readChunk(cur, tag, offset)
	if err != nil {
		return nil, err
	}
	if err := s.decodeHeader(payload, ch); err != nil {
		return nil, fmt.Errorf("HEAD chunk: %w", err)
	}

	w := s.widths
	if w.VertexCoord.Size() > 4 {
		s.report(zapcore.WarnLevel, fmt.Errorf("%w: coordinates will lose precision in float consumers", ErrDoublePrecision))
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	trailer, err := cur.PeekAt(cur.Len()-4, 4)
	if err != nil || string(trailer) != TagEnd {
		return nil, fmt.Errorf("%w: last 4 bytes are %q", ErrMissingTrailer, trailer)
	}

	if w.BonesPerVertex > MaxBonesPerVertex {
		s.report(zapcore.ErrorLevel, fmt.Errorf("%w: file uses %d, limit is %d",
			ErrExcessBones, w.BonesPerVertex, MaxBonesPerVertex))
	}

	return s.decodeChunks(cur)
}

// decodeChunks runs the chunk loop until the OMD3 tag.
func (s *decodeState) decodeChunks(cur *Cursor) (*Model, error) {
	for {
		offset := cur.Offset()
		tag, err := cur.Tag()
		if err != nil {
			if errors.Is(err, ErrUnexpectedEOF) && cur.Remaining() == 0 {
				return nil, fmt.Errorf("%w: chunk stream ended without %s", ErrMissingTrailer, TagEnd)
			}
			return nil, err
		}

		if tag == TagEnd {
			s.log.Debug("end of file reached", zap.Int("offset", offset), zap.Int("trailing", cur.Remaining()))
			return s.model, nil
		}

		payload, ch, err := readChunk(cur, tag, offset)
		if err != nil {
			return nil, err
		}
		s.log.Debug("chunk", ch.fields()...)

		handler, ok := chunkHandlers[tag]
		if !ok {
			handler = skipUnknown
		}
		if err := handler(s, payload, ch); err != nil {
			return nil, fmt.Errorf("%s chunk at offset %d: %w", tag, offset, err)
		}
		if n := payload.Remaining(); n > 0 {
			s.log.Debug("unread chunk bytes", zap.String("chunk", tag), zap.Int("bytes", n))
		}
	}
}
