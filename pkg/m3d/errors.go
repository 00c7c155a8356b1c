package m3d

import "errors"

// Fatal decode errors. Decode returns one of these (wrapped) and no Model.
var (
	ErrBadMagic           = errors.New("invalid M3D magic: expected '3DMO'")
	ErrASCIIUnsupported   = errors.New("ASCII M3D ('3dmo') is not supported")
	ErrMissingHeader      = errors.New("missing HEAD chunk")
	ErrMissingTrailer     = errors.New("missing OMD3 end chunk")
	ErrInvalidFieldWidth  = errors.New("unsupported field width")
	ErrMalformedMesh      = errors.New("malformed mesh")
	ErrUnexpectedEOF      = errors.New("unexpected end of M3D data")
	ErrInvalidChunkLength = errors.New("invalid chunk length")
	ErrDecompress         = errors.New("decompressing M3D data")
	ErrUnsupportedFile    = errors.New("unsupported file extension: expected .m3d or .a3d")
)

// Recoverable conditions. They are logged and collected in Model.Warnings.
var (
	ErrDuplicateChunk    = errors.New("duplicate chunk")
	ErrOutOfOrderChunk   = errors.New("chunk out of order")
	ErrUnknownChunkTag   = errors.New("unknown chunk tag")
	ErrMissingFieldWidth = errors.New("chunk requires an undefined field width")
	ErrDuplicateMaterial = errors.New("duplicate material definition")
	ErrUnknownMaterial   = errors.New("reference to unknown material")
	ErrUnknownProperty   = errors.New("unknown material property")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrExcessBones       = errors.New("more bones per vertex than supported")
	ErrDoublePrecision   = errors.New("double precision coordinates")
)
