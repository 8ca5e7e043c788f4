package aclv1

import (
	"math"

	"github.com/anaminus/parse"
	"github.com/go-gl/mathgl/mgl32"
)

////////////////////////////////////////////////////////////////

func readFloat32(f *parse.BinaryReader, data *float32) (failed bool) {
	var bits uint32
	if f.Number(&bits) {
		return true
	}
	*data = math.Float32frombits(bits)
	return false
}

func writeFloat32(f *parse.BinaryWriter, data float32) (failed bool) {
	return f.Number(math.Float32bits(data))
}

////////////////////////////////////////////////////////////////

// ClipHeader is the fixed 32-byte header of a compressed-clip record. All
// offsets are in bytes, relative to the start of the header itself.
type ClipHeader struct {
	// NumBones is the number of bones the clip animates.
	NumBones uint16

	// NumSegments is the number of segments the clip's samples are split
	// into.
	NumSegments uint16

	RotationFormat    RotationFormat
	TranslationFormat VectorFormat
	ScaleFormat       VectorFormat

	ClipRangeReduction    RangeReduction
	SegmentRangeReduction RangeReduction

	// HasScale is non-zero if the clip stores scale tracks. Without scale,
	// each bone has two attributes instead of three.
	HasScale uint8

	// DefaultScale is non-zero if defaulted scale tracks mean unit scale.
	DefaultScale uint8

	// Padding is reserved. It is carried verbatim and expected to be zero.
	Padding uint8

	// NumSamples is the total number of samples per track across all
	// segments.
	NumSamples uint32

	// SampleRate is the number of samples per second.
	SampleRate uint32

	SegmentHeadersOffset uint16
	DefaultBitsetOffset  uint16
	ConstantBitsetOffset uint16
	ConstantDataOffset   uint16
	ClipRangeDataOffset  uint16

	// Padding2 is reserved. It is carried verbatim and expected to be zero.
	Padding2 uint16
}

func (h *ClipHeader) readFrom(fr *parse.BinaryReader) (failed bool) {
	return fr.Number(&h.NumBones) ||
		fr.Number(&h.NumSegments) ||
		fr.Number((*uint8)(&h.RotationFormat)) ||
		fr.Number((*uint8)(&h.TranslationFormat)) ||
		fr.Number((*uint8)(&h.ScaleFormat)) ||
		fr.Number((*uint8)(&h.ClipRangeReduction)) ||
		fr.Number((*uint8)(&h.SegmentRangeReduction)) ||
		fr.Number(&h.HasScale) ||
		fr.Number(&h.DefaultScale) ||
		fr.Number(&h.Padding) ||
		fr.Number(&h.NumSamples) ||
		fr.Number(&h.SampleRate) ||
		fr.Number(&h.SegmentHeadersOffset) ||
		fr.Number(&h.DefaultBitsetOffset) ||
		fr.Number(&h.ConstantBitsetOffset) ||
		fr.Number(&h.ConstantDataOffset) ||
		fr.Number(&h.ClipRangeDataOffset) ||
		fr.Number(&h.Padding2)
}

func (h *ClipHeader) writeTo(fw *parse.BinaryWriter) (failed bool) {
	return fw.Number(h.NumBones) ||
		fw.Number(h.NumSegments) ||
		fw.Number(uint8(h.RotationFormat)) ||
		fw.Number(uint8(h.TranslationFormat)) ||
		fw.Number(uint8(h.ScaleFormat)) ||
		fw.Number(uint8(h.ClipRangeReduction)) ||
		fw.Number(uint8(h.SegmentRangeReduction)) ||
		fw.Number(h.HasScale) ||
		fw.Number(h.DefaultScale) ||
		fw.Number(h.Padding) ||
		fw.Number(h.NumSamples) ||
		fw.Number(h.SampleRate) ||
		fw.Number(h.SegmentHeadersOffset) ||
		fw.Number(h.DefaultBitsetOffset) ||
		fw.Number(h.ConstantBitsetOffset) ||
		fw.Number(h.ConstantDataOffset) ||
		fw.Number(h.ClipRangeDataOffset) ||
		fw.Number(h.Padding2)
}

// validate rejects headers outside the supported subset, and section offsets
// that are not monotonically increasing or produce invalid section sizes.
func (h *ClipHeader) validate() error {
	if h.ClipRangeReduction != RangeReduceAllTracks {
		return UnsupportedError{Field: "clip range reduction", Value: uint32(h.ClipRangeReduction)}
	}
	if h.SegmentRangeReduction != RangeReduceNone && h.SegmentRangeReduction != RangeReduceAllTracks {
		return UnsupportedError{Field: "segment range reduction", Value: uint32(h.SegmentRangeReduction)}
	}
	if h.RotationFormat != RotationQuatDropWVariable {
		return UnsupportedError{Field: "rotation format", Value: uint32(h.RotationFormat)}
	}
	if h.TranslationFormat != Vector3Variable {
		return UnsupportedError{Field: "translation format", Value: uint32(h.TranslationFormat)}
	}
	if h.ScaleFormat != Vector3Variable {
		return UnsupportedError{Field: "scale format", Value: uint32(h.ScaleFormat)}
	}
	if h.DefaultScale != 1 {
		return UnsupportedError{Field: "default scale", Value: uint32(h.DefaultScale)}
	}
	if h.SegmentHeadersOffset > h.DefaultBitsetOffset ||
		h.DefaultBitsetOffset > h.ConstantBitsetOffset ||
		h.ConstantBitsetOffset > h.ConstantDataOffset ||
		h.ConstantDataOffset > h.ClipRangeDataOffset {
		return ErrSectionSize
	}
	if h.DefaultBitsetSize()%4 != 0 || h.ConstantBitsetSize()%4 != 0 || h.ConstantDataSize()%4 != 0 {
		return ErrSectionSize
	}
	return nil
}

// NumAttributes returns the number of attributes per bone: rotation and
// translation, plus scale if the clip stores it.
func (h *ClipHeader) NumAttributes() int {
	if h.HasScale != 0 {
		return 3
	}
	return 2
}

// DefaultBitsetSize returns the size in bytes of the default-tracks bitset.
func (h *ClipHeader) DefaultBitsetSize() int {
	return int(h.ConstantBitsetOffset) - int(h.DefaultBitsetOffset)
}

// ConstantBitsetSize returns the size in bytes of the constant-tracks bitset.
func (h *ClipHeader) ConstantBitsetSize() int {
	return int(h.ConstantDataOffset) - int(h.ConstantBitsetOffset)
}

// ConstantDataSize returns the size in bytes of the constant-tracks data.
func (h *ClipHeader) ConstantDataSize() int {
	return int(h.ClipRangeDataOffset) - int(h.ConstantDataOffset)
}

////////////////////////////////////////////////////////////////

// SegmentHeader is the fixed 20-byte header of one segment. All offsets are
// in bytes, relative to the start of the clip header.
type SegmentHeader struct {
	// NumSamples is the number of samples per track within the segment.
	NumSamples uint32

	// PoseBitSize is the declared total bit size of one animated pose.
	PoseBitSize int32

	// BitRateOffset locates the segment's bit-rate table.
	BitRateOffset int32

	// RangeDataOffset locates the segment's range data. It is meaningful only
	// when segment range reduction is active.
	RangeDataOffset int32

	// TrackDataOffset locates the segment's packed track data.
	TrackDataOffset int32
}

func (h *SegmentHeader) readFrom(fr *parse.BinaryReader) (failed bool) {
	return fr.Number(&h.NumSamples) ||
		fr.Number(&h.PoseBitSize) ||
		fr.Number(&h.BitRateOffset) ||
		fr.Number(&h.RangeDataOffset) ||
		fr.Number(&h.TrackDataOffset)
}

func (h *SegmentHeader) writeTo(fw *parse.BinaryWriter) (failed bool) {
	return fw.Number(h.NumSamples) ||
		fw.Number(h.PoseBitSize) ||
		fw.Number(h.BitRateOffset) ||
		fw.Number(h.RangeDataOffset) ||
		fw.Number(h.TrackDataOffset)
}

////////////////////////////////////////////////////////////////

// Segment holds one segment's tables and packed samples.
type Segment struct {
	Header SegmentHeader

	// BitRates holds one bit-rate table index per animated component, in the
	// order animated components were counted across bones.
	BitRates []uint8

	// Ranges holds one range per animated component. It is nil when segment
	// range reduction is inactive.
	Ranges []SegmentRange

	// TrackData is the packed sample bitstream, retained verbatim so that
	// re-encoding reproduces the original bytes.
	TrackData []byte
}

// Clip models one compressed-clip record. Directly, it can be used to control
// exactly how a record is encoded. A Clip produced by Decode additionally
// carries the decoded sample pools consumed by Animation.
type Clip struct {
	// Size is the declared byte size of the record, including the size field
	// itself.
	Size uint32

	// Hash is the record's 4-byte content hash. The codec carries it opaquely
	// and re-emits it verbatim.
	Hash [4]byte

	Header   ClipHeader
	Segments []Segment

	// DefaultBitset and ConstantBitset are the packed per-(bone, attribute)
	// flag words: default means the attribute is not stored at all, constant
	// means it is stored once in ConstantData.
	DefaultBitset  []uint32
	ConstantBitset []uint32

	// ConstantData holds the constant vectors, three floats per constant
	// non-default component, in bone then attribute order.
	ConstantData []float32

	// ClipRanges holds one clip-level range per animated component.
	ClipRanges []RangeData

	// tracks is the per-bone flag and constant-cursor bookkeeping derived
	// from the bitsets.
	tracks []boneTrack

	// pools holds the decoded sample sequences, one per animated component in
	// counting order, each spanning every segment.
	pools [][]mgl32.Vec3
}

// RangeCount returns the number of animated (range-reduced) components in the
// clip. It is invariant across the clip and every segment.
func (c *Clip) RangeCount() int {
	n := 0
	for i := range c.tracks {
		n += c.tracks[i].rangeCount()
	}
	return n
}
