package aclv1

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/anaminus/parse"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/uassetkit/aclfile/errors"
)

// Decoder decodes a stream of bytes into a Clip.
type Decoder struct{}

func decodeError(r *parse.BinaryReader, err error) error {
	r.Add(0, err)
	err = r.Err()
	if err != nil {
		return DataError{Offset: r.N(), Cause: err}
	}
	return nil
}

// checkSection asserts that the cursor sits at the offset the header declares
// for a section. The offsets double as structural self-consistency checks;
// a mismatch means the record does not match its own layout.
func checkSection(fr *parse.BinaryReader, headerStart int64, section string, offset int64) (failed bool) {
	if pos := fr.N() - headerStart; pos != offset {
		fr.Add(0, SectionError{Section: section, Pos: pos, Offset: offset})
		return true
	}
	return false
}

// padLen returns the number of bytes needed to advance pos to the next align
// boundary.
func padLen(pos int64, align int64) int {
	return int((align - pos%align) % align)
}

// readPadding consumes n bytes and verifies each one is the sentinel.
func readPadding(fr *parse.BinaryReader, n int) (failed bool) {
	if n <= 0 {
		return fr.Err() != nil
	}
	buf := make([]byte, n)
	if fr.Bytes(buf) {
		return true
	}
	for _, b := range buf {
		if b != sentinel {
			fr.Add(0, PaddingError(b))
			return true
		}
	}
	return false
}

// Decode reads one compressed-clip record from r, which must be positioned at
// the start of the record. The returned warn collects non-fatal oddities
// (non-zero reserved fields, disagreeing declared sizes); err is non-nil when
// the record is unsupported or does not match its own declared structure, and
// no partial Clip is returned.
func (d Decoder) Decode(r io.Reader) (clip *Clip, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	fr := parse.NewBinaryReader(r)
	var warns errors.Errors
	clip = &Clip{}

	if fr.Number(&clip.Size) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if fr.Bytes(clip.Hash[:]) {
		return nil, warns.Return(), decodeError(fr, nil)
	}

	var tag [4]byte
	if fr.Bytes(tag[:]) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if tag != bufferTag {
		return nil, warns.Return(), decodeError(fr, UnsupportedError{Field: "buffer tag", Value: binary.LittleEndian.Uint32(tag[:])})
	}

	var version uint16
	if fr.Number(&version) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if version != formatVersion {
		return nil, warns.Return(), decodeError(fr, UnsupportedError{Field: "version", Value: uint32(version)})
	}

	var algorithm, pad uint8
	if fr.Number(&algorithm) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if algorithm != algorithmUniformlySampled {
		return nil, warns.Return(), decodeError(fr, UnsupportedError{Field: "algorithm type", Value: uint32(algorithm)})
	}
	if fr.Number(&pad) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if pad != 0 {
		return nil, warns.Return(), decodeError(fr, reservedError{Field: "record padding", Value: uint32(pad)})
	}

	// All section offsets are relative to the start of the clip header.
	headerStart := fr.N()
	h := &clip.Header
	if h.readFrom(fr) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if err := h.validate(); err != nil {
		return nil, warns.Return(), decodeError(fr, err)
	}
	if h.Padding != 0 {
		warns = warns.Append(reservedError{Field: "clip header padding", Value: uint32(h.Padding)})
	}
	if h.Padding2 != 0 {
		warns = warns.Append(reservedError{Field: "clip header padding2", Value: uint32(h.Padding2)})
	}

	numAttr := h.NumAttributes()
	numFlags := int(h.NumBones) * numAttr

	// Segment headers.
	if checkSection(fr, headerStart, "segment headers", int64(h.SegmentHeadersOffset)) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	clip.Segments = make([]Segment, h.NumSegments)
	for i := range clip.Segments {
		if clip.Segments[i].Header.readFrom(fr) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
	}

	// Track bitsets.
	if checkSection(fr, headerStart, "default bitset", int64(h.DefaultBitsetOffset)) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	clip.DefaultBitset = make([]uint32, h.DefaultBitsetSize()/4)
	for i := range clip.DefaultBitset {
		if fr.Number(&clip.DefaultBitset[i]) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
	}
	if checkSection(fr, headerStart, "constant bitset", int64(h.ConstantBitsetOffset)) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	clip.ConstantBitset = make([]uint32, h.ConstantBitsetSize()/4)
	for i := range clip.ConstantBitset {
		if fr.Number(&clip.ConstantBitset[i]) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
	}
	if len(clip.DefaultBitset)*32 < numFlags || len(clip.ConstantBitset)*32 < numFlags {
		return nil, warns.Return(), decodeError(fr, ErrBitsetShort)
	}
	defaults := unpackBitset(clip.DefaultBitset, numFlags)
	constants := unpackBitset(clip.ConstantBitset, numFlags)

	// Constant track data.
	if checkSection(fr, headerStart, "constant data", int64(h.ConstantDataOffset)) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	clip.ConstantData = make([]float32, h.ConstantDataSize()/4)
	for i := range clip.ConstantData {
		if readFloat32(fr, &clip.ConstantData[i]) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
	}

	// Per-bone flags, constant cursors, and the animated component count.
	clip.tracks = make([]boneTrack, h.NumBones)
	constantCursor := 0
	rangeCount := 0
	for i := range clip.tracks {
		t := &clip.tracks[i]
		t.setFlags(defaults, constants, i, numAttr)
		t.constantIndex = constantCursor
		constantCursor += t.constantCount()
		rangeCount += t.rangeCount()
	}
	if constantCursor != len(clip.ConstantData) {
		return nil, warns.Return(), decodeError(fr, ErrConstantCount)
	}

	// Clip range data.
	if checkSection(fr, headerStart, "clip range data", int64(h.ClipRangeDataOffset)) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	clip.ClipRanges = make([]RangeData, rangeCount)
	for i := range clip.ClipRanges {
		if clip.ClipRanges[i].readFrom(fr) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
	}

	// Segments.
	clip.pools = make([][]mgl32.Vec3, rangeCount)
	var sampleTotal uint32
	for si := range clip.Segments {
		seg := &clip.Segments[si]
		sampleTotal += seg.Header.NumSamples

		if rangeCount != 0 && checkSection(fr, headerStart, "bit rate table", int64(seg.Header.BitRateOffset)) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
		seg.BitRates = make([]uint8, rangeCount)
		if rangeCount != 0 && fr.Bytes(seg.BitRates) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
		for _, ri := range seg.BitRates {
			if int(ri) >= len(bitRateBits) {
				return nil, warns.Return(), decodeError(fr, BitRateError(ri))
			}
		}
		if stride := poseStride(seg.BitRates); int32(stride) != seg.Header.PoseBitSize {
			warns = warns.Append(poseBitSizeError{Segment: si, Declared: seg.Header.PoseBitSize, Actual: int32(stride)})
		}
		if readPadding(fr, padLen(fr.N()-headerStart, 2)) {
			return nil, warns.Return(), decodeError(fr, nil)
		}

		if h.SegmentRangeReduction == RangeReduceAllTracks {
			if checkSection(fr, headerStart, "segment range data", int64(seg.Header.RangeDataOffset)) {
				return nil, warns.Return(), decodeError(fr, nil)
			}
			seg.Ranges = make([]SegmentRange, rangeCount)
			for i := range seg.Ranges {
				if seg.Ranges[i].readFrom(fr) {
					return nil, warns.Return(), decodeError(fr, nil)
				}
			}
		}
		if readPadding(fr, padLen(fr.N()-headerStart, 4)) {
			return nil, warns.Return(), decodeError(fr, nil)
		}

		if rangeCount != 0 && checkSection(fr, headerStart, "track data", int64(seg.Header.TrackDataOffset)) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
		size := (poseStride(seg.BitRates)*int(seg.Header.NumSamples) + 7) / 8
		seg.TrackData = make([]byte, size)
		if size != 0 && fr.Bytes(seg.TrackData) {
			return nil, warns.Return(), decodeError(fr, nil)
		}
		unpackSegment(seg.TrackData, int(seg.Header.NumSamples), seg.BitRates, seg.Ranges, clip.ClipRanges, clip.pools)
	}
	if sampleTotal != h.NumSamples {
		warns = warns.Append(fmt.Errorf("segments hold %d samples, clip header declares %d", sampleTotal, h.NumSamples))
	}

	// Sentinel tail and total size.
	if readPadding(fr, tailSize) {
		return nil, warns.Return(), decodeError(fr, nil)
	}
	if fr.N() != int64(clip.Size) {
		return nil, warns.Return(), decodeError(fr, SizeError{Declared: clip.Size, Consumed: fr.N()})
	}
	return clip, warns.Return(), nil
}
