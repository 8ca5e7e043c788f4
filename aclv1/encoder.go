package aclv1

import (
	"io"

	"github.com/anaminus/parse"

	"github.com/uassetkit/aclfile/errors"
)

// Encoder encodes a Clip into a stream of bytes.
type Encoder struct{}

// writePadding emits n sentinel bytes.
func writePadding(fw *parse.BinaryWriter, n int) (failed bool) {
	if fw.Err() != nil {
		return true
	}
	if n <= 0 {
		return false
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = sentinel
	}
	return fw.Bytes(buf)
}

// Encode writes clip to w as one compressed-clip record. Encode is the exact
// mirror of Decode: for any record Decode accepts, encoding the decoded Clip
// reproduces the record byte for byte. The clip is assumed structurally
// valid; cross-field consistency is not re-checked.
func (e Encoder) Encode(w io.Writer, clip *Clip) (err error) {
	if w == nil {
		return errors.New("nil writer")
	}
	if clip == nil {
		return errors.New("nil clip")
	}
	fw := parse.NewBinaryWriter(w)
	e.encode(fw, clip)
	n, err := fw.End()
	if err != nil {
		return DataError{Offset: n, Cause: err}
	}
	return nil
}

func (e Encoder) encode(fw *parse.BinaryWriter, clip *Clip) (failed bool) {
	if fw.Number(clip.Size) ||
		fw.Bytes(clip.Hash[:]) ||
		fw.Bytes(bufferTag[:]) ||
		fw.Number(formatVersion) ||
		fw.Number(algorithmUniformlySampled) ||
		fw.Number(uint8(0)) {
		return true
	}

	// pos tracks the write position relative to the clip header, mirroring
	// the offsets the decoder checks against.
	var pos int64

	if clip.Header.writeTo(fw) {
		return true
	}
	pos += clipHeaderSize

	for i := range clip.Segments {
		if clip.Segments[i].Header.writeTo(fw) {
			return true
		}
		pos += segmentHeaderSize
	}

	for _, word := range clip.DefaultBitset {
		if fw.Number(word) {
			return true
		}
	}
	pos += int64(4 * len(clip.DefaultBitset))
	for _, word := range clip.ConstantBitset {
		if fw.Number(word) {
			return true
		}
	}
	pos += int64(4 * len(clip.ConstantBitset))

	for _, f := range clip.ConstantData {
		if writeFloat32(fw, f) {
			return true
		}
	}
	pos += int64(4 * len(clip.ConstantData))

	for i := range clip.ClipRanges {
		if clip.ClipRanges[i].writeTo(fw) {
			return true
		}
	}
	pos += int64(24 * len(clip.ClipRanges))

	for i := range clip.Segments {
		seg := &clip.Segments[i]

		if fw.Bytes(seg.BitRates) {
			return true
		}
		pos += int64(len(seg.BitRates))
		n := padLen(pos, 2)
		if writePadding(fw, n) {
			return true
		}
		pos += int64(n)

		for j := range seg.Ranges {
			if seg.Ranges[j].writeTo(fw) {
				return true
			}
		}
		pos += int64(6 * len(seg.Ranges))
		n = padLen(pos, 4)
		if writePadding(fw, n) {
			return true
		}
		pos += int64(n)

		if fw.Bytes(seg.TrackData) {
			return true
		}
		pos += int64(len(seg.TrackData))
	}

	return writePadding(fw, tailSize)
}
