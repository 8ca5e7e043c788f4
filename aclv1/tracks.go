package aclv1

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/uassetkit/aclfile"
)

// boneTrack records how each of one bone's three attributes is stored, along
// with the bone's cursor into the shared constant-data array. Attributes the
// clip does not carry (scale, when HasScale is zero) are flagged both default
// and constant, so they consume neither constants nor range entries.
type boneTrack struct {
	useDefault    [3]bool
	useConstant   [3]bool
	constantIndex int
}

// setFlags assigns the bone's flags from the expanded bitsets. bone flags
// start at bone*numAttr within each flag set.
func (t *boneTrack) setFlags(defaults, constants trackFlags, bone, numAttr int) {
	for attr := 0; attr < 3; attr++ {
		if attr >= numAttr {
			t.useDefault[attr] = true
			t.useConstant[attr] = true
			continue
		}
		t.useDefault[attr] = defaults[bone*numAttr+attr]
		t.useConstant[attr] = constants[bone*numAttr+attr]
	}
}

// constantCount returns the number of floats the bone consumes from the
// constant-data array: three per component that is constant but not default.
func (t *boneTrack) constantCount() int {
	n := 0
	for attr := 0; attr < 3; attr++ {
		if !t.useDefault[attr] && t.useConstant[attr] {
			n += 3
		}
	}
	return n
}

// rangeCount returns the number of the bone's components that are animated
// (range-reduced): those not flagged constant.
func (t *boneTrack) rangeCount() int {
	n := 0
	for attr := 0; attr < 3; attr++ {
		if !t.useConstant[attr] {
			n++
		}
	}
	return n
}

// state reports how one attribute is stored.
func (t *boneTrack) state(attr int) aclfile.TrackState {
	switch {
	case !t.useConstant[attr]:
		return aclfile.TrackAnimated
	case t.useDefault[attr]:
		return aclfile.TrackDefault
	default:
		return aclfile.TrackConstant
	}
}

////////////////////////////////////////////////////////////////

// unpackSegment decodes one segment's packed track data, appending numSamples
// values to each animated component's pool. Components are addressed
// consecutively within each sample's pose stride; dequantization applies the
// segment range first (when present), then the clip range, except for the
// 32-bit full-precision escape, which bypasses both.
func unpackSegment(data []byte, numSamples int, rates []uint8, segRanges []SegmentRange, clipRanges []RangeData, pools [][]mgl32.Vec3) {
	stride := poseStride(rates)
	cur := bitCursor{buf: data}
	offset := 0
	for ci, ri := range rates {
		bits := uint(bitRateBits[ri])
		for s := 0; s < numSamples; s++ {
			cur.seek(s*stride + offset)
			var v mgl32.Vec3
			switch bits {
			case 32:
				for k := 0; k < 3; k++ {
					v[k] = math.Float32frombits(cur.readBits(32))
				}
			case 0:
				// Decodes to normalized zero; the range stages still apply.
			default:
				max := float32(uint32(1)<<bits - 1)
				for k := 0; k < 3; k++ {
					v[k] = float32(cur.readBits(bits)) / max
				}
			}
			if bits != 32 {
				if segRanges != nil {
					v = segRanges[ci].expand(v)
				}
				v = clipRanges[ci].expand(v)
			}
			pools[ci] = append(pools[ci], v)
		}
		offset += int(bits) * 3
	}
}

// packSegment quantizes and packs one segment's samples, the exact inverse of
// unpackSegment. samples holds one full-length sequence per animated
// component in counting order, in real units.
func packSegment(numSamples int, rates []uint8, segRanges []SegmentRange, clipRanges []RangeData, samples [][]mgl32.Vec3) []byte {
	stride := poseStride(rates)
	cur := bitCursor{buf: make([]byte, (stride*numSamples+7)/8)}
	offset := 0
	for ci, ri := range rates {
		bits := uint(bitRateBits[ri])
		if bits == 0 {
			continue
		}
		for s := 0; s < numSamples; s++ {
			cur.seek(s*stride + offset)
			v := samples[ci][s]
			if bits == 32 {
				for k := 0; k < 3; k++ {
					cur.writeBits(math.Float32bits(v[k]), 32)
				}
				continue
			}
			v = clipRanges[ci].normalize(v)
			if segRanges != nil {
				v = segRanges[ci].normalize(v)
			}
			max := float64(uint32(1)<<bits - 1)
			for k := 0; k < 3; k++ {
				q := math.Round(float64(v[k]) * max)
				if q < 0 {
					q = 0
				} else if q > max {
					q = max
				}
				cur.writeBits(uint32(q), bits)
			}
		}
		offset += int(bits) * 3
	}
	return cur.buf
}
