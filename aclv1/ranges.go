package aclv1

import (
	"github.com/anaminus/parse"
	"github.com/go-gl/mathgl/mgl32"
)

// RangeData is a clip-level range used for dequantization: a minimum and an
// extent per component, in real units. It defines the affine map
// value = normalized*Extent + Min.
type RangeData struct {
	Min    mgl32.Vec3
	Extent mgl32.Vec3
}

func (r *RangeData) readFrom(fr *parse.BinaryReader) (failed bool) {
	for i := 0; i < 3; i++ {
		if readFloat32(fr, &r.Min[i]) {
			return true
		}
	}
	for i := 0; i < 3; i++ {
		if readFloat32(fr, &r.Extent[i]) {
			return true
		}
	}
	return false
}

func (r *RangeData) writeTo(fw *parse.BinaryWriter) (failed bool) {
	for i := 0; i < 3; i++ {
		if writeFloat32(fw, r.Min[i]) {
			return true
		}
	}
	for i := 0; i < 3; i++ {
		if writeFloat32(fw, r.Extent[i]) {
			return true
		}
	}
	return false
}

// expand maps a normalized vector into real units.
func (r RangeData) expand(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		v[0]*r.Extent[0] + r.Min[0],
		v[1]*r.Extent[1] + r.Min[1],
		v[2]*r.Extent[2] + r.Min[2],
	}
}

// normalize is the inverse of expand. Components with zero extent map to 0.
func (r RangeData) normalize(v mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		if r.Extent[i] != 0 {
			out[i] = (v[i] - r.Min[i]) / r.Extent[i]
		}
	}
	return out
}

////////////////////////////////////////////////////////////////

// SegmentRange is a per-segment range stored in reduced precision: a minimum
// and an extent per component, each a signed byte. The values are consumed
// verbatim as an intermediate normalization stage between the quantized
// integer and the clip-level range.
type SegmentRange struct {
	Min    [3]int8
	Extent [3]int8
}

func (r *SegmentRange) readFrom(fr *parse.BinaryReader) (failed bool) {
	var buf [6]byte
	if fr.Bytes(buf[:]) {
		return true
	}
	for i := 0; i < 3; i++ {
		r.Min[i] = int8(buf[i])
		r.Extent[i] = int8(buf[3+i])
	}
	return false
}

func (r *SegmentRange) writeTo(fw *parse.BinaryWriter) (failed bool) {
	var buf [6]byte
	for i := 0; i < 3; i++ {
		buf[i] = byte(r.Min[i])
		buf[3+i] = byte(r.Extent[i])
	}
	return fw.Bytes(buf[:])
}

// expand maps a normalized vector into the reduced-precision intermediate
// space.
func (r SegmentRange) expand(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		v[0]*float32(r.Extent[0]) + float32(r.Min[0]),
		v[1]*float32(r.Extent[1]) + float32(r.Min[1]),
		v[2]*float32(r.Extent[2]) + float32(r.Min[2]),
	}
}

// normalize is the inverse of expand. Components with zero extent map to 0.
func (r SegmentRange) normalize(v mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := 0; i < 3; i++ {
		if r.Extent[i] != 0 {
			out[i] = (v[i] - float32(r.Min[i])) / float32(r.Extent[i])
		}
	}
	return out
}
