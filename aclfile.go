// The aclfile package handles the decoding and encoding of compressed
// skeletal-animation clips.
//
// A clip stores, per bone, rotation, translation and scale curves that have
// been quantized, range-reduced, and bit-packed. Decoding reconstructs the
// per-frame floating-point samples exactly as the runtime decompressor would,
// and re-encoding reproduces the original byte stream.
//
// This package contains the decoded data model: an Animation holds one full
// sample sequence per bone per attribute, assembled from the default,
// constant, and animated tracks of the compressed record. The binary format
// itself is handled by the "aclv1" sub-package, which decodes the v1.1.0
// "compressed_clip" layout into an aclv1.Clip and assembles Animations from
// it.
package aclfile

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

////////////////////////////////////////////////////////////////

// TrackState indicates how one attribute of a bone is stored in a clip.
type TrackState uint8

const (
	// TrackDefault indicates the attribute is not stored at all; its value is
	// supplied by convention (see Pose).
	TrackDefault TrackState = iota

	// TrackConstant indicates the attribute is identical across all samples
	// and stored once.
	TrackConstant

	// TrackAnimated indicates the attribute is stored per sample,
	// range-reduced and bit-packed.
	TrackAnimated
)

// String returns a string representation of the state. If the state is not
// valid, then the returned value will be "Invalid".
func (s TrackState) String() string {
	switch s {
	case TrackDefault:
		return "Default"
	case TrackConstant:
		return "Constant"
	case TrackAnimated:
		return "Animated"
	default:
		return "Invalid"
	}
}

// Attribute indices within a bone's track, in stream order.
const (
	AttrRotation = iota
	AttrTranslation
	AttrScale
)

////////////////////////////////////////////////////////////////

// Pose supplies the values used for attributes that a clip does not store.
// The codec itself attaches no meaning to default tracks; the host decides
// what a defaulted attribute means.
//
// Rotation is the x, y, z components of a quaternion with the w component
// dropped, matching the storage of animated rotation tracks.
type Pose struct {
	Rotation    mgl32.Vec3
	Translation mgl32.Vec3
	Scale       mgl32.Vec3
}

// BindPose returns the conventional default pose: identity rotation, zero
// translation, unit scale.
func BindPose() Pose {
	return Pose{
		Rotation:    mgl32.Vec3{0, 0, 0},
		Translation: mgl32.Vec3{0, 0, 0},
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

////////////////////////////////////////////////////////////////

// Animation is the assembled, per-bone view of a decoded clip. Every bone
// holds one sample sequence per attribute, each SampleCount long, regardless
// of how the attribute was stored.
type Animation struct {
	// SampleCount is the number of samples in every track.
	SampleCount int

	// SampleRate is the number of samples per second.
	SampleRate int

	// Bones contains one entry per bone, in bone index order.
	Bones []Bone
}

// Duration returns the length of the animation in seconds. Returns 0 if the
// sample rate is not positive.
func (a *Animation) Duration() float64 {
	if a.SampleRate <= 0 || a.SampleCount <= 0 {
		return 0
	}
	return float64(a.SampleCount-1) / float64(a.SampleRate)
}

// Bone holds the full sample sequences for one bone.
//
// Rotation samples are the x, y, z components of a unit quaternion with the
// w component dropped; use RotationQuats to reconstruct full quaternions.
type Bone struct {
	// Name labels the bone for diagnostics. It is supplied by the caller and
	// never stored in a clip.
	Name string

	// States indicates, per attribute (AttrRotation, AttrTranslation,
	// AttrScale), how the track was stored.
	States [3]TrackState

	Rotations    []mgl32.Vec3
	Translations []mgl32.Vec3
	Scales       []mgl32.Vec3
}

// RotationQuats reconstructs the full quaternion for each rotation sample.
// The dropped w component is recovered as sqrt(1 - x² - y² - z²), clamped at
// zero for samples that quantization pushed slightly outside the unit sphere.
func (b *Bone) RotationQuats() []mgl32.Quat {
	quats := make([]mgl32.Quat, len(b.Rotations))
	for i, v := range b.Rotations {
		quats[i] = RotationQuat(v)
	}
	return quats
}

// RotationQuat reconstructs a full quaternion from the x, y, z components of
// a w-dropped rotation sample.
func RotationQuat(v mgl32.Vec3) mgl32.Quat {
	d := float64(1) - float64(v.X())*float64(v.X()) -
		float64(v.Y())*float64(v.Y()) - float64(v.Z())*float64(v.Z())
	var w float32
	if d > 0 {
		w = float32(math.Sqrt(d))
	}
	return mgl32.Quat{W: w, V: v}
}
