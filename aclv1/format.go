// Package aclv1 implements a decoder and encoder for the v1.1.0
// "compressed_clip" binary layout used to store compressed skeletal-animation
// clips.
//
// Decode reads one record into a Clip, which holds every section of the
// record along with the fully decoded sample data. Encode writes a Clip back
// out, reproducing the original byte stream exactly. The assembled per-bone
// sample sequences are obtained from a decoded Clip through Clip.Animation,
// which produces an aclfile.Animation.
//
// Only the subset of the format that appears in the wild is supported: the
// uniformly-sampled algorithm with variable-bit-rate, w-dropped quaternion
// rotations and variable-bit-rate 3-vector translations and scales, clip
// range reduction over all tracks, and optional segment range reduction over
// all tracks. Records outside this subset are rejected with an
// UnsupportedError rather than mis-decoded.
package aclv1

// bufferTag identifies a pre-2.0 compressed_clip record. Other tags in the
// family (compressed_tracks, compressed_database) are not supported.
var bufferTag = [4]byte{0x10, 0xAC, 0x10, 0xAC}

const (
	// formatVersion is the one supported algorithm revision (ACL v1.1.0).
	formatVersion uint16 = 3

	// algorithmUniformlySampled is the one supported algorithm type.
	algorithmUniformlySampled uint8 = 0

	// sentinel is the byte value filling every padding run and the record
	// tail.
	sentinel byte = 0xCD

	// tailSize is the number of sentinel bytes closing a record.
	tailSize = 15
)

// Fixed section sizes.
const (
	clipHeaderSize    = 32
	segmentHeaderSize = 20
	recordHeaderSize  = 16 // size + hash + tag + version + algorithm + pad
)

////////////////////////////////////////////////////////////////

// RotationFormat selects how rotation tracks are stored.
type RotationFormat uint8

const (
	RotationQuat128           RotationFormat = 0 // [x,y,z,w] as float32
	RotationQuatDropW96       RotationFormat = 1 // [x,y,z] as float32
	RotationQuatDropW48       RotationFormat = 2 // [x,y,z] as 16 bits each
	RotationQuatDropW32       RotationFormat = 3 // [x,y,z] as [11,11,10] bits
	RotationQuatDropWVariable RotationFormat = 4 // [x,y,z] as N bits each
)

// String returns a string representation of the format. If the format is not
// valid, then the returned value will be "Invalid".
func (f RotationFormat) String() string {
	switch f {
	case RotationQuat128:
		return "Quat_128"
	case RotationQuatDropW96:
		return "QuatDropW_96"
	case RotationQuatDropW48:
		return "QuatDropW_48"
	case RotationQuatDropW32:
		return "QuatDropW_32"
	case RotationQuatDropWVariable:
		return "QuatDropW_Variable"
	default:
		return "Invalid"
	}
}

// VectorFormat selects how translation and scale tracks are stored.
type VectorFormat uint8

const (
	Vector396       VectorFormat = 0 // [x,y,z] as float32
	Vector348       VectorFormat = 1 // [x,y,z] as 16 bits each
	Vector332       VectorFormat = 2 // [x,y,z] as [11,11,10] bits
	Vector3Variable VectorFormat = 3 // [x,y,z] as N bits each
)

// String returns a string representation of the format. If the format is not
// valid, then the returned value will be "Invalid".
func (f VectorFormat) String() string {
	switch f {
	case Vector396:
		return "Vector3_96"
	case Vector348:
		return "Vector3_48"
	case Vector332:
		return "Vector3_32"
	case Vector3Variable:
		return "Vector3_Variable"
	default:
		return "Invalid"
	}
}

// RangeReduction is a bitmask selecting which track kinds are range-reduced.
type RangeReduction uint8

const (
	RangeReduceNone         RangeReduction = 0
	RangeReduceRotations    RangeReduction = 1
	RangeReduceTranslations RangeReduction = 2
	RangeReduceScales       RangeReduction = 4
	RangeReduceAllTracks    RangeReduction = 7
)

// String returns a string representation of the flags. If the flags are not
// valid, then the returned value will be "Invalid".
func (f RangeReduction) String() string {
	switch f {
	case RangeReduceNone:
		return "None"
	case RangeReduceRotations:
		return "Rotations"
	case RangeReduceTranslations:
		return "Translations"
	case RangeReduceScales:
		return "Scales"
	case RangeReduceAllTracks:
		return "AllTracks"
	default:
		return "Invalid"
	}
}
