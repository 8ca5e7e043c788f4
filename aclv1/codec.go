package aclv1

import (
	"bytes"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/crypto/blake2b"

	"github.com/uassetkit/aclfile"
	"github.com/uassetkit/aclfile/errors"
)

// TrackState reports how one attribute (aclfile.AttrRotation,
// aclfile.AttrTranslation, aclfile.AttrScale) of one bone is stored. ok is
// false if the indices are out of range or the clip carries no track
// bookkeeping.
func (c *Clip) TrackState(bone, attr int) (state aclfile.TrackState, ok bool) {
	if bone < 0 || bone >= len(c.tracks) || attr < 0 || attr > 2 {
		return 0, false
	}
	return c.tracks[bone].state(attr), true
}

// Animation assembles one full-length sample sequence per bone per attribute,
// merging default, constant, and animated tracks. Defaulted attributes take
// their value from defaults; the clip itself stores no semantic default.
// names labels bones for diagnostics and may be nil or shorter than the bone
// count.
//
// Animated sequences are consumed from the decoded sample pools in the same
// bone and attribute order used when the animated components were counted;
// that ordering is what ties the flat pools back to bone ownership.
func (c *Clip) Animation(defaults aclfile.Pose, names []string) (*aclfile.Animation, error) {
	if c.tracks == nil {
		return nil, errors.New("clip carries no decoded track data")
	}
	n := int(c.Header.NumSamples)
	anim := &aclfile.Animation{
		SampleCount: n,
		SampleRate:  int(c.Header.SampleRate),
		Bones:       make([]aclfile.Bone, len(c.tracks)),
	}
	poolIndex := 0
	for i := range anim.Bones {
		t := &c.tracks[i]
		b := &anim.Bones[i]
		if i < len(names) {
			b.Name = names[i]
		}
		constIndex := t.constantIndex
		for attr := 0; attr < 3; attr++ {
			var seq []mgl32.Vec3
			switch b.States[attr] = t.state(attr); b.States[attr] {
			case aclfile.TrackAnimated:
				if poolIndex >= len(c.pools) {
					return nil, errors.New("animated component count does not match sample pools")
				}
				seq = c.pools[poolIndex]
				poolIndex++
			case aclfile.TrackConstant:
				if constIndex+3 > len(c.ConstantData) {
					return nil, ErrConstantCount
				}
				v := mgl32.Vec3{
					c.ConstantData[constIndex],
					c.ConstantData[constIndex+1],
					c.ConstantData[constIndex+2],
				}
				constIndex += 3
				seq = repeatSample(v, n)
			default:
				seq = repeatSample(defaultSample(defaults, attr), n)
			}
			switch attr {
			case aclfile.AttrRotation:
				b.Rotations = seq
			case aclfile.AttrTranslation:
				b.Translations = seq
			case aclfile.AttrScale:
				b.Scales = seq
			}
		}
	}
	if poolIndex != len(c.pools) {
		return nil, errors.New("animated component count does not match sample pools")
	}
	return anim, nil
}

func defaultSample(defaults aclfile.Pose, attr int) mgl32.Vec3 {
	switch attr {
	case aclfile.AttrRotation:
		return defaults.Rotation
	case aclfile.AttrTranslation:
		return defaults.Translation
	default:
		return defaults.Scale
	}
}

func repeatSample(v mgl32.Vec3, n int) []mgl32.Vec3 {
	seq := make([]mgl32.Vec3, n)
	for i := range seq {
		seq[i] = v
	}
	return seq
}

// Fingerprint returns the blake2b-256 digest of the record produced by
// encoding clip. Two clips with equal fingerprints encode to identical bytes.
func Fingerprint(clip *Clip) ([32]byte, error) {
	var buf bytes.Buffer
	if err := (Encoder{}).Encode(&buf, clip); err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(buf.Bytes()), nil
}
