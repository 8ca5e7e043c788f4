package aclv1

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoneSource supplies one bone's tracks to a ClipBuilder. Each slice is
// either nil (the attribute is defaulted and not stored), length 1 (stored as
// a constant), or one value per sample (stored animated). Scales is ignored
// unless the builder has scale enabled.
type BoneSource struct {
	Rotations    []mgl32.Vec3
	Translations []mgl32.Vec3
	Scales       []mgl32.Vec3
}

func (s *BoneSource) attr(attr int) []mgl32.Vec3 {
	switch attr {
	case 0:
		return s.Rotations
	case 1:
		return s.Translations
	default:
		return s.Scales
	}
}

// ClipBuilder assembles a Clip from raw track samples. It produces a single
// segment with clip-level range reduction only, quantizing every animated
// component at the same bit rate.
type ClipBuilder struct {
	// SampleRate is the number of samples per second.
	SampleRate uint32

	// BitRate is the number of bits per scalar component. It must be a width
	// from the bit-rate table: 0, 3 through 19, or 32. Width 32 stores raw
	// floats; width 0 stores nothing and decodes each sample to the
	// component's range minimum.
	BitRate uint8

	// HasScale enables scale tracks. When false, each bone has two
	// attributes and Scales sources are ignored.
	HasScale bool

	Bones []BoneSource
}

// Build quantizes and packs the builder's tracks into a Clip holding
// sampleCount samples per animated track. The result encodes to a complete
// record, and its Animation method returns the same values a decode of that
// record would.
func (b *ClipBuilder) Build(sampleCount int) (*Clip, error) {
	if sampleCount < 1 {
		return nil, fmt.Errorf("sample count %d out of range", sampleCount)
	}
	if len(b.Bones) == 0 || len(b.Bones) > math.MaxUint16 {
		return nil, fmt.Errorf("bone count %d out of range", len(b.Bones))
	}
	rateIndex, ok := bitRateIndex(b.BitRate)
	if !ok {
		return nil, fmt.Errorf("unsupported bit rate %d", b.BitRate)
	}
	numAttr := 2
	if b.HasScale {
		numAttr = 3
	}

	defaults := make(trackFlags, len(b.Bones)*numAttr)
	constants := make(trackFlags, len(b.Bones)*numAttr)
	var constData []float32
	var animated [][]mgl32.Vec3
	for i := range b.Bones {
		for attr := 0; attr < numAttr; attr++ {
			seq := b.Bones[i].attr(attr)
			fi := i*numAttr + attr
			switch len(seq) {
			case 0:
				defaults[fi] = true
				constants[fi] = true
			case 1:
				constants[fi] = true
				constData = append(constData, seq[0][0], seq[0][1], seq[0][2])
			case sampleCount:
				animated = append(animated, seq)
			default:
				return nil, fmt.Errorf("bone %d attribute %d: %d samples, want 0, 1, or %d",
					i, attr, len(seq), sampleCount)
			}
		}
	}

	clipRanges := make([]RangeData, len(animated))
	rates := make([]uint8, len(animated))
	for ci, seq := range animated {
		rates[ci] = rateIndex
		clipRanges[ci] = sampleRange(seq, b.BitRate == 32)
	}
	trackData := packSegment(sampleCount, rates, nil, clipRanges, animated)
	stride := poseStride(rates)

	defaultWords := packBitset(defaults)
	constantWords := packBitset(constants)

	// Section offsets are relative to the clip header. Every section before
	// the bit rates has 4-byte granularity, so only the bit-rate table needs
	// explicit alignment.
	segmentHeadersOffset := clipHeaderSize
	defaultBitsetOffset := segmentHeadersOffset + segmentHeaderSize
	constantBitsetOffset := defaultBitsetOffset + 4*len(defaultWords)
	constantDataOffset := constantBitsetOffset + 4*len(constantWords)
	clipRangeDataOffset := constantDataOffset + 4*len(constData)
	if clipRangeDataOffset > math.MaxUint16 {
		return nil, fmt.Errorf("header sections end at %d, exceeding the offset range", clipRangeDataOffset)
	}
	bitRateOffset := clipRangeDataOffset + 24*len(clipRanges)
	pos := bitRateOffset + len(rates)
	pos += padLen(int64(pos), 2)
	pos += padLen(int64(pos), 4)
	trackDataOffset := pos
	recordSize := recordHeaderSize + trackDataOffset + len(trackData) + tailSize

	clip := &Clip{
		Size: uint32(recordSize),
		Header: ClipHeader{
			NumBones:              uint16(len(b.Bones)),
			NumSegments:           1,
			RotationFormat:        RotationQuatDropWVariable,
			TranslationFormat:     Vector3Variable,
			ScaleFormat:           Vector3Variable,
			ClipRangeReduction:    RangeReduceAllTracks,
			SegmentRangeReduction: RangeReduceNone,
			DefaultScale:          1,
			NumSamples:            uint32(sampleCount),
			SampleRate:            b.SampleRate,
			SegmentHeadersOffset:  uint16(segmentHeadersOffset),
			DefaultBitsetOffset:   uint16(defaultBitsetOffset),
			ConstantBitsetOffset:  uint16(constantBitsetOffset),
			ConstantDataOffset:    uint16(constantDataOffset),
			ClipRangeDataOffset:   uint16(clipRangeDataOffset),
		},
		Segments: []Segment{{
			Header: SegmentHeader{
				NumSamples:      uint32(sampleCount),
				PoseBitSize:     int32(stride),
				BitRateOffset:   int32(bitRateOffset),
				RangeDataOffset: 0,
				TrackDataOffset: int32(trackDataOffset),
			},
			BitRates:  rates,
			TrackData: trackData,
		}},
		DefaultBitset:  defaultWords,
		ConstantBitset: constantWords,
		ConstantData:   constData,
		ClipRanges:     clipRanges,
	}
	if b.HasScale {
		clip.Header.HasScale = 1
	}

	clip.tracks = make([]boneTrack, len(b.Bones))
	constantCursor := 0
	for i := range clip.tracks {
		t := &clip.tracks[i]
		t.setFlags(defaults, constants, i, numAttr)
		t.constantIndex = constantCursor
		constantCursor += t.constantCount()
	}
	clip.pools = make([][]mgl32.Vec3, len(animated))
	unpackSegment(trackData, sampleCount, rates, nil, clipRanges, clip.pools)
	return clip, nil
}

// sampleRange returns the clip-level range enclosing seq. Raw 32-bit
// components bypass range mapping, so they get the identity range.
func sampleRange(seq []mgl32.Vec3, raw bool) RangeData {
	if raw {
		return RangeData{Extent: mgl32.Vec3{1, 1, 1}}
	}
	min, max := seq[0], seq[0]
	for _, v := range seq[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	return RangeData{Min: min, Extent: max.Sub(min)}
}
