package aclv1

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/crypto/blake2b"

	"github.com/uassetkit/aclfile"
	"github.com/uassetkit/aclfile/errors"
)

// One bone, no scale, rotation defaulted, translation animated over two
// samples at 8 bits per component with the identity clip range. The first
// sample packs to all-zero bits, the second to all-one bits, so they decode
// to exactly 0 and 1.
const twoSampleRecord = "" +
	"\x7d\x00\x00\x00" + // record size (125)
	"\xde\xad\xbe\xef" + // content hash
	"\x10\xac\x10\xac" + // buffer tag
	"\x03\x00" + // version
	"\x00" + // algorithm type
	"\x00" + // reserved
	// Clip header.
	"\x01\x00" + // bones
	"\x01\x00" + // segments
	"\x04" + // rotation format: QuatDropW_Variable
	"\x03" + // translation format: Vector3_Variable
	"\x03" + // scale format: Vector3_Variable
	"\x07" + // clip range reduction: AllTracks
	"\x00" + // segment range reduction: None
	"\x00" + // has scale
	"\x01" + // default scale
	"\x00" + // reserved
	"\x02\x00\x00\x00" + // samples
	"\x1e\x00\x00\x00" + // sample rate (30)
	"\x20\x00" + // segment headers offset (32)
	"\x34\x00" + // default bitset offset (52)
	"\x38\x00" + // constant bitset offset (56)
	"\x3c\x00" + // constant data offset (60)
	"\x3c\x00" + // clip range data offset (60)
	"\x00\x00" + // reserved
	// Segment header.
	"\x02\x00\x00\x00" + // samples
	"\x18\x00\x00\x00" + // pose bit size (24)
	"\x54\x00\x00\x00" + // bit rate offset (84)
	"\x00\x00\x00\x00" + // range data offset
	"\x58\x00\x00\x00" + // track data offset (88)
	// Bitsets: rotation flagged default and constant.
	"\x00\x00\x00\x80" + // default bitset
	"\x00\x00\x00\x80" + // constant bitset
	// Clip range of the translation track: min 0, extent 1.
	"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00" +
	"\x00\x00\x80\x3f\x00\x00\x80\x3f\x00\x00\x80\x3f" +
	"\x06" + // bit rate index (8 bits)
	"\xcd\xcd\xcd" + // alignment padding
	"\x00\x00\x00\xff\xff\xff" + // track data
	"\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd\xcd" // tail

func TestDecode(t *testing.T) {
	clip, warn, err := Decoder{}.Decode(strings.NewReader(twoSampleRecord))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warnings: %v", warn)
	}
	if clip.Size != 125 {
		t.Errorf("size %d, want 125", clip.Size)
	}
	if clip.Hash != [4]byte{0xDE, 0xAD, 0xBE, 0xEF} {
		t.Errorf("hash % 02X, want DE AD BE EF", clip.Hash)
	}
	if clip.Header.NumBones != 1 || clip.Header.NumSegments != 1 {
		t.Errorf("bones %d segments %d, want 1 1", clip.Header.NumBones, clip.Header.NumSegments)
	}
	if n := clip.RangeCount(); n != 1 {
		t.Errorf("range count %d, want 1", n)
	}
	if state, ok := clip.TrackState(0, aclfile.AttrRotation); !ok || state != aclfile.TrackDefault {
		t.Errorf("rotation state %v ok %v, want Default true", state, ok)
	}
	if state, ok := clip.TrackState(0, aclfile.AttrTranslation); !ok || state != aclfile.TrackAnimated {
		t.Errorf("translation state %v ok %v, want Animated true", state, ok)
	}
	if state, ok := clip.TrackState(0, aclfile.AttrScale); !ok || state != aclfile.TrackDefault {
		t.Errorf("scale state %v ok %v, want Default true", state, ok)
	}
	if _, ok := clip.TrackState(1, aclfile.AttrRotation); ok {
		t.Error("bone 1 exists, want out of range")
	}
}

func TestDecodeAnimation(t *testing.T) {
	clip, _, err := Decoder{}.Decode(strings.NewReader(twoSampleRecord))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defaults := aclfile.Pose{
		Rotation:    mgl32.Vec3{0.25, 0.5, 0.75},
		Scale:       mgl32.Vec3{1, 1, 1},
		Translation: mgl32.Vec3{7, 7, 7},
	}
	anim, err := clip.Animation(defaults, []string{"root"})
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	if anim.SampleCount != 2 || anim.SampleRate != 30 {
		t.Errorf("samples %d rate %d, want 2 30", anim.SampleCount, anim.SampleRate)
	}
	if len(anim.Bones) != 1 {
		t.Fatalf("bones %d, want 1", len(anim.Bones))
	}
	bone := anim.Bones[0]
	if bone.Name != "root" {
		t.Errorf("bone name %q, want %q", bone.Name, "root")
	}
	if want := (mgl32.Vec3{0, 0, 0}); bone.Translations[0] != want {
		t.Errorf("translation sample 0: %v, want %v", bone.Translations[0], want)
	}
	if want := (mgl32.Vec3{1, 1, 1}); bone.Translations[1] != want {
		t.Errorf("translation sample 1: %v, want %v", bone.Translations[1], want)
	}
	for s, v := range bone.Rotations {
		if v != defaults.Rotation {
			t.Errorf("rotation sample %d: %v, want default %v", s, v, defaults.Rotation)
		}
	}
	for s, v := range bone.Scales {
		if v != defaults.Scale {
			t.Errorf("scale sample %d: %v, want default %v", s, v, defaults.Scale)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	clip, _, err := Decoder{}.Decode(strings.NewReader(twoSampleRecord))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var buf bytes.Buffer
	if err := (Encoder{}).Encode(&buf, clip); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte(twoSampleRecord)) {
		t.Errorf("re-encoded record differs\ngot  % 02X\nwant % 02X", buf.Bytes(), []byte(twoSampleRecord))
	}
}

func corruptRecord(offset int, value byte) *bytes.Reader {
	b := []byte(twoSampleRecord)
	b[offset] = value
	return bytes.NewReader(b)
}

func TestDecodeErrors(t *testing.T) {
	// Bad buffer tag.
	_, _, err := Decoder{}.Decode(corruptRecord(8, 0x00))
	var unsupported UnsupportedError
	if !errors.As(err, &unsupported) || unsupported.Field != "buffer tag" {
		t.Errorf("bad tag: %v, want unsupported buffer tag", err)
	}

	// Bad version.
	_, _, err = Decoder{}.Decode(corruptRecord(12, 0x09))
	if !errors.As(err, &unsupported) || unsupported.Field != "version" {
		t.Errorf("bad version: %v, want unsupported version", err)
	}

	// Bad algorithm type.
	_, _, err = Decoder{}.Decode(corruptRecord(14, 0x01))
	if !errors.As(err, &unsupported) || unsupported.Field != "algorithm type" {
		t.Errorf("bad algorithm: %v, want unsupported algorithm type", err)
	}

	// Non-zero reserved byte in the record header is a hard failure.
	if _, _, err = (Decoder{}).Decode(corruptRecord(15, 0x01)); err == nil {
		t.Error("reserved byte: expected error")
	}

	// Each format selector outside the variable-bit-rate subset.
	_, _, err = Decoder{}.Decode(corruptRecord(20, 0x00))
	if !errors.As(err, &unsupported) || unsupported.Field != "rotation format" {
		t.Errorf("rotation format: %v, want unsupported", err)
	}
	_, _, err = Decoder{}.Decode(corruptRecord(21, 0x00))
	if !errors.As(err, &unsupported) || unsupported.Field != "translation format" {
		t.Errorf("translation format: %v, want unsupported", err)
	}
	_, _, err = Decoder{}.Decode(corruptRecord(22, 0x00))
	if !errors.As(err, &unsupported) || unsupported.Field != "scale format" {
		t.Errorf("scale format: %v, want unsupported", err)
	}

	// Clip range reduction other than AllTracks.
	_, _, err = Decoder{}.Decode(corruptRecord(23, 0x00))
	if !errors.As(err, &unsupported) || unsupported.Field != "clip range reduction" {
		t.Errorf("clip range reduction: %v, want unsupported", err)
	}

	// Segment range reduction other than None or AllTracks.
	_, _, err = Decoder{}.Decode(corruptRecord(24, 0x03))
	if !errors.As(err, &unsupported) || unsupported.Field != "segment range reduction" {
		t.Errorf("segment range reduction: %v, want unsupported", err)
	}

	// Non-unit default scale.
	_, _, err = Decoder{}.Decode(corruptRecord(26, 0x00))
	if !errors.As(err, &unsupported) || unsupported.Field != "default scale" {
		t.Errorf("default scale: %v, want unsupported", err)
	}

	// Non-monotonic section offsets: constant bitset declared before the
	// default bitset.
	_, _, err = Decoder{}.Decode(corruptRecord(40, 0x30))
	if !errors.Is(err, ErrSectionSize) {
		t.Errorf("non-monotonic offsets: %v, want section size error", err)
	}

	// A section size that is not a multiple of four.
	_, _, err = Decoder{}.Decode(corruptRecord(40, 0x39))
	if !errors.Is(err, ErrSectionSize) {
		t.Errorf("misaligned section: %v, want section size error", err)
	}

	// More bones than the bitsets have bits for.
	_, _, err = Decoder{}.Decode(corruptRecord(16, 0x11))
	if !errors.Is(err, ErrBitsetShort) {
		t.Errorf("short bitset: %v, want bitset error", err)
	}

	// Flag the translation constant without a constant-data section to
	// back it.
	_, _, err = Decoder{}.Decode(corruptRecord(75, 0xC0))
	if !errors.Is(err, ErrConstantCount) {
		t.Errorf("constant count: %v, want constant count error", err)
	}

	// Section offset that does not match the stream position.
	_, _, err = Decoder{}.Decode(corruptRecord(38, 0x38))
	var section SectionError
	if !errors.As(err, &section) || section.Section != "default bitset" {
		t.Errorf("section offset: %v, want default bitset section error", err)
	}

	// Bit rate index beyond the table.
	_, _, err = Decoder{}.Decode(corruptRecord(100, 0x7F))
	var bitRate BitRateError
	if !errors.As(err, &bitRate) || bitRate != 0x7F {
		t.Errorf("bit rate: %v, want bit rate error", err)
	}

	// Padding byte that is not the sentinel.
	_, _, err = Decoder{}.Decode(corruptRecord(101, 0x00))
	var padding PaddingError
	if !errors.As(err, &padding) || padding != 0 {
		t.Errorf("padding: %v, want padding error", err)
	}

	// Declared size disagrees with the bytes consumed.
	_, _, err = Decoder{}.Decode(corruptRecord(0, 0x7E))
	var size SizeError
	if !errors.As(err, &size) || size.Declared != 126 || size.Consumed != 125 {
		t.Errorf("size: %v, want size error 126/125", err)
	}

	// Truncated input.
	_, _, err = Decoder{}.Decode(strings.NewReader(twoSampleRecord[:40]))
	var data DataError
	if !errors.As(err, &data) {
		t.Errorf("truncated: %v, want data error", err)
	}
}

func TestDecodeWarnings(t *testing.T) {
	// Non-zero clip header padding decodes with a warning and still round
	// trips.
	b := []byte(twoSampleRecord)
	b[16+11] = 0x5A
	b[16+30] = 0x5A
	clip, warn, err := Decoder{}.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ws, ok := warn.(errors.Errors); !ok || len(ws) != 2 {
		t.Errorf("warnings: %v, want two reserved-field warnings", warn)
	}
	var buf bytes.Buffer
	if err := (Encoder{}).Encode(&buf, clip); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), b) {
		t.Error("re-encoded record differs")
	}
}

func TestFingerprint(t *testing.T) {
	clip, _, err := Decoder{}.Decode(strings.NewReader(twoSampleRecord))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fp, err := Fingerprint(clip)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if want := blake2b.Sum256([]byte(twoSampleRecord)); fp != want {
		t.Errorf("fingerprint %x, want %x", fp, want)
	}

	clip.Hash[0]++
	other, err := Fingerprint(clip)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if other == fp {
		t.Error("fingerprints equal after clip changed")
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	warn, err := Decoder{}.Dump(&buf, strings.NewReader(twoSampleRecord))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warnings: %v", warn)
	}
	out := buf.String()
	for _, want := range []string{
		"Bones: 1",
		"Samples: 2 @ 30 Hz",
		"QuatDropW_Variable",
		"Default Animated Default",
		"BitRates: (len:1) 8",
		"TrackData: (len:6)",
		"0000: 00 00 00 ff  ff ff",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output missing %q", want)
		}
	}
}

func TestBuilderRoundTrip(t *testing.T) {
	rotations := []mgl32.Vec3{
		{0, 0, 0},
		{0.1, -0.2, 0.3},
		{0.2, -0.1, 0.5},
		{0.05, 0, 0.7},
	}
	translations := []mgl32.Vec3{
		{0, 1, 0},
		{0.5, 1.5, -0.25},
		{1, 2, -0.5},
		{1.5, 2.5, -0.75},
	}
	builder := ClipBuilder{
		SampleRate: 30,
		BitRate:    16,
		Bones: []BoneSource{
			{Translations: []mgl32.Vec3{{0, 0.5, 0}}},
			{Rotations: rotations, Translations: translations},
		},
	}
	clip, err := builder.Build(len(rotations))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := (Encoder{}).Encode(&buf, clip); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, warn, err := Decoder{}.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if warn != nil {
		t.Errorf("unexpected warnings: %v", warn)
	}

	built, err := clip.Animation(aclfile.BindPose(), nil)
	if err != nil {
		t.Fatalf("animation from builder: %v", err)
	}
	anim, err := decoded.Animation(aclfile.BindPose(), nil)
	if err != nil {
		t.Fatalf("animation from decode: %v", err)
	}

	if state, ok := decoded.TrackState(0, aclfile.AttrTranslation); !ok || state != aclfile.TrackConstant {
		t.Errorf("bone 0 translation state %v, want Constant", state)
	}
	if want := (mgl32.Vec3{0, 0.5, 0}); anim.Bones[0].Translations[0] != want {
		t.Errorf("constant translation %v, want %v", anim.Bones[0].Translations[0], want)
	}

	for s := range rotations {
		if anim.Bones[1].Rotations[s] != built.Bones[1].Rotations[s] {
			t.Errorf("sample %d: decoded %v, built %v", s, anim.Bones[1].Rotations[s], built.Bones[1].Rotations[s])
		}
		for k := 0; k < 3; k++ {
			got := float64(anim.Bones[1].Translations[s][k])
			want := float64(translations[s][k])
			if math.Abs(got-want) > 1e-3 {
				t.Errorf("translation sample %d component %d: got %g, want %g", s, k, got, want)
			}
		}
	}
}

func TestBuilderRawFloats(t *testing.T) {
	values := []mgl32.Vec3{
		{-1e30, 0, 2.5},
		{float32(math.Copysign(0, -1)), math.SmallestNonzeroFloat32, 3},
	}
	builder := ClipBuilder{
		SampleRate: 24,
		BitRate:    32,
		Bones:      []BoneSource{{Translations: values}},
	}
	clip, err := builder.Build(len(values))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var buf bytes.Buffer
	if err := (Encoder{}).Encode(&buf, clip); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, _, err := Decoder{}.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	anim, err := decoded.Animation(aclfile.BindPose(), nil)
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	for s, want := range values {
		got := anim.Bones[0].Translations[s]
		for k := 0; k < 3; k++ {
			if math.Float32bits(got[k]) != math.Float32bits(want[k]) {
				t.Errorf("sample %d component %d: bits %08X, want %08X",
					s, k, math.Float32bits(got[k]), math.Float32bits(want[k]))
			}
		}
	}
}

func TestBuilderRejectsBadShapes(t *testing.T) {
	builder := ClipBuilder{SampleRate: 30, BitRate: 16}
	if _, err := builder.Build(2); err == nil {
		t.Error("no bones: expected error")
	}
	builder.Bones = []BoneSource{{Translations: []mgl32.Vec3{{}, {}, {}}}}
	if _, err := builder.Build(2); err == nil {
		t.Error("sample count mismatch: expected error")
	}
	builder.Bones = []BoneSource{{Translations: []mgl32.Vec3{{}, {}}}}
	builder.BitRate = 2
	if _, err := builder.Build(2); err == nil {
		t.Error("bit rate 2: expected error")
	}
}
