// The aclfile-stat command displays stats for a compressed clip.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bkaradzic/go-lz4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uassetkit/aclfile/aclv1"
	"github.com/uassetkit/aclfile/errors"
)

const usage = `usage: aclfile-stat [FLAGS] [INPUT] [OUTPUT]

Reads a compressed clip from INPUT, and writes to OUTPUT statistics for the
clip as JSON.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

FLAGS:
	-lz4
		INPUT holds an LZ4 block prefixed with the uncompressed length.
`

// Stats aggregates the measurable qualities of one clip.
type Stats struct {
	// Record size in bytes, as declared by the record itself.
	Size uint32

	// The record's stored content hash and the blake2b-256 fingerprint of
	// its bytes.
	Hash        string
	Fingerprint string

	Bones      int
	Segments   int
	Samples    int
	SampleRate int

	// Animation length in seconds.
	Duration float64

	HasScale bool

	RotationFormat        string
	TranslationFormat     string
	ScaleFormat           string
	ClipRangeReduction    string
	SegmentRangeReduction string

	// Number of tracks per storage state.
	TrackStates map[string]int

	// Number of animated components per bit width, across all segments.
	BitRates map[string]int

	// Stored constant vectors and animated (range-reduced) components.
	Constants          int
	AnimatedComponents int

	// Byte sizes of the header-addressed sections and of the packed track
	// data across all segments.
	DefaultBitsetBytes  int
	ConstantBitsetBytes int
	ConstantDataBytes   int
	TrackDataBytes      int
}

func (s *Stats) Fill(clip *aclv1.Clip) error {
	h := &clip.Header
	s.Size = clip.Size
	s.Hash = hex.EncodeToString(clip.Hash[:])
	s.Bones = int(h.NumBones)
	s.Segments = int(h.NumSegments)
	s.Samples = int(h.NumSamples)
	s.SampleRate = int(h.SampleRate)
	s.HasScale = h.HasScale != 0
	s.RotationFormat = h.RotationFormat.String()
	s.TranslationFormat = h.TranslationFormat.String()
	s.ScaleFormat = h.ScaleFormat.String()
	s.ClipRangeReduction = h.ClipRangeReduction.String()
	s.SegmentRangeReduction = h.SegmentRangeReduction.String()
	s.Constants = len(clip.ConstantData) / 3
	s.AnimatedComponents = clip.RangeCount()

	if h.SampleRate > 0 && h.NumSamples > 0 {
		s.Duration = float64(h.NumSamples-1) / float64(h.SampleRate)
	}

	s.TrackStates = map[string]int{}
	for bone := 0; bone < int(h.NumBones); bone++ {
		for attr := 0; attr < 3; attr++ {
			state, ok := clip.TrackState(bone, attr)
			if !ok {
				return fmt.Errorf("bone %d attribute %d: no track state", bone, attr)
			}
			s.TrackStates[state.String()]++
		}
	}

	s.DefaultBitsetBytes = h.DefaultBitsetSize()
	s.ConstantBitsetBytes = h.ConstantBitsetSize()
	s.ConstantDataBytes = h.ConstantDataSize()

	s.BitRates = map[string]int{}
	for _, seg := range clip.Segments {
		s.TrackDataBytes += len(seg.TrackData)
		for _, idx := range seg.BitRates {
			s.BitRates[fmt.Sprint(aclv1.BitRateWidth(idx))]++
		}
	}

	fp, err := aclv1.Fingerprint(clip)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	s.Fingerprint = hex.EncodeToString(fp[:])
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	lz4Input := flag.Bool("lz4", false, "input holds an LZ4 block prefixed with the uncompressed length")
	flag.Usage = func() { fmt.Fprintf(flag.CommandLine.Output(), usage) }
	flag.Parse()
	args := flag.Args()

	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			log.Error().Err(err).Msg("open input")
			return
		}
		input = in
		defer in.Close()
	}
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			log.Error().Err(err).Msg("create output")
			return
		}
		defer out.Close()
		defer func() {
			if err := out.Sync(); err != nil {
				log.Error().Err(err).Msg("sync output")
			}
		}()
		output = out
	}

	if *lz4Input {
		raw, err := io.ReadAll(input)
		if err != nil {
			log.Error().Err(err).Msg("read input")
			return
		}
		data, err := lz4.Decode(nil, raw)
		if err != nil {
			log.Error().Err(err).Msg("lz4 decode")
			return
		}
		input = bytes.NewReader(data)
	}

	clip, warn, err := aclv1.Decoder{}.Decode(input)
	if warn != nil {
		log.Warn().Err(warn).Msg("decode warning")
	}
	if err != nil {
		var unsupported aclv1.UnsupportedError
		if errors.As(err, &unsupported) {
			log.Error().Err(err).Msg("unsupported clip")
		} else {
			log.Error().Err(err).Msg("decode error")
		}
		return
	}

	var stats Stats
	if err := stats.Fill(clip); err != nil {
		log.Error().Err(err).Msg("stats")
		return
	}

	je := json.NewEncoder(output)
	je.SetEscapeHTML(false)
	je.SetIndent("", "\t")
	if err := je.Encode(&stats); err != nil {
		log.Error().Err(err).Msg("write error")
	}
}
