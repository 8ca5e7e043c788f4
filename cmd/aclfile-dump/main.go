// The aclfile-dump command writes a readable annotation of a compressed
// clip's structure.
package main

import (
	"bytes"
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

const usage = `usage: aclfile-dump [FLAGS] [INPUT] [OUTPUT]

Reads a compressed clip from INPUT, and writes to OUTPUT an annotation of the
clip's structure: header fields, per-bone track states, constants, ranges, and
the packed track data of each segment.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

FLAGS:
	-lz4
		INPUT holds an LZ4 block prefixed with the uncompressed length.
`

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

	warn, err := aclv1.Decoder{}.Dump(output, input)
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
	}
}
