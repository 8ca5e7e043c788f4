package aclv1

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/uassetkit/aclfile/errors"
)

// Dump decodes a compressed clip from r and writes a readable annotation of
// its structure to w.
func (d Decoder) Dump(w io.Writer, r io.Reader) (warn, err error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	if w == nil {
		return nil, errors.New("nil writer")
	}

	clip, ws, err := d.Decode(r)
	warn = errors.Union(warn, ws)
	if err != nil {
		return warn, err
	}
	if err = clip.Dump(w, nil); err != nil {
		return warn, err
	}
	return warn, nil
}

// Dump writes a readable annotation of the clip's structure to w. names
// labels bones and may be nil or shorter than the bone count.
func (c *Clip) Dump(w io.Writer, names []string) error {
	if w == nil {
		return errors.New("nil writer")
	}
	bw := bufio.NewWriter(w)

	h := &c.Header
	fmt.Fprintf(bw, "Size: %d", c.Size)
	fmt.Fprintf(bw, "\nHash: % 02X", c.Hash)
	fmt.Fprintf(bw, "\nBones: %d", h.NumBones)
	fmt.Fprintf(bw, "\nSegments: %d", h.NumSegments)
	fmt.Fprintf(bw, "\nSamples: %d @ %d Hz", h.NumSamples, h.SampleRate)
	fmt.Fprintf(bw, "\nRotationFormat: %s", h.RotationFormat)
	fmt.Fprintf(bw, "\nTranslationFormat: %s", h.TranslationFormat)
	fmt.Fprintf(bw, "\nScaleFormat: %s", h.ScaleFormat)
	fmt.Fprintf(bw, "\nClipRangeReduction: %s", h.ClipRangeReduction)
	fmt.Fprintf(bw, "\nSegmentRangeReduction: %s", h.SegmentRangeReduction)
	fmt.Fprintf(bw, "\nHasScale: %d", h.HasScale)

	fmt.Fprint(bw, "\nTracks: {")
	for i, t := range c.tracks {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d: ", i)
		if i < len(names) {
			bw.WriteString(strconv.Quote(names[i]))
			bw.WriteByte(' ')
		}
		for attr := 0; attr < 3; attr++ {
			if attr > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprint(bw, t.state(attr))
		}
	}
	fmt.Fprint(bw, "\n}")

	fmt.Fprintf(bw, "\nConstants: (len:%d) {", len(c.ConstantData))
	for i := 0; i+3 <= len(c.ConstantData); i += 3 {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d: %g %g %g", i/3,
			c.ConstantData[i], c.ConstantData[i+1], c.ConstantData[i+2])
	}
	fmt.Fprint(bw, "\n}")

	fmt.Fprintf(bw, "\nClipRanges: (len:%d) {", len(c.ClipRanges))
	for i, r := range c.ClipRanges {
		dumpNewline(bw, 1)
		fmt.Fprintf(bw, "#%d: min %v extent %v", i, r.Min, r.Extent)
	}
	fmt.Fprint(bw, "\n}")

	fmt.Fprint(bw, "\nSegments: {")
	for i := range c.Segments {
		dumpSegment(bw, 1, i, &c.Segments[i])
	}
	fmt.Fprint(bw, "\n}")

	bw.WriteByte('\n')
	return bw.Flush()
}

func dumpSegment(w *bufio.Writer, indent, i int, seg *Segment) {
	dumpNewline(w, indent)
	fmt.Fprintf(w, "#%d: {", i)
	dumpNewline(w, indent+1)
	fmt.Fprintf(w, "Samples: %d", seg.Header.NumSamples)
	dumpNewline(w, indent+1)
	fmt.Fprintf(w, "PoseBitSize: %d", seg.Header.PoseBitSize)
	dumpNewline(w, indent+1)
	w.WriteString("BitRates: (len:")
	w.WriteString(strconv.Itoa(len(seg.BitRates)))
	w.WriteString(")")
	for _, idx := range seg.BitRates {
		w.WriteByte(' ')
		if int(idx) < len(bitRateBits) {
			w.WriteString(strconv.Itoa(int(bitRateBits[idx])))
		} else {
			w.WriteByte('?')
		}
	}
	if len(seg.Ranges) > 0 {
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "Ranges: (len:%d) {", len(seg.Ranges))
		for j, r := range seg.Ranges {
			dumpNewline(w, indent+2)
			fmt.Fprintf(w, "#%d: min %v extent %v", j, r.Min, r.Extent)
		}
		dumpNewline(w, indent+1)
		w.WriteString("}")
	}
	dumpNewline(w, indent+1)
	w.WriteString("TrackData: ")
	dumpBytes(w, indent+1, seg.TrackData)
	dumpNewline(w, indent)
	w.WriteString("}")
}

func dumpNewline(w *bufio.Writer, indent int) {
	w.WriteByte('\n')
	for i := 0; i < indent; i++ {
		w.WriteByte('\t')
	}
}

// dumpBytes writes packed track data in rows of 12 bytes, grouped by 4 to
// line up with the format's word granularity.
func dumpBytes(w *bufio.Writer, indent int, b []byte) {
	fmt.Fprintf(w, "(len:%d)", len(b))
	const width = 12
	for j := 0; j < len(b); j += width {
		dumpNewline(w, indent+1)
		fmt.Fprintf(w, "%04x:", j)
		n := len(b)
		if j+width < n {
			n = j + width
		}
		for i := j; i < n; i++ {
			if i > j && (i-j)%4 == 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, " %02x", b[i])
		}
	}
}
