package aclv1

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Indicates that the constant-data section length does not agree with the
	// per-bone track flags.
	ErrConstantCount = errors.New("constant data length does not match track flags")
	// Indicates a bitset section too short for the declared bone count.
	ErrBitsetShort = errors.New("bitset is too short for bone count")
	// Indicates a section size that is negative or not a multiple of its
	// element size.
	ErrSectionSize = errors.New("section offsets produce an invalid section size")
)

// UnsupportedError indicates a record whose tag, version, or declared formats
// fall outside the subset supported by the codec. Decoding fails before any
// further data is consumed; the record itself may be well formed.
type UnsupportedError struct {
	// Field names the header field holding the unsupported value.
	Field string

	// Value is the raw value of the field.
	Value uint32
}

func (err UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s (0x%X)", err.Field, err.Value)
}

// DataError wraps an error that occurred while decoding byte data. Any cause
// other than an UnsupportedError means the record does not match its own
// declared structure.
type DataError struct {
	// Offset is the byte offset where the error occurred, relative to the
	// start of the record.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// SectionError indicates that a section began at a position other than the
// offset declared for it by the clip or segment header.
type SectionError struct {
	// Section names the section being read.
	Section string
	// Pos is the actual position, relative to the clip header.
	Pos int64
	// Offset is the declared offset, relative to the clip header.
	Offset int64
}

func (err SectionError) Error() string {
	return fmt.Sprintf("%s section begins at %d, header declares %d", err.Section, err.Pos, err.Offset)
}

// PaddingError indicates a padding byte that does not match the sentinel
// value.
type PaddingError byte

func (err PaddingError) Error() string {
	return fmt.Sprintf("padding byte 0x%02X does not match sentinel 0x%02X", byte(err), sentinel)
}

// BitRateError indicates a bit-rate byte outside the fixed bit-rate table.
type BitRateError uint8

func (err BitRateError) Error() string {
	return fmt.Sprintf("invalid bit rate index %d", uint8(err))
}

// SizeError indicates that the number of bytes consumed by a decode does not
// equal the record's declared size.
type SizeError struct {
	Declared uint32
	Consumed int64
}

func (err SizeError) Error() string {
	return fmt.Sprintf("record declares %d bytes, decode consumed %d", err.Declared, err.Consumed)
}

// reservedError warns about non-zero bytes in reserved header fields.
type reservedError struct {
	// Field names the reserved field.
	Field string
	// Value is the raw value of the field.
	Value uint32
}

func (err reservedError) Error() string {
	return fmt.Sprintf("reserved field %s is non-zero (0x%X)", err.Field, err.Value)
}

// poseBitSizeError warns that a segment's declared animated-pose bit size
// disagrees with its bit-rate table.
type poseBitSizeError struct {
	Segment  int
	Declared int32
	Actual   int32
}

func (err poseBitSizeError) Error() string {
	return fmt.Sprintf("segment %d declares pose bit size %d, bit rates sum to %d", err.Segment, err.Declared, err.Actual)
}
