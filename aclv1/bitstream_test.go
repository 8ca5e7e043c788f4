package aclv1

import (
	"math"
	"testing"
)

func TestBitCursorWriteRead(t *testing.T) {
	cur := bitCursor{buf: make([]byte, 2)}
	cur.writeBits(0b101, 3)
	cur.writeBits(0xAB, 8)
	if cur.buf[0] != 0xB5 || cur.buf[1] != 0x60 {
		t.Errorf("packed bytes %02X %02X, want B5 60", cur.buf[0], cur.buf[1])
	}

	cur.seek(0)
	if v := cur.readBits(3); v != 0b101 {
		t.Errorf("read %03b, want 101", v)
	}
	if v := cur.readBits(8); v != 0xAB {
		t.Errorf("read %02X, want AB", v)
	}
}

func TestBitCursorRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x5A5A5A5A, 0xFFFFFFFF, 0x12345678}
	for width := uint(1); width <= 32; width++ {
		cur := bitCursor{buf: make([]byte, (int(width)*len(values)+7)/8)}
		mask := uint32(1)<<width - 1
		for _, v := range values {
			cur.writeBits(v&mask, width)
		}
		cur.seek(0)
		for i, v := range values {
			if got := cur.readBits(width); got != v&mask {
				t.Errorf("width %d value %d: read %X, want %X", width, i, got, v&mask)
			}
		}
	}
}

func TestBitCursorRawFloat(t *testing.T) {
	// A 32-bit read is the big-endian byte order of the float bits.
	cur := bitCursor{buf: []byte{0x3F, 0x80, 0x00, 0x00}}
	if v := math.Float32frombits(cur.readBits(32)); v != 1 {
		t.Errorf("decoded %g, want 1", v)
	}
}

func TestBitsetRoundTrip(t *testing.T) {
	words := []uint32{0x80000001, 0xC0000000}
	flags := unpackBitset(words, 34)
	for i, want := range map[int]bool{0: true, 31: true, 32: true, 33: true, 1: false, 30: false} {
		if flags[i] != want {
			t.Errorf("flag %d is %v, want %v", i, flags[i], want)
		}
	}
	packed := packBitset(flags)
	if len(packed) != 2 || packed[0] != words[0] || packed[1] != words[1] {
		t.Errorf("packed %08X, want %08X", packed, words)
	}
}

func TestBitRateIndex(t *testing.T) {
	if idx, ok := bitRateIndex(8); !ok || idx != 6 {
		t.Errorf("width 8: index %d ok %v, want 6 true", idx, ok)
	}
	if idx, ok := bitRateIndex(32); !ok || idx != 18 {
		t.Errorf("width 32: index %d ok %v, want 18 true", idx, ok)
	}
	if _, ok := bitRateIndex(2); ok {
		t.Error("width 2: expected not found")
	}
	if stride := poseStride([]uint8{6, 18, 0}); stride != (8+32)*3 {
		t.Errorf("stride %d, want %d", stride, (8+32)*3)
	}
}
