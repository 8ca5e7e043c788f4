package aclv1

// bitRateBits maps a stored bit-rate index to the number of bits used per
// scalar component of a sample. Width 0 means the component decodes to
// normalized zero without consuming bits; width 32 means the component's
// samples are stored as raw big-endian float32 values with no quantization
// or range mapping.
var bitRateBits = [19]uint8{0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 32}

// BitRateWidth returns the number of bits per scalar component for a stored
// bit-rate index, or -1 if the index is outside the table.
func BitRateWidth(idx uint8) int {
	if int(idx) >= len(bitRateBits) {
		return -1
	}
	return int(bitRateBits[idx])
}

// bitRateIndex returns the table index for a bit width. ok is false if the
// width is not in the table.
func bitRateIndex(bits uint8) (idx uint8, ok bool) {
	for i, b := range bitRateBits {
		if b == bits {
			return uint8(i), true
		}
	}
	return 0, false
}

// poseStride returns the number of bits one sample of every animated
// component occupies, given a segment's bit-rate indices. Indices must
// already be validated against the table.
func poseStride(rates []uint8) int {
	stride := 0
	for _, ri := range rates {
		stride += int(bitRateBits[ri]) * 3
	}
	return stride
}
