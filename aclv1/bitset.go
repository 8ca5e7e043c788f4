package aclv1

// trackFlags holds one boolean per (bone, attribute) pair, expanded from the
// packed 32-bit words of a bitset section. Flag i is bit i of the
// concatenated words, most significant bit first within each word.
type trackFlags []bool

// unpackBitset expands n flags from words. Bits beyond n in the final word
// are discarded padding. The caller must ensure len(words)*32 >= n.
func unpackBitset(words []uint32, n int) trackFlags {
	flags := make(trackFlags, n)
	for i := range flags {
		flags[i] = words[i/32]>>(31-uint(i%32))&1 == 1
	}
	return flags
}

// packBitset is the inverse of unpackBitset. Padding bits in the final word
// are left zero.
func packBitset(flags trackFlags) []uint32 {
	words := make([]uint32, (len(flags)+31)/32)
	for i, f := range flags {
		if f {
			words[i/32] |= 1 << (31 - uint(i%32))
		}
	}
	return words
}
