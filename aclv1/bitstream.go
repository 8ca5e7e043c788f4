package aclv1

// bitCursor reads and writes unsigned integers of arbitrary width over a byte
// slice, most significant bit first. The caller is responsible for keeping
// the cursor within the buffer; every packed track-data section is sized and
// validated before a cursor walks it.
type bitCursor struct {
	buf []byte
	pos int // offset in bits from the start of buf
}

// seek positions the cursor at an absolute bit offset.
func (c *bitCursor) seek(bit int) {
	c.pos = bit
}

// readBits reads the next n bits (n <= 32) as an unsigned integer.
func (c *bitCursor) readBits(n uint) uint32 {
	var v uint32
	for n > 0 {
		i := c.pos >> 3
		off := uint(c.pos & 7)
		take := 8 - off
		if take > n {
			take = n
		}
		v = v<<take | uint32(c.buf[i]>>(8-off-take))&(1<<take-1)
		c.pos += int(take)
		n -= take
	}
	return v
}

// writeBits writes the low n bits (n <= 32) of v at the cursor. The buffer
// must be zeroed where written; bits are combined with OR.
func (c *bitCursor) writeBits(v uint32, n uint) {
	for n > 0 {
		i := c.pos >> 3
		off := uint(c.pos & 7)
		take := 8 - off
		if take > n {
			take = n
		}
		bits := byte(v>>(n-take)) & (1<<take - 1)
		c.buf[i] |= bits << (8 - off - take)
		c.pos += int(take)
		n -= take
	}
}
