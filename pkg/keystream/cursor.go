package keystream

// Cursor reads one nonce's keystream byte by byte. Parameter derivation
// consumes an unbounded number of bytes (rejection sampling re-draws),
// so the cursor grows its buffer on demand; prefix consistency of
// Derive guarantees the same bytes regardless of how the buffer grew.
type Cursor struct {
	src   Source
	nonce Nonce
	buf   []byte
	pos   int
}

const cursorInitialSize = 64

// NewCursor positions a cursor at the start of the nonce's keystream
func NewCursor(src Source, nonce Nonce) *Cursor {
	return &Cursor{src: src, nonce: nonce}
}

// NextByte returns the next keystream byte
func (c *Cursor) NextByte() (byte, error) {
	if c.pos == len(c.buf) {
		size := len(c.buf) * 2
		if size < cursorInitialSize {
			size = cursorInitialSize
		}
		buf, err := c.src.Derive(c.nonce, size)
		if err != nil {
			return 0, err
		}
		c.buf = buf
	}

	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Consumed returns how many keystream bytes have been read
func (c *Cursor) Consumed() int {
	return c.pos
}
