package itm

import "github.com/blackmagic-traceview/swotrace/internal/constants"

// Carry is the tagged carry cache spec §9 recommends in place of a raw
// 5-byte-array-plus-length: either Empty, or Partial holding the header
// byte and however much of its payload arrived before the frame ended.
type Carry struct {
	active    bool
	header    byte
	prefix    [constants.CarryCacheSize - 1]byte
	prefixLen int
}

// Empty reports whether the cache holds nothing.
func (c *Carry) Empty() bool {
	return !c.active
}

// Clear resets the cache to Empty.
func (c *Carry) Clear() {
	*c = Carry{}
}

// Set stores a partial packet: the header byte plus whatever prefix of
// its payload was captured before the frame ran out.
func (c *Carry) Set(header byte, prefix []byte) {
	c.active = true
	c.header = header
	c.prefixLen = copy(c.prefix[:], prefix)
}

// Header returns the cached header byte. Only meaningful if !Empty().
func (c *Carry) Header() byte {
	return c.header
}

// Prefix returns the cached payload prefix. Only meaningful if !Empty().
func (c *Carry) Prefix() []byte {
	return c.prefix[:c.prefixLen]
}

// PrefixLen returns how many payload bytes are already cached.
func (c *Carry) PrefixLen() int {
	return c.prefixLen
}
