package peers

import (
	"fmt"
	"strings"
)

// MaxPrefixLen is the number of bits in a name.
const MaxPrefixLen = 32

// Prefix names a section: the sequence of leading bits shared by the names of
// the nodes and wallets it is responsible for. The empty prefix is the
// network's first section.
type Prefix struct {
	Bits uint32
	Len  int
}

// ParsePrefix reads a string of '0' and '1'.
func ParsePrefix(s string) (Prefix, error) {
	p := Prefix{}
	if len(s) > MaxPrefixLen {
		return p, fmt.Errorf("prefix %q longer than %d bits", s, MaxPrefixLen)
	}
	for _, c := range s {
		switch c {
		case '0':
			p = p.Pushed(false)
		case '1':
			p = p.Pushed(true)
		default:
			return Prefix{}, fmt.Errorf("invalid prefix bit %q", c)
		}
	}
	return p, nil
}

// IsEmpty reports whether this is the prefix of the network's first section.
func (p Prefix) IsEmpty() bool {
	return p.Len == 0
}

// BitCount ...
func (p Prefix) BitCount() int {
	return p.Len
}

func (p Prefix) mask() uint32 {
	if p.Len == 0 {
		return 0
	}
	return ^uint32(0) << uint(MaxPrefixLen-p.Len)
}

// Pushed returns the prefix extended by one bit.
func (p Prefix) Pushed(bit bool) Prefix {
	if p.Len == MaxPrefixLen {
		return p
	}
	res := Prefix{Bits: p.Bits, Len: p.Len + 1}
	if bit {
		res.Bits |= 1 << uint(MaxPrefixLen-res.Len)
	}
	return res
}

// Matches reports whether name falls under the prefix.
func (p Prefix) Matches(name uint32) bool {
	return name&p.mask() == p.Bits&p.mask()
}

// IsExtensionOf reports whether p is a strict descendant of other.
func (p Prefix) IsExtensionOf(other Prefix) bool {
	return p.Len > other.Len && other.Matches(p.Bits)
}

// Equal ...
func (p Prefix) Equal(other Prefix) bool {
	return p.Len == other.Len && p.Bits&p.mask() == other.Bits&other.mask()
}

func (p Prefix) String() string {
	var sb strings.Builder
	for i := 1; i <= p.Len; i++ {
		if p.Bits&(1<<uint(MaxPrefixLen-i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return "(" + sb.String() + ")"
}
