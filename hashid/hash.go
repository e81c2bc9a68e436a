package hashid

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Sum returns the id of name without consulting any registry.
func Sum(name string) uint32 {
	if id, ok := ParseLiteral(name); ok {
		return id
	}
	h := fnv.New32()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return h.Sum32()
}

// ParseLiteral parses names of the form "0x" followed by one to eight hex
// digits. ok is false for any other name.
func ParseLiteral(name string) (id uint32, ok bool) {
	if len(name) < 3 || len(name) > 10 {
		return 0, false
	}
	if name[0] != '0' || (name[1] != 'x' && name[1] != 'X') {
		return 0, false
	}
	v, err := strconv.ParseUint(name[2:], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
