package ring

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// HashFunction maps a string to a digest. Digests are ordered lexicographically on the ring.
type HashFunction interface {
	Hash(key string) string
}

// HashFunc adapts a plain function to HashFunction.
type HashFunc func(key string) string

func (f HashFunc) Hash(key string) string {
	return f(key)
}

// Murmur3Hash renders the 128-bit murmur3 sum as fixed-width hex, so string order matches numeric order.
type Murmur3Hash struct{}

func (Murmur3Hash) Hash(key string) string {
	h1, h2 := murmur3.Sum128([]byte(key))
	return fmt.Sprintf("%016x%016x", h1, h2)
}
