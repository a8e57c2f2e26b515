package service

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const defaultCodeLength = 6

// CodeGenerator derives short codes for links. Generated codes are not
// guaranteed unique; callers retry on collision.
type CodeGenerator interface {
	Generate(originalURL string, ownerID uuid.UUID) string
}

// ShortCodeGenerator produces fixed-length base62 codes by hashing the
// original URL, the owner and a nanosecond timestamp salt. The same
// URL shortened by different users (or at different instants) yields
// different codes.
type ShortCodeGenerator struct {
	length  int
	nowNano func() int64
}

// NewShortCodeGenerator creates a generator emitting codes of the given
// length (default 6 if non-positive).
func NewShortCodeGenerator(length int) *ShortCodeGenerator {
	if length <= 0 {
		length = defaultCodeLength
	}
	return &ShortCodeGenerator{
		length:  length,
		nowNano: func() int64 { return time.Now().UnixNano() },
	}
}

// Generate hashes url+owner+timestamp with SHA-256, takes the first 8
// bytes as an integer and converts it to base62 digits. Should the value
// run out before the target length, further digits are folded in from
// the remaining hash bytes so the code always reaches the full length.
func (g *ShortCodeGenerator) Generate(originalURL string, ownerID uuid.UUID) string {
	input := originalURL + ownerID.String() + strconv.FormatInt(g.nowNano(), 10)
	sum := sha256.Sum256([]byte(input))
	value := binary.BigEndian.Uint64(sum[:8])

	code := make([]byte, 0, g.length)
	for len(code) < g.length {
		code = append(code, base62Alphabet[value%62])
		value /= 62
		if value == 0 {
			value = uint64(sum[len(code)%len(sum)])
		}
	}
	return string(code)
}

var _ CodeGenerator = (*ShortCodeGenerator)(nil)
