// Package gameid generates room and game identifiers: a UUIDv7 rendered as
// 26 lowercase Crockford base32 characters, so ids sort by creation time.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lowercase.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id.
const Length = 26

// Generator produces ids. A nil random source uses crypto/rand.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator drawing random bits from r.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate returns a new id from crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a new id.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewV7FromReader(g.rand)
	}
	if err != nil {
		panic("gameid: read random bits: " + err.Error())
	}
	return encode(id)
}

// encode writes the 128 bits as 26 five-bit groups, padding the final group
// with two zero bits.
func encode(id uuid.UUID) string {
	var b strings.Builder
	b.Grow(Length)
	var acc uint16
	bits := 0
	for _, by := range id {
		acc = acc<<8 | uint16(by)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[(acc>>bits)&0x1f])
		}
	}
	b.WriteByte(alphabet[(acc<<(5-bits))&0x1f])
	return b.String()
}

// Validate checks that id has the shape Generate produces.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("id must be exactly %d characters, got %d", Length, len(id))
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
