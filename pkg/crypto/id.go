package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	// URL-safe, so ids can appear in paths unescaped.
	DefaultIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	DefaultIDLength   = 21 // 21 * 6 = 126 bits of entropy

	minAlphabetLen = 8
	maxAlphabetLen = 255
)

var (
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidIDLength  = errors.New("id length must be positive")
)

// IDGenerator produces random nanoid-style identifiers for stored documents.
// It is safe for concurrent use.
type IDGenerator struct {
	alphabet string
	length   int
	mask     byte
	step     int
}

// NewIDGenerator validates alphabet and precomputes the sampling parameters.
func NewIDGenerator(alphabet string, length int) (*IDGenerator, error) {
	if length <= 0 {
		return nil, ErrInvalidIDLength
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	switch {
	case len(alphabet) < minAlphabetLen:
		return nil, ErrAlphabetTooShort
	case len(alphabet) > maxAlphabetLen:
		return nil, ErrAlphabetTooLong
	}

	mask := maskFor(len(alphabet))
	return &IDGenerator{
		alphabet: alphabet,
		length:   length,
		mask:     mask,
		// oversample so a single read usually fills the id despite rejected bytes
		step: int(math.Ceil(1.6 * float64(int(mask)*length) / float64(len(alphabet)))),
	}, nil
}

// NewDefaultIDGenerator returns a generator using DefaultIDAlphabet and DefaultIDLength.
func NewDefaultIDGenerator() *IDGenerator {
	g, err := NewIDGenerator(DefaultIDAlphabet, DefaultIDLength)
	if err != nil {
		panic(err)
	}
	return g
}

// maskFor returns the smallest all-ones bitmask that covers every alphabet index.
func maskFor(alphabetLen int) byte {
	for bits := 1; bits < 8; bits++ {
		if m := (1 << bits) - 1; m >= alphabetLen-1 {
			return byte(m)
		}
	}
	return 0xFF
}

// New returns a fresh identifier. Random bytes that fall outside the
// alphabet after masking are discarded to avoid modulo bias.
func (g *IDGenerator) New() (string, error) {
	id := make([]byte, g.length)
	buf := make([]byte, g.step)

	for pos := 0; pos < g.length; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & g.mask)
			if idx >= len(g.alphabet) {
				continue
			}
			id[pos] = g.alphabet[idx]
			pos++
			if pos == g.length {
				break
			}
		}
	}

	return string(id), nil
}
