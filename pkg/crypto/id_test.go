package crypto

import (
	"strings"
	"sync"
	"testing"
)

func TestNewIDGenerator(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		length   int
		wantErr  error
	}{
		{name: "default alphabet", alphabet: DefaultIDAlphabet, length: DefaultIDLength},
		{name: "min alphabet size", alphabet: strings.Repeat("a", 8), length: 10},
		{name: "max alphabet size", alphabet: strings.Repeat("a", 255), length: 10},
		{name: "alphabet too short", alphabet: "abcdefg", length: 10, wantErr: ErrAlphabetTooShort},
		{name: "alphabet too long", alphabet: strings.Repeat("a", 256), length: 10, wantErr: ErrAlphabetTooLong},
		{name: "non ascii alphabet", alphabet: "abcdefgé", length: 10, wantErr: ErrAlphabetNotASCII},
		{name: "zero length", alphabet: DefaultIDAlphabet, length: 0, wantErr: ErrInvalidIDLength},
		{name: "negative length", alphabet: DefaultIDAlphabet, length: -3, wantErr: ErrInvalidIDLength},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			g, err := NewIDGenerator(test.alphabet, test.length)

			// Assert
			if err != test.wantErr {
				t.Fatalf("NewIDGenerator() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && g == nil {
				t.Fatal("NewIDGenerator() returned nil generator")
			}
		})
	}
}

func TestMaskFor(t *testing.T) {
	tests := []struct {
		alphabetLen int
		want        byte
	}{
		{alphabetLen: 8, want: 0x07},
		{alphabetLen: 9, want: 0x0F},
		{alphabetLen: 16, want: 0x0F},
		{alphabetLen: 17, want: 0x1F},
		{alphabetLen: 64, want: 0x3F},
		{alphabetLen: 65, want: 0x7F},
		{alphabetLen: 128, want: 0x7F},
		{alphabetLen: 129, want: 0xFF},
		{alphabetLen: 255, want: 0xFF},
	}

	for _, test := range tests {
		if got := maskFor(test.alphabetLen); got != test.want {
			t.Errorf("maskFor(%d) = %#x, want %#x", test.alphabetLen, got, test.want)
		}
	}
}

func TestIDGenerator_New(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		length   int
	}{
		{name: "default", alphabet: DefaultIDAlphabet, length: DefaultIDLength},
		{name: "numeric only", alphabet: "0123456789", length: 50},
		{name: "min size alphabet", alphabet: "ABCDEFGH", length: 64},
		{name: "max size alphabet", alphabet: strings.Repeat("abcdefghijklmnopqrstuvwxyz", 10)[:255], length: 40},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			g, err := NewIDGenerator(test.alphabet, test.length)
			if err != nil {
				t.Fatalf("NewIDGenerator() error = %v", err)
			}

			// Act
			id, err := g.New()

			// Assert
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if len(id) != test.length {
				t.Errorf("len(id) = %d, want %d", len(id), test.length)
			}
			for i, char := range id {
				if !strings.ContainsRune(test.alphabet, char) {
					t.Errorf("id[%d] = %q, not in alphabet", i, char)
				}
			}
		})
	}
}

func TestIDGenerator_Uniqueness(t *testing.T) {
	g := NewDefaultIDGenerator()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5_000; i++ {
				id, err := g.New()
				if err != nil {
					t.Errorf("New() error = %v", err)
					return
				}
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate ID generated: %q", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 40_000 {
		t.Errorf("generated %d unique IDs, want %d", len(seen), 40_000)
	}
}
