package booking

import (
	"fmt"
	"strings"
)

const (
	// DisplayIDPrefix is prepended to every encoded sequence.
	DisplayIDPrefix = "A"
	// DisplayIDWidth is the number of symbols after the prefix.
	DisplayIDWidth = 4

	// displayIDAlphabet is in ascending ASCII order so lexicographic order of ids equals numeric order.
	// 0, O, 1 and I are left out to avoid misreads. L stays so there are exactly 32 symbols.
	displayIDAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	displayIDBase     = len(displayIDAlphabet)
)

// MaxDisplaySequence is the largest sequence that fits in DisplayIDWidth symbols (32^4 - 1).
const MaxDisplaySequence = 1<<(5*DisplayIDWidth) - 1

// EncodeDisplayID renders seq as prefix + fixed-width base-32, left padded with the lowest symbol.
func EncodeDisplayID(seq int) (string, error) {
	if seq < 0 || seq > MaxDisplaySequence {
		return "", fmt.Errorf("display sequence %d out of range [0, %d]", seq, MaxDisplaySequence)
	}

	suffix := make([]byte, DisplayIDWidth)
	for i := DisplayIDWidth - 1; i >= 0; i-- {
		suffix[i] = displayIDAlphabet[seq%displayIDBase]
		seq /= displayIDBase
	}
	return DisplayIDPrefix + string(suffix), nil
}

// DecodeDisplayID parses the sequence out of a display id. ok is false when the id has the wrong
// prefix or length, or contains a symbol foreign to the alphabet.
func DecodeDisplayID(id string) (seq int, ok bool) {
	suffix, found := strings.CutPrefix(id, DisplayIDPrefix)
	if !found || len(suffix) != DisplayIDWidth {
		return 0, false
	}

	for i := 0; i < len(suffix); i++ {
		digit := strings.IndexByte(displayIDAlphabet, suffix[i])
		if digit < 0 {
			return 0, false
		}
		seq = seq*displayIDBase + digit
	}
	return seq, true
}
