package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDisplayID(t *testing.T) {
	tests := []struct {
		seq  int
		want string
	}{
		{0, "A2222"},
		{1, "A2223"},
		{31, "A222Z"},
		{32, "A2232"},
		{MaxDisplaySequence, "AZZZZ"},
	}
	for _, tt := range tests {
		got, err := EncodeDisplayID(tt.seq)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestEncodeDisplayID_OutOfRange(t *testing.T) {
	_, err := EncodeDisplayID(-1)
	assert.Error(t, err)
	_, err = EncodeDisplayID(MaxDisplaySequence + 1)
	assert.Error(t, err)
}

func TestDecodeDisplayID_RoundTrip(t *testing.T) {
	for _, seq := range []int{0, 1, 33, 1000, 54321, MaxDisplaySequence} {
		id, err := EncodeDisplayID(seq)
		require.NoError(t, err)
		got, ok := DecodeDisplayID(id)
		require.True(t, ok)
		assert.Equal(t, seq, got)
	}
}

func TestDecodeDisplayID_Rejects(t *testing.T) {
	for _, id := range []string{"", "A222", "A22222", "B2222", "A22O2", "A2212", "a2222"} {
		_, ok := DecodeDisplayID(id)
		assert.False(t, ok, id)
	}
}

func TestEncodeDisplayID_LexicographicOrderMatchesNumeric(t *testing.T) {
	prev, err := EncodeDisplayID(0)
	require.NoError(t, err)
	for seq := 1; seq < 5000; seq += 7 {
		id, err := EncodeDisplayID(seq)
		require.NoError(t, err)
		assert.Less(t, prev, id)
		prev = id
	}
}

func TestDisplayIDAlphabet(t *testing.T) {
	assert.Len(t, displayIDAlphabet, 32)
	assert.NotContains(t, displayIDAlphabet, "0")
	assert.NotContains(t, displayIDAlphabet, "O")
	assert.NotContains(t, displayIDAlphabet, "1")
	assert.NotContains(t, displayIDAlphabet, "I")

	id, err := EncodeDisplayID(18)
	require.NoError(t, err)
	assert.Equal(t, "A222L", id)
	seq, ok := DecodeDisplayID("A222L")
	require.True(t, ok)
	assert.Equal(t, 18, seq)
}
