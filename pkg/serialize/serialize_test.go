package serialize

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteRoundTrip(t *testing.T) {
	s := NewByte("bin")
	assert.Equal(t, "bin", s.Extension())
	data := []byte{1, 2, 3}
	v, ok := s.FromData(s.ToData(data))
	require.True(t, ok)
	assert.Equal(t, data, v)
}

func TestTextRoundTrip(t *testing.T) {
	s := NewText[int]("txt",
		func(str string) (int, bool) {
			n, err := strconv.Atoi(str)
			return n, err == nil
		},
		func(n int) string { return strconv.Itoa(n) },
	)
	v, ok := s.FromData(s.ToData(42))
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = s.FromData([]byte("not-a-number"))
	assert.False(t, ok)
}

type structuredSample struct {
	A int
	B string
}

func TestStructuredRoundTrip(t *testing.T) {
	s := NewStructured[structuredSample]("yaml")
	v := structuredSample{A: 1, B: "x"}
	got, ok := s.FromData(s.ToData(v))
	require.True(t, ok)
	assert.Equal(t, v, got)
}
