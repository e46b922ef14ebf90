package mutator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharSkipsSurrogateGap(t *testing.T) {
	m := Char{Lo: 0xD700, Hi: 0xE100}
	step := m.DefaultArbitraryStep()
	for {
		v, _, ok := m.OrderedArbitrary(&step, m.MaxComplexity())
		if !ok {
			break
		}
		assert.False(t, v >= surrogateLo && v <= surrogateHi, "surrogate code point %x emitted", v)
	}
}

func TestCharValidateValueRejectsSurrogate(t *testing.T) {
	m := Char{Lo: 0, Hi: 0x10FFFF}
	_, ok := m.ValidateValue(0xD900)
	assert.False(t, ok)
	_, ok = m.ValidateValue('a')
	assert.True(t, ok)
}
