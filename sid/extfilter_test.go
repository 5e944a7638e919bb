package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalFilter_DisabledRemovesDC(t *testing.T) {
	e := NewExternalFilter(MOS6581)
	e.Enable(false)
	e.Clock(100000)
	assert.Equal(t, 100000-modelFor(MOS6581).extMixerDC, e.Output())

	e.ClockDelta(50, 2000)
	assert.Equal(t, 2000-modelFor(MOS6581).extMixerDC, e.Output())
}

func TestExternalFilter_BlocksDC(t *testing.T) {
	e := NewExternalFilter(MOS8580)
	e.ClockDelta(100, 100000)
	assert.Greater(t, e.Output(), 50000)

	e.ClockDelta(2000000, 100000)
	assert.InDelta(t, 0, e.Output(), 2000)
}
