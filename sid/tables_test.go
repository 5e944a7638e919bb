package sid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDAC_8580IsMonotonic(t *testing.T) {
	m := modelFor(MOS8580)
	assert.Zero(t, m.waveDAC[0])
	for i := 1; i < len(m.waveDAC); i++ {
		require.GreaterOrEqual(t, m.waveDAC[i], m.waveDAC[i-1], "code %#x", i)
	}
	assert.InDelta(t, 4095, int(m.waveDAC[4095]), 2)
	assert.InDelta(t, 255, int(m.envDAC[255]), 2)
}

func TestDAC_6581IsNonLinear(t *testing.T) {
	m := modelFor(MOS6581)
	assert.Zero(t, m.waveDAC[0])
	assert.Zero(t, m.envDAC[0])

	linear := true
	for i, v := range m.waveDAC {
		if int(v) != i {
			linear = false
			break
		}
	}
	assert.False(t, linear)
}

func TestSpline_Endpoints(t *testing.T) {
	m6581 := modelFor(MOS6581)
	assert.InDelta(t, 220, m6581.f0[0], 1)
	assert.InDelta(t, 18000, m6581.f0[2047], 1)
	assert.InDelta(t, 6000, m6581.f0[1023], 1)
	assert.InDelta(t, 4600, m6581.f0[1024], 1)

	m8580 := modelFor(MOS8580)
	assert.InDelta(t, 0, m8580.f0[0], 1)
	assert.InDelta(t, 12500, m8580.f0[2047], 1)
	assert.InDelta(t, 6500, m8580.f0[1024], 1)
}

func TestSpline_NoNegativeValues(t *testing.T) {
	for _, typ := range []ChipType{MOS6581, MOS8580} {
		for i, v := range modelFor(typ).f0 {
			require.GreaterOrEqual(t, v, 0, "%v f0[%d]", typ, i)
		}
	}
}

func TestCombinedWaves_SubsetOfIdeal(t *testing.T) {
	for _, typ := range []ChipType{MOS6581, MOS8580} {
		m := modelFor(typ)
		for _, wf := range []int{3, 5, 6, 7} {
			for i := 0; i < 1<<12; i++ {
				ideal := uint16(0xfff)
				if wf&1 != 0 {
					ideal &= m.wave[1][i]
				}
				if wf&2 != 0 {
					ideal &= m.wave[2][i]
				}
				require.Zero(t, m.wave[wf][i]&^ideal, "%v wave %d index %#x", typ, wf, i)
			}
		}
		assert.NotZero(t, m.wave[3][0x7ff], "%v", typ)
	}
}

func TestModel_SharedPerChipType(t *testing.T) {
	assert.Same(t, modelFor(MOS6581), modelFor(MOS6581))
	assert.Same(t, modelFor(MOS8580), modelFor(MOS8580))
	assert.NotSame(t, modelFor(MOS6581), modelFor(MOS8580))
	assert.Same(t, modelFor(MOS6581), modelFor(ChipType(7)))
}

func TestChipType_String(t *testing.T) {
	assert.Equal(t, "MOS6581", MOS6581.String())
	assert.Equal(t, "MOS8580", MOS8580.String())
	assert.Equal(t, "unknown", ChipType(5).String())
}
