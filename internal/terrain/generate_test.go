package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	h1, c1, err := Generate(64, 7)
	require.NoError(t, err)
	h2, c2, err := Generate(64, 7)
	require.NoError(t, err)

	assert.Equal(t, h1.Data, h2.Data)
	assert.Equal(t, c1.Data, c2.Data)
}

func TestGenerateRangeAndOpacity(t *testing.T) {
	hm, cm, err := Generate(32, 3)
	require.NoError(t, err)

	var sawAboveWater bool
	for i, h := range hm.Data {
		assert.GreaterOrEqual(t, h, uint16(waterLevel))
		assert.LessOrEqual(t, h, uint16(maxHeight))
		assert.Equal(t, uint8(255), cm.Data[i].A)
		if h > waterLevel {
			sawAboveWater = true
		}
	}
	assert.True(t, sawAboveWater)
}

func TestGenerateRejectsBadSize(t *testing.T) {
	_, _, err := Generate(100, 1)
	require.ErrorIs(t, err, ErrNotPowerOfTwo)
}
