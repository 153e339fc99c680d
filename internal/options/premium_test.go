package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutPrice_Basics(t *testing.T) {
	// Deep in-the-money put is worth close to intrinsic value.
	deep, err := putPrice(50, 100, 30.0/365.0, 0.05, 0.30)
	require.NoError(t, err)
	assert.Greater(t, deep, 45.0)

	// Far out-of-the-money put is nearly worthless.
	far, err := putPrice(100, 50, 30.0/365.0, 0.05, 0.30)
	require.NoError(t, err)
	assert.Less(t, far, 0.01)
}

func TestPutPrice_InvalidInputs(t *testing.T) {
	_, err := putPrice(0, 100, 0.1, 0.05, 0.3)
	assert.Error(t, err)

	_, err = putPrice(100, 100, 0.1, 0.05, 0)
	assert.Error(t, err)
}

func TestEstimateSpreadCredit_NeverBelowFloor(t *testing.T) {
	// A calm, high-priced instrument prices the spread near zero; the
	// floor must hold it up.
	credit := EstimateSpreadCredit(500, 12)
	assert.GreaterOrEqual(t, credit, creditFloor)
}

func TestEstimateSpreadCredit_HighVolPaysMore(t *testing.T) {
	calm := EstimateSpreadCredit(30, 20)
	stressed := EstimateSpreadCredit(30, 60)
	assert.Greater(t, stressed, calm)
	assert.Greater(t, stressed, creditFloor)
}

func TestEstimateSpreadCredit_FaultFallsBack(t *testing.T) {
	assert.Equal(t, FallbackCredit, EstimateSpreadCredit(0, 20))
	assert.Equal(t, FallbackCredit, EstimateSpreadCredit(-5, 20))
}

func TestEstimateSpreadCredit_TinyPriceLongStrikeInvalid(t *testing.T) {
	// Short strike under the spread width makes the long strike negative.
	assert.Equal(t, FallbackCredit, EstimateSpreadCredit(2, 20))
}
