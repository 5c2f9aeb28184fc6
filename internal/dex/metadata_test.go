package dex

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTokenAmount(t *testing.T) {
	assert.Equal(t, "1.500000", FormatTokenAmount(big.NewInt(1_500_000), 6))
	assert.Equal(t, "-0.01", FormatTokenAmount(big.NewInt(-1), 2))
	assert.Equal(t, "42", FormatTokenAmount(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatTokenAmount(nil, 18))
}

func TestScaleAmount(t *testing.T) {
	wei, _ := new(big.Int).SetString("2500000000000000000", 10)
	assert.InDelta(t, 2.5, ScaleAmount(wei, 18), 1e-12)
	assert.Equal(t, 0.0, ScaleAmount(nil, 18))
}
