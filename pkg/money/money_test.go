package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDisplayString(t *testing.T) {
	assert.Equal(t, "1499.00", DisplayString(149900))
	assert.Equal(t, "0.00", DisplayString(0))
	assert.Equal(t, "0.05", DisplayString(5))
	assert.Equal(t, "-10.00", DisplayString(-1000))
}

func TestFromRupees(t *testing.T) {
	assert.Equal(t, int64(149900), FromRupees(decimal.NewFromFloat(1499)))
	assert.Equal(t, int64(50), FromRupees(decimal.NewFromFloat(0.505)))
	assert.Equal(t, int64(0), FromRupees(decimal.Zero))
}

func TestRoundTrip(t *testing.T) {
	for _, paise := range []int64{0, 1, 99, 100, 123456789} {
		assert.Equal(t, paise, FromRupees(Rupees(paise)))
	}
}
