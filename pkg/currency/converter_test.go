package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fundflow-africa/donations-backend/pkg/errs"
)

func TestConvertKnownPairs(t *testing.T) {
	conversion, err := Convert("KES", "USD", 1000)

	assert.NoError(t, err)
	assert.Equal(t, "KES", conversion.From)
	assert.Equal(t, "USD", conversion.To)
	assert.InDelta(t, 6.2, conversion.ConvertedAmount, 0.0001)
	assert.InDelta(t, 0.0062, conversion.Rate, 0.00001)
}

func TestConvertLowercaseCodes(t *testing.T) {
	conversion, err := Convert("ngn", "eth", 1000000)

	assert.NoError(t, err)
	assert.Equal(t, "NGN", conversion.From)
	assert.InDelta(t, 0.5, conversion.ConvertedAmount, 0.0001)
}

func TestConvertRoundsToSixDecimals(t *testing.T) {
	conversion, err := Convert("UGX", "ETH", 7)

	assert.NoError(t, err)
	// 7 * 0.00000012 = 0.00000084, rounds to 0.000001
	assert.Equal(t, 0.000001, conversion.ConvertedAmount)
}

func TestConvertUnknownPair(t *testing.T) {
	_, err := Convert("KES", "GBP", 100)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = Convert("EUR", "USD", 100)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestConvertInvalidInput(t *testing.T) {
	_, err := Convert("", "USD", 100)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = Convert("KES", "USD", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = Convert("KES", "USD", -10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSupportedCurrencies(t *testing.T) {
	codes := SupportedCurrencies()

	assert.Len(t, codes, 8)
	assert.Contains(t, codes, "KES")
	assert.Contains(t, codes, "MAD")
}
