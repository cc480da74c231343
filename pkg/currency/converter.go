package currency

import (
	"math"
	"strings"
	"time"

	"fundflow-africa/donations-backend/pkg/errs"
)

// Rate table for the African currencies the platform quotes directly.
// Values are units of the target currency per one unit of the source.
var africanCurrencyRates = map[string]map[string]float64{
	"KES": {"USD": 0.0062, "ETH": 0.0000028},   // Kenyan Shilling
	"NGN": {"USD": 0.0012, "ETH": 0.0000005},   // Nigerian Naira
	"GHS": {"USD": 0.065, "ETH": 0.000029},     // Ghanaian Cedi
	"ZAR": {"USD": 0.053, "ETH": 0.000024},     // South African Rand
	"UGX": {"USD": 0.00027, "ETH": 0.00000012}, // Ugandan Shilling
	"TZS": {"USD": 0.00043, "ETH": 0.00000019}, // Tanzanian Shilling
	"XOF": {"USD": 0.0016, "ETH": 0.0000007},   // West African CFA Franc
	"MAD": {"USD": 0.097, "ETH": 0.000044},     // Moroccan Dirham
}

// Conversion is the result of a currency conversion quote.
type Conversion struct {
	From            string    `json:"from"`
	To              string    `json:"to"`
	Amount          float64   `json:"amount"`
	ConvertedAmount float64   `json:"convertedAmount"`
	Rate            float64   `json:"rate"`
	Timestamp       time.Time `json:"timestamp"`
}

// Convert quotes a conversion between two currencies using the local
// rate table. Unknown pairs return ErrNotFound; amounts are rounded to
// six decimal places.
func Convert(from, to string, amount float64) (*Conversion, error) {
	if from == "" || to == "" || amount <= 0 {
		return nil, errs.Invalidf("from, to and a positive amount are required")
	}

	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	rates, ok := africanCurrencyRates[from]
	if !ok {
		return nil, errs.NotFoundf("no conversion rate available for %s", from)
	}
	rate, ok := rates[to]
	if !ok {
		return nil, errs.NotFoundf("no conversion rate available for %s to %s", from, to)
	}

	converted := math.Round(amount*rate*1e6) / 1e6

	return &Conversion{
		From:            from,
		To:              to,
		Amount:          amount,
		ConvertedAmount: converted,
		Rate:            rate,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// SupportedCurrencies lists the source currencies with local rates.
func SupportedCurrencies() []string {
	out := make([]string, 0, len(africanCurrencyRates))
	for code := range africanCurrencyRates {
		out = append(out, code)
	}
	return out
}
