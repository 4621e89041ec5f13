package games

import (
	"errors"

	"github.com/shopspring/decimal"
)

// payoutPlaces is the precision payouts are truncated to.
const payoutPlaces = 8

var ErrNoMultiplier = errors.New("outcome has no payout multiplier")

// Payout returns amount times the outcome multiplier, truncated to eight
// decimal places so a payout is never rounded up.
func Payout(amount decimal.Decimal, r GameResult) (decimal.Decimal, error) {
	if r.Multiplier == nil {
		return decimal.Zero, ErrNoMultiplier
	}
	return amount.Mul(decimal.NewFromFloat(*r.Multiplier)).Truncate(payoutPlaces), nil
}
