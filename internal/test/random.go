package test

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/HannahHaeusler/labor/internal/domain/model"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomASCIIString returns a pseudo-random alphanumeric string with a length in
// [minLen, maxLen].
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen + rand.IntN(maxLen-minLen+1)
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = asciiLetters[rand.IntN(len(asciiLetters))]
	}
	return string(buf)
}

// RandomLineItems returns n valid line items with distinct article ids.
func RandomLineItems(n int) []model.LineItem {
	items := make([]model.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, model.LineItem{
			ArticleID: "art-" + RandomASCIIString(8, 12),
			UnitPrice: decimal.New(rand.Int64N(100_000), -2),
			Quantity:  1 + rand.IntN(9),
		})
	}
	return items
}

// RandomOrder returns a transient order for ownerID dated date with n line items.
func RandomOrder(ownerID string, date model.Date, n int) model.Order {
	return model.Order{
		Date:      date,
		OwnerID:   ownerID,
		LineItems: RandomLineItems(n),
	}
}
