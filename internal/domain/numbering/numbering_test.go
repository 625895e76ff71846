package numbering

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
)

func TestFormat(t *testing.T) {
	at := time.Date(2025, 1, 31, 23, 30, 0, 0, time.UTC)

	check.Equal(t, "BID-2025-0007", Format(PrefixBidding, DateKey(PrefixBidding, at), 7))
	check.Equal(t, "CNT-20250131-0004", Format(PrefixContract, DateKey(PrefixContract, at), 4))
	check.Equal(t, "ORD-20250131-12345", Format(PrefixOrder, DateKey(PrefixOrder, at), 12345))
}

func TestDateKey_UsesUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	at := time.Date(2025, 1, 1, 5, 0, 0, 0, tokyo)

	check.Equal(t, "2024", DateKey(PrefixBidding, at))
	check.Equal(t, "20241231", DateKey(PrefixContract, at))
}
