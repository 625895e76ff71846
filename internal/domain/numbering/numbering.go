package numbering

import (
	"fmt"
	"time"
)

// Prefix identifies the numbered document kind.
type Prefix string

const (
	PrefixBidding  Prefix = "BID"
	PrefixContract Prefix = "CNT"
	PrefixOrder    Prefix = "ORD"
)

// DateKey returns the per-prefix sequence partition for t. Bid numbers
// restart yearly, contract and order numbers daily.
func DateKey(prefix Prefix, t time.Time) string {
	if prefix == PrefixBidding {
		return t.UTC().Format("2006")
	}
	return t.UTC().Format("20060102")
}

// Format renders PREFIX-DATEKEY-NNNN.
func Format(prefix Prefix, dateKey string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, dateKey, seq)
}
