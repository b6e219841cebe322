package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// sequenceWidth is the zero-padded width of generated invoice numbers
const sequenceWidth = 8

// FormatNumber renders a generated invoice number, e.g. SI00000001
func FormatNumber(t InvoiceType, seq int64) string {
	return fmt.Sprintf("%s%0*d", t.Prefix(), sequenceWidth, seq)
}

// ParseSequence extracts the sequence from a generated number of type t.
// ok is false for numbers that were not generated, such as ones typed in
// by the user.
func ParseSequence(t InvoiceType, number string) (seq int64, ok bool) {
	rest, found := strings.CutPrefix(number, t.Prefix())
	if !found || len(rest) != sequenceWidth {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextNumber returns the number following the latest generated one
func NextNumber(t InvoiceType, latest string) string {
	seq, ok := ParseSequence(t, latest)
	if !ok {
		seq = 0
	}
	return FormatNumber(t, seq+1)
}
