package core

import (
	"bytes"
	"encoding/json"
)

type (
	// Totals accumulates cents for one month bucket. Spent is the sum of
	// absolute values of negative amounts, Income the sum of non-negative
	// amounts; both are always non-negative.
	Totals struct {
		Spent  int64
		Income int64
	}

	// MonthTotals pairs a month key with its totals.
	MonthTotals struct {
		Key MonthKey
		Totals
	}

	// Report is the aggregation result: populated months in chronological
	// order, the overall monthly average, and, when payment matching ran,
	// the transactions suppressed as offsetting pairs.
	Report struct {
		Months  []MonthTotals
		Average Totals

		// Ignored holds matched transactions in marking order. It is
		// rendered (possibly empty) only when WithIgnored is set.
		Ignored     []Transaction
		WithIgnored bool
	}
)

type totalsJSON struct {
	Spent  string `json:"spent"`
	Income string `json:"income"`
}

func renderTotals(t Totals) totalsJSON {
	return totalsJSON{
		Spent:  FormatCents(t.Spent),
		Income: FormatCents(t.Income),
	}
}

// MarshalJSON renders the report as a single JSON object whose keys appear
// in presentation order: month keys ascending, then "average", then
// "ignored". Totals render as formatted currency strings.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, m := range r.Months {
		key, err := json.Marshal(m.Key.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(renderTotals(m.Totals))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		buf.WriteByte(',')
	}
	avg, err := json.Marshal(renderTotals(r.Average))
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"average":`)
	buf.Write(avg)
	if r.WithIgnored {
		ignored := r.Ignored
		if ignored == nil {
			ignored = []Transaction{}
		}
		val, err := json.Marshal(ignored)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"ignored":`)
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
