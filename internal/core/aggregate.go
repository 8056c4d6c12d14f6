package core

import "math"

// Options controls the optional aggregation filters.
type Options struct {
	// ExcludeMerchants drops transactions whose merchant matches one of the
	// given names, case-insensitively. Empty disables the filter.
	ExcludeMerchants []string

	// ExcludeCCPayments suppresses same-magnitude opposite-sign pairs within
	// 24 hours of each other and attaches them to the report.
	ExcludeCCPayments bool
}

// Aggregate folds a timestamp-ascending transaction history into per-month
// spending and income totals plus an overall monthly average. The average
// divides by the count of populated months, not the calendar span.
//
// Input ordering is assumed, not verified: the payment matcher relies on
// ascending timestamps and produces unspecified results on unsorted input.
//
// An empty or nil input yields the zero-average-only report. A transaction
// time that does not parse aborts with ErrInvalidDate; a record missing a
// field required by an active filter aborts with ErrInvalidRecord. No
// partial report is returned on error.
func Aggregate(transactions []Transaction, opts Options) (*Report, error) {
	report := &Report{}
	if len(transactions) == 0 {
		return report, nil
	}

	filter := NewMerchantFilter(opts.ExcludeMerchants...)
	matcher := newPaymentMatcher(transactions)

	// Year range over retained transactions only.
	earliestYear := math.MaxInt32
	latestYear := math.MinInt32

	buckets := make(map[MonthKey]*Totals)

	for i, t := range transactions {
		ts, err := t.Timestamp()
		if err != nil {
			return nil, err
		}
		year, month := ts.Year(), int(ts.Month())

		if filter.Enabled() {
			excluded, err := filter.Excludes(t)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
		}

		if opts.ExcludeCCPayments {
			if matcher.isIgnored(t.ID) {
				continue
			}
			if err := matcher.process(i); err != nil {
				return nil, err
			}
			if matcher.isIgnored(t.ID) {
				continue
			}
		}

		if year < earliestYear {
			earliestYear = year
		}
		if year > latestYear {
			latestYear = year
		}

		key, err := NewMonthKey(year, month)
		if err != nil {
			return nil, err
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &Totals{}
			buckets[key] = bucket
		}
		if t.Amount >= 0 {
			bucket.Income += t.Amount
		} else {
			bucket.Spent += -t.Amount
		}
	}

	// Emit populated months chronologically and accumulate running totals.
	// This is a presentation guarantee over the bucket map, not a re-sort
	// of the input.
	var totalSpent, totalIncome int64
	for year := earliestYear; year <= latestYear; year++ {
		for month := 1; month <= 12; month++ {
			key, err := NewMonthKey(year, month)
			if err != nil {
				return nil, err
			}
			bucket, ok := buckets[key]
			if !ok {
				continue
			}
			totalSpent += bucket.Spent
			totalIncome += bucket.Income
			report.Months = append(report.Months, MonthTotals{Key: key, Totals: *bucket})
		}
	}

	if n := int64(len(buckets)); n > 0 {
		report.Average = Totals{
			Spent:  roundDiv(totalSpent, n),
			Income: roundDiv(totalIncome, n),
		}
	}

	if opts.ExcludeCCPayments {
		report.WithIgnored = true
		report.Ignored = matcher.ignoredOrder
	}

	return report, nil
}

// roundDiv divides total by n, rounding half away from zero.
func roundDiv(total, n int64) int64 {
	return int64(math.Round(float64(total) / float64(n)))
}
