package core

import "time"

// paymentMatcher identifies same-magnitude, opposite-sign transaction pairs
// that fall within 24 hours of each other, e.g. a credit card bill debited
// from checking and the matching credit on the card. Matched pairs net to
// zero and are excluded from totals.
//
// The matcher is strictly sequential: process must be called once per index
// in increasing order over a timestamp-ascending sequence. It maintains a
// FIFO window of pending future transactions plus an amount index mapping
// each pending amount to the scan-ordered indices carrying it, giving an
// amortized O(1) matching step instead of a pairwise scan.
//
// Eviction is lazy: entries leave the window front only when they fall
// strictly before the transaction currently being processed, and the amount
// index is shifted blindly in lock-step with the window. At boundary
// timestamps this can keep a counterpart visible slightly past its own
// conceptual 24 hour horizon. That behavior is inherited from the reference
// implementation and is preserved as-is.
type paymentMatcher struct {
	transactions []Transaction
	window       []windowEntry
	byAmount     map[int64][]int
	ignored      map[string]struct{}
	ignoredOrder []Transaction
}

type windowEntry struct {
	index int
	ts    time.Time
}

const matchHorizon = 24 * time.Hour

func newPaymentMatcher(transactions []Transaction) *paymentMatcher {
	return &paymentMatcher{
		transactions: transactions,
		byAmount:     make(map[int64][]int),
		ignored:      make(map[string]struct{}),
	}
}

// isIgnored reports whether the transaction id was marked as part of a
// matched pair by an earlier processing step.
func (m *paymentMatcher) isIgnored(id string) bool {
	_, ok := m.ignored[id]
	return ok
}

// markIgnored records t as ignored. Re-marking is a no-op; the first marking
// fixes t's position in the ignored order.
func (m *paymentMatcher) markIgnored(t Transaction) {
	if _, ok := m.ignored[t.ID]; ok {
		return
	}
	m.ignored[t.ID] = struct{}{}
	m.ignoredOrder = append(m.ignoredOrder, t)
}

// process advances the window past aged-out entries, extends it up to 24
// hours beyond the transaction at index, and performs the matching step for
// that transaction. Valid only when called with strictly increasing indices.
func (m *paymentMatcher) process(index int) error {
	current := m.transactions[index]
	now, err := current.Timestamp()
	if err != nil {
		return err
	}

	// Age out entries strictly before the current transaction's own time.
	for len(m.window) > 0 {
		head := m.window[0]
		if !head.ts.Before(now) {
			break
		}
		m.window = m.window[1:]
		amount := m.transactions[head.index].Amount
		if pending := m.byAmount[amount]; len(pending) > 0 {
			m.byAmount[amount] = pending[1:]
		}
	}

	// Extend forward from the last scanned position. The window includes the
	// current transaction itself; horizon is inclusive.
	horizon := now.Add(matchHorizon)
	for i := index + len(m.window); i < len(m.transactions); i++ {
		next := m.transactions[i]
		ts, err := next.Timestamp()
		if err != nil {
			return err
		}
		if ts.After(horizon) {
			break
		}
		m.window = append(m.window, windowEntry{index: i, ts: ts})
		m.byAmount[next.Amount] = append(m.byAmount[next.Amount], i)
	}

	// The earliest pending transaction with the exact opposite amount wins.
	if pending := m.byAmount[-current.Amount]; len(pending) > 0 {
		future := m.transactions[pending[0]]
		// A zero-amount transaction finds itself on both sides of the
		// negation lookup; never pair a transaction with itself.
		if future.ID != current.ID {
			m.markIgnored(current)
			m.markIgnored(future)
		}
	}
	return nil
}
