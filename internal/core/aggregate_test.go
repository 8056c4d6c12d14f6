package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

var donutMerchants = []string{"KRISPY KREME DONUTS", "DUNKIN #336784"}

func TestAggregateEmptyInput(t *testing.T) {
	for name, input := range map[string][]Transaction{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			report, err := Aggregate(input, Options{ExcludeCCPayments: true})
			if err != nil {
				t.Fatalf("Aggregate: %v", err)
			}
			if len(report.Months) != 0 {
				t.Fatalf("expected no months, got %d", len(report.Months))
			}
			if report.Average != (Totals{}) {
				t.Fatalf("expected zero average, got %+v", report.Average)
			}
			got, err := json.Marshal(report)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			want := `{"average":{"spent":"$0.00","income":"$0.00"}}`
			if string(got) != want {
				t.Fatalf("got %s, want %s", got, want)
			}
		})
	}
}

func TestAggregateMonthTotals(t *testing.T) {
	report, err := Aggregate([]Transaction{
		txn("1", -111200, "2015-11-03T00:00:00.000Z"),
		txn("2", 50000, "2015-11-20T00:00:00.000Z"),
		txn("3", -76400, "2016-02-01T00:00:00.000Z"),
		txn("4", 0, "2016-02-02T00:00:00.000Z"),
	}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(report.Months) != 2 {
		t.Fatalf("expected 2 populated months, got %d", len(report.Months))
	}
	nov := report.Months[0]
	feb := report.Months[1]
	if nov.Key.String() != "2015-11" || feb.Key.String() != "2016-02" {
		t.Fatalf("month keys = %s, %s", nov.Key, feb.Key)
	}
	if nov.Spent != 111200 || nov.Income != 50000 {
		t.Fatalf("2015-11 totals = %+v", nov.Totals)
	}
	if feb.Spent != 76400 || feb.Income != 0 {
		t.Fatalf("2016-02 totals = %+v", feb.Totals)
	}
	// Divisor is the populated month count, not the four-month span.
	if report.Average.Spent != roundDiv(111200+76400, 2) {
		t.Fatalf("average spent = %d", report.Average.Spent)
	}
	if report.Average.Income != 25000 {
		t.Fatalf("average income = %d", report.Average.Income)
	}
	if report.WithIgnored {
		t.Fatal("ignored list should be absent when matching is disabled")
	}
}

func TestAggregateConservesTotals(t *testing.T) {
	transactions := []Transaction{
		txn("1", -100, "2016-01-05T00:00:00.000Z"),
		txn("2", 250, "2016-01-06T00:00:00.000Z"),
		txn("3", -75, "2016-03-01T00:00:00.000Z"),
		txn("4", -25, "2016-03-02T00:00:00.000Z"),
		txn("5", 400, "2016-07-09T00:00:00.000Z"),
	}
	report, err := Aggregate(transactions, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	var spent, income int64
	for _, m := range report.Months {
		spent += m.Spent
		income += m.Income
	}
	if spent != 200 || income != 650 {
		t.Fatalf("totals = (%d, %d), want (200, 650)", spent, income)
	}
}

func TestAggregateChronologicalOrder(t *testing.T) {
	report, err := Aggregate([]Transaction{
		txn("1", -100, "2014-12-01T00:00:00.000Z"),
		txn("2", -100, "2015-03-01T00:00:00.000Z"),
		txn("3", -100, "2015-03-15T00:00:00.000Z"),
		txn("4", -100, "2016-01-02T00:00:00.000Z"),
	}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := []string{"2014-12", "2015-03", "2016-01"}
	if len(report.Months) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(report.Months))
	}
	for i, m := range report.Months {
		if m.Key.String() != want[i] {
			t.Fatalf("month %d = %s, want %s", i, m.Key, want[i])
		}
		if i > 0 && !report.Months[i-1].Key.Before(m.Key) {
			t.Fatalf("month keys not strictly increasing at %d", i)
		}
	}
}

func TestAggregateDonutFilter(t *testing.T) {
	report, err := Aggregate([]Transaction{
		{ID: "1453195740000", Merchant: "Krispy Kreme Donuts", Amount: -111200, Time: "2016-01-18T00:00:00.000Z"},
		{ID: "1453214340000", Merchant: "Dunkin #336784", Amount: -76400, Time: "2016-01-19T00:00:00.000Z"},
	}, Options{ExcludeMerchants: donutMerchants})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	got, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"average":{"spent":"$0.00","income":"$0.00"}}`
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestAggregateCCPaymentPair(t *testing.T) {
	report, err := Aggregate([]Transaction{
		{ID: "1453195740001", Merchant: "CC Payment", Amount: -1000, Time: "2016-01-18T00:00:00.000Z"},
		{ID: "1453214340002", Merchant: "Some Other Credit", Amount: 1200, Time: "2016-01-18T12:00:00.000Z"},
		{ID: "1453214340003", Merchant: "CC Credit", Amount: 1000, Time: "2016-01-19T00:00:00.000Z"},
	}, Options{ExcludeCCPayments: true})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(report.Months) != 1 {
		t.Fatalf("expected one month, got %d", len(report.Months))
	}
	jan := report.Months[0]
	if jan.Key.String() != "2016-01" || jan.Income != 1200 || jan.Spent != 0 {
		t.Fatalf("2016-01 = %+v", jan)
	}
	if !report.WithIgnored || len(report.Ignored) != 2 {
		t.Fatalf("ignored = %+v", report.Ignored)
	}
	if report.Ignored[0].ID != "1453195740001" || report.Ignored[1].ID != "1453214340003" {
		t.Fatalf("ignored ids = %s, %s", report.Ignored[0].ID, report.Ignored[1].ID)
	}
}

func TestAggregateIgnoredPresentWhenNoPairsMatch(t *testing.T) {
	report, err := Aggregate([]Transaction{
		txn("1", -100, "2016-01-05T00:00:00.000Z"),
	}, Options{ExcludeCCPayments: true})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !report.WithIgnored {
		t.Fatal("expected ignored list to be attached")
	}
	got, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(got), `"ignored":[]`) {
		t.Fatalf("expected empty ignored array, got %s", got)
	}
}

func TestAggregateAverageRounding(t *testing.T) {
	// 100 + 101 cents over two populated months: 100.5 rounds half up.
	report, err := Aggregate([]Transaction{
		txn("1", -100, "2016-01-05T00:00:00.000Z"),
		txn("2", -101, "2016-02-05T00:00:00.000Z"),
	}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if report.Average.Spent != 101 {
		t.Fatalf("average spent = %d, want 101", report.Average.Spent)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	transactions := []Transaction{
		{ID: "a", Merchant: "Krispy Kreme Donuts", Amount: -500, Time: "2016-01-10T00:00:00.000Z"},
		{ID: "b", Merchant: "Employer", Amount: 100000, Time: "2016-01-15T00:00:00.000Z"},
		{ID: "c", Merchant: "CC Payment", Amount: -1000, Time: "2016-02-01T00:00:00.000Z"},
		{ID: "d", Merchant: "CC Credit", Amount: 1000, Time: "2016-02-01T06:00:00.000Z"},
	}
	opts := Options{ExcludeMerchants: donutMerchants, ExcludeCCPayments: true}

	first, err := Aggregate(transactions, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Aggregate(transactions, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("reports differ:\n%s\n%s", a, b)
	}
}

func TestAggregateInvalidDate(t *testing.T) {
	_, err := Aggregate([]Transaction{
		txn("1", -100, "18/01/2016"),
	}, Options{})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestAggregateInvalidRecord(t *testing.T) {
	missingMerchant := []Transaction{
		{ID: "1", Amount: -100, Time: "2016-01-05T00:00:00.000Z"},
	}
	_, err := Aggregate(missingMerchant, Options{ExcludeMerchants: donutMerchants})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	// Without the merchant filter the record aggregates fine.
	if _, err := Aggregate(missingMerchant, Options{}); err != nil {
		t.Fatalf("expected ok without filter, got %v", err)
	}
}

func TestAggregateYearGuard(t *testing.T) {
	_, err := Aggregate([]Transaction{
		txn("1", -100, "0005-01-02"),
	}, Options{})
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
