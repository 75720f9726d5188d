package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/waichatt/console/internal/chatwoot"
)

// fakeReporter serves canned series keyed by metric and window width.
type fakeReporter struct {
	counts   func(metric chatwoot.Metric, since, until int64) ([]chatwoot.Bucket, error)
	contacts int
	errAll   error
}

func (f *fakeReporter) FetchCount(_ context.Context, metric chatwoot.Metric, since, until int64) ([]chatwoot.Bucket, error) {
	if f.errAll != nil {
		return nil, f.errAll
	}
	return f.counts(metric, since, until)
}

func (f *fakeReporter) FetchContactTotal(_ context.Context) (int, error) {
	if f.errAll != nil {
		return 0, f.errAll
	}
	return f.contacts, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestAggregator(reporter Reporter) *Aggregator {
	since := time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)
	return New(reporter, since).WithNow(fixedNow)
}

// windowName classifies a fetch by its since bound relative to the fixed clock.
func windowName(since int64) string {
	now := fixedNow()
	switch since {
	case now.Add(-time.Hour).Unix():
		return "hour"
	case now.Add(-24 * time.Hour).Unix():
		return "day"
	case now.Add(-7 * 24 * time.Hour).Unix():
		return "week"
	default:
		return "historic"
	}
}

func TestCollectLastDayUsesLatestBucketNotSum(t *testing.T) {
	reporter := &fakeReporter{
		counts: func(metric chatwoot.Metric, since, _ int64) ([]chatwoot.Bucket, error) {
			if windowName(since) == "day" {
				// Two buckets: a sum would be 50, the latest value is 30.
				return []chatwoot.Bucket{
					{Timestamp: 100, Value: 20},
					{Timestamp: 200, Value: 30},
				}, nil
			}
			return nil, nil
		},
	}

	summary, errCollect := newTestAggregator(reporter).Collect(context.Background(), Account{PlanID: 1})
	if errCollect != nil {
		t.Fatalf("Collect: %v", errCollect)
	}
	if summary.LastDay.Sent != 30 {
		t.Fatalf("LastDay.Sent = %d, want 30 (latest bucket, not sum)", summary.LastDay.Sent)
	}
	if summary.LastDay.Received != 30 {
		t.Fatalf("LastDay.Received = %d, want 30", summary.LastDay.Received)
	}
}

func TestCollectSumsOtherWindows(t *testing.T) {
	reporter := &fakeReporter{
		counts: func(metric chatwoot.Metric, since, _ int64) ([]chatwoot.Bucket, error) {
			switch windowName(since) {
			case "hour":
				return []chatwoot.Bucket{{Timestamp: 1, Value: 2}, {Timestamp: 2, Value: 3}}, nil
			case "historic":
				return []chatwoot.Bucket{{Timestamp: 1, Value: 100}, {Timestamp: 2, Value: 200}}, nil
			default:
				return nil, nil
			}
		},
		contacts: 42,
	}

	summary, errCollect := newTestAggregator(reporter).Collect(context.Background(), Account{PlanID: 2})
	if errCollect != nil {
		t.Fatalf("Collect: %v", errCollect)
	}
	if summary.LastHour.Sent != 5 {
		t.Fatalf("LastHour.Sent = %d, want 5", summary.LastHour.Sent)
	}
	if summary.MessagesSent != 300 {
		t.Fatalf("MessagesSent = %d, want 300", summary.MessagesSent)
	}
	if summary.TotalContacts != 42 {
		t.Fatalf("TotalContacts = %d, want 42", summary.TotalContacts)
	}
}

func TestCollectZipsWeeklySeriesByTimestamp(t *testing.T) {
	t1, t2, t3 := int64(1000), int64(2000), int64(3000)
	reporter := &fakeReporter{
		counts: func(metric chatwoot.Metric, since, _ int64) ([]chatwoot.Bucket, error) {
			if windowName(since) != "week" {
				return nil, nil
			}
			if metric == chatwoot.MetricOutgoing {
				return []chatwoot.Bucket{{Timestamp: t1, Value: 10}, {Timestamp: t2, Value: 20}, {Timestamp: t3, Value: 30}}, nil
			}
			// Received has no bucket at t2.
			return []chatwoot.Bucket{{Timestamp: t1, Value: 1}, {Timestamp: t3, Value: 3}}, nil
		},
	}

	summary, errCollect := newTestAggregator(reporter).Collect(context.Background(), Account{PlanID: 1})
	if errCollect != nil {
		t.Fatalf("Collect: %v", errCollect)
	}

	daily := summary.DailyData
	if len(daily) != 3 {
		t.Fatalf("len(DailyData) = %d, want 3", len(daily))
	}
	for i := 1; i < len(daily); i++ {
		if daily[i-1].Timestamp >= daily[i].Timestamp {
			t.Fatalf("DailyData not sorted: %+v", daily)
		}
	}
	if daily[1].Timestamp != t2 || daily[1].MessagesSent != 20 || daily[1].MessagesReceived != 0 {
		t.Fatalf("bucket at t2 = %+v, want sent 20 received 0", daily[1])
	}
	if daily[0].Date != "1970-01-01" {
		t.Fatalf("Date = %q, want 1970-01-01", daily[0].Date)
	}
}

func TestCollectPropagatesFirstError(t *testing.T) {
	errUpstream := errors.New("upstream down")
	reporter := &fakeReporter{errAll: errUpstream}

	if _, errCollect := newTestAggregator(reporter).Collect(context.Background(), Account{PlanID: 1}); !errors.Is(errCollect, errUpstream) {
		t.Fatalf("Collect error = %v, want wrapped upstream error", errCollect)
	}
}

func TestPlanDisplayName(t *testing.T) {
	cases := []struct {
		planID uint64
		want   string
	}{
		{1, "Plan Inicial"},
		{2, "Plan Pro"},
		{3, "Plan Empresarial"},
		{0, "Integración"},
		{99, "Integración"},
	}
	for _, tc := range cases {
		if got := PlanDisplayName(tc.planID); got != tc.want {
			t.Fatalf("PlanDisplayName(%d) = %q, want %q", tc.planID, got, tc.want)
		}
	}
}

func TestPlanMessageAllowance(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"Plan Inicial", 1000},
		{"Plan Pro", 5000},
		{"Plan Empresarial", 14000},
		{"Integración", 14000},
	}
	for _, tc := range cases {
		if got := PlanMessageAllowance(tc.name); got != tc.want {
			t.Fatalf("PlanMessageAllowance(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestZeroSummaryHasEmptyDailyData(t *testing.T) {
	summary := Zero()
	if summary.DailyData == nil {
		t.Fatal("DailyData is nil, want empty slice")
	}
	if len(summary.DailyData) != 0 {
		t.Fatalf("len(DailyData) = %d, want 0", len(summary.DailyData))
	}
}
