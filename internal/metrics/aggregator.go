package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/waichatt/console/internal/chatwoot"
	log "github.com/sirupsen/logrus"
)

// Reporter is the slice of the messaging-metrics client the aggregator needs.
type Reporter interface {
	FetchCount(ctx context.Context, metric chatwoot.Metric, since, until int64) ([]chatwoot.Bucket, error)
	FetchContactTotal(ctx context.Context) (int, error)
}

// WindowCounts holds the sent/received totals of one time window.
type WindowCounts struct {
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
}

// DailyBucket is one day of the weekly breakdown.
type DailyBucket struct {
	Date             string `json:"fecha"`             // YYYY-MM-DD in the reporting location.
	Timestamp        int64  `json:"timestamp"`         // Bucket start, Unix seconds.
	MessagesSent     int64  `json:"mensajesEnviados"`  // Sent count for the day.
	MessagesReceived int64  `json:"mensajesRecibidos"` // Received count for the day.
}

// Summary is the flat dashboard metrics object returned to callers.
type Summary struct {
	Plan              string        `json:"plan"`
	MessagesRemaining int           `json:"messagesRemaining"`
	TotalMessages     int           `json:"totalMessages"`
	MessagesSent      int64         `json:"messagesSent"`
	MessagesReceived  int64         `json:"messagesReceived"`
	TotalContacts     int           `json:"totalContacts"`
	LastHour          WindowCounts  `json:"lastHour"`
	LastDay           WindowCounts  `json:"lastDay"`
	LastWeek          WindowCounts  `json:"lastWeek"`
	DailyData         []DailyBucket `json:"dailyData"`
}

// Zero returns a fully zeroed summary used when the upstream is unavailable.
// The dashboard read path degrades instead of failing.
func Zero() *Summary {
	return &Summary{DailyData: []DailyBucket{}}
}

// Account carries the plan/quota snapshot merged into the summary.
type Account struct {
	Name              string
	PlanID            uint64
	MessagesRemaining int
	StoredAllowance   int // Allotment persisted on the Plan row, for drift detection.
}

// PlanDisplayName maps a plan id to its marketing name. Unknown ids are
// custom integrations.
func PlanDisplayName(planID uint64) string {
	switch planID {
	case 1:
		return "Plan Inicial"
	case 2:
		return "Plan Pro"
	case 3:
		return "Plan Empresarial"
	default:
		return "Integración"
	}
}

// PlanMessageAllowance maps a plan display name to its message allotment.
// This table, not the stored Plan row, is what the dashboard reports; see
// the drift warning in Collect.
func PlanMessageAllowance(planName string) int {
	switch planName {
	case "Plan Inicial":
		return 1000
	case "Plan Pro":
		return 5000
	default:
		return 14000
	}
}

// Aggregator composes windowed metric counts into a dashboard summary.
type Aggregator struct {
	reporter      Reporter
	historicSince time.Time
	location      *time.Location
	now           func() time.Time
}

// New constructs an Aggregator reporting in UTC.
func New(reporter Reporter, historicSince time.Time) *Aggregator {
	return &Aggregator{
		reporter:      reporter,
		historicSince: historicSince,
		location:      time.UTC,
		now:           time.Now,
	}
}

// WithLocation sets the reporting location used for daily bucketing.
func (a *Aggregator) WithLocation(loc *time.Location) *Aggregator {
	if loc != nil {
		a.location = loc
	}
	return a
}

// WithNow overrides the clock, for tests.
func (a *Aggregator) WithNow(now func() time.Time) *Aggregator {
	if now != nil {
		a.now = now
	}
	return a
}

// window pairs the since/until bounds of one collection window.
type window struct {
	since int64
	until int64
}

// Collect fans out all metric fetches concurrently, joins them, and merges
// the results with the account's plan snapshot. Window totals are sums of
// the returned series, except lastDay which reports the latest single
// bucket's value; that asymmetry is part of the dashboard's contract.
func (a *Aggregator) Collect(ctx context.Context, account Account) (*Summary, error) {
	now := a.now().UTC()
	nowUnix := now.Unix()

	windows := map[string]window{
		"historic": {since: a.historicSince.Unix(), until: nowUnix},
		"hour":     {since: now.Add(-time.Hour).Unix(), until: nowUnix},
		"day":      {since: now.Add(-24 * time.Hour).Unix(), until: nowUnix},
		"week":     {since: now.Add(-7 * 24 * time.Hour).Unix(), until: nowUnix},
	}

	type seriesKey struct {
		window string
		metric chatwoot.Metric
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		series   = make(map[seriesKey][]chatwoot.Bucket, 2*len(windows))
		contacts int
	)

	record := func(err error) {
		mu.Lock()
		if firstErr == nil && err != nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for name, win := range windows {
		for _, metric := range []chatwoot.Metric{chatwoot.MetricOutgoing, chatwoot.MetricIncoming} {
			wg.Add(1)
			go func(name string, metric chatwoot.Metric, win window) {
				defer wg.Done()
				buckets, errFetch := a.reporter.FetchCount(ctx, metric, win.since, win.until)
				if errFetch != nil {
					record(fmt.Errorf("fetch %s %s: %w", name, metric, errFetch))
					return
				}
				mu.Lock()
				series[seriesKey{window: name, metric: metric}] = buckets
				mu.Unlock()
			}(name, metric, win)
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		total, errFetch := a.reporter.FetchContactTotal(ctx)
		if errFetch != nil {
			record(fmt.Errorf("fetch contacts: %w", errFetch))
			return
		}
		mu.Lock()
		contacts = total
		mu.Unlock()
	}()

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	get := func(name string, metric chatwoot.Metric) []chatwoot.Bucket {
		return series[seriesKey{window: name, metric: metric}]
	}

	planName := PlanDisplayName(account.PlanID)
	allowance := PlanMessageAllowance(planName)
	if account.StoredAllowance > 0 && account.StoredAllowance != allowance {
		log.WithFields(log.Fields{
			"plan":             planName,
			"table_allowance":  allowance,
			"stored_allowance": account.StoredAllowance,
		}).Warn("metrics: plan allowance table diverges from stored plan allotment")
	}

	weekSent := get("week", chatwoot.MetricOutgoing)
	weekReceived := get("week", chatwoot.MetricIncoming)

	return &Summary{
		Plan:              planName,
		MessagesRemaining: account.MessagesRemaining,
		TotalMessages:     allowance,
		MessagesSent:      sumValues(get("historic", chatwoot.MetricOutgoing)),
		MessagesReceived:  sumValues(get("historic", chatwoot.MetricIncoming)),
		TotalContacts:     contacts,
		LastHour: WindowCounts{
			Sent:     sumValues(get("hour", chatwoot.MetricOutgoing)),
			Received: sumValues(get("hour", chatwoot.MetricIncoming)),
		},
		LastDay: WindowCounts{
			Sent:     lastValue(get("day", chatwoot.MetricOutgoing)),
			Received: lastValue(get("day", chatwoot.MetricIncoming)),
		},
		LastWeek: WindowCounts{
			Sent:     sumValues(weekSent),
			Received: sumValues(weekReceived),
		},
		DailyData: a.zipDaily(weekSent, weekReceived),
	}, nil
}

// sumValues adds up every bucket of a series.
func sumValues(buckets []chatwoot.Bucket) int64 {
	var total int64
	for _, bucket := range buckets {
		total += bucket.Value
	}
	return total
}

// lastValue returns the final bucket's value, the "latest single bucket"
// read used by the lastDay window.
func lastValue(buckets []chatwoot.Bucket) int64 {
	if len(buckets) == 0 {
		return 0
	}
	return buckets[len(buckets)-1].Value
}

// zipDaily merges the sent and received weekly series by timestamp key.
// A bucket present on only one side defaults the other to zero. Output is
// ordered by timestamp.
func (a *Aggregator) zipDaily(sent, received []chatwoot.Bucket) []DailyBucket {
	byTimestamp := make(map[int64]*DailyBucket, len(sent)+len(received))

	for _, bucket := range sent {
		byTimestamp[bucket.Timestamp] = &DailyBucket{
			Date:         a.formatDate(bucket.Timestamp),
			Timestamp:    bucket.Timestamp,
			MessagesSent: bucket.Value,
		}
	}
	for _, bucket := range received {
		if existing, ok := byTimestamp[bucket.Timestamp]; ok {
			existing.MessagesReceived = bucket.Value
			continue
		}
		byTimestamp[bucket.Timestamp] = &DailyBucket{
			Date:             a.formatDate(bucket.Timestamp),
			Timestamp:        bucket.Timestamp,
			MessagesReceived: bucket.Value,
		}
	}

	out := make([]DailyBucket, 0, len(byTimestamp))
	for _, bucket := range byTimestamp {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// formatDate truncates a Unix timestamp to YYYY-MM-DD in the reporting location.
func (a *Aggregator) formatDate(timestamp int64) string {
	return time.Unix(timestamp, 0).In(a.location).Format("2006-01-02")
}
