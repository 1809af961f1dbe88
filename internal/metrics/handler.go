package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for the metrics summary endpoint.
type Summary struct {
	HTTP      httpSummary   `json:"http"`
	Auth      authInfo      `json:"auth"`
	Domain    domainInfo    `json:"domain"`
	RateLimit rateLimitInfo `json:"rateLimit"`
	Scheduler schedInfo     `json:"scheduler"`
	Server    serverInfo    `json:"server"`
}

type httpSummary struct {
	TotalRequests float64 `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	P50Latency    float64 `json:"p50Latency"`
	P95Latency    float64 `json:"p95Latency"`
	P99Latency    float64 `json:"p99Latency"`
}

type authInfo struct {
	Successes float64 `json:"successes"`
	Failures  float64 `json:"failures"`
}

type domainInfo struct {
	UsersRegistered  float64 `json:"usersRegistered"`
	ChannelsCreated  float64 `json:"channelsCreated"`
	MessagesSent     float64 `json:"messagesSent"`
	MessagesDeferred float64 `json:"messagesDeferred"`
	StandupsStarted  float64 `json:"standupsStarted"`
}

type rateLimitInfo struct {
	Rejections float64 `json:"rejections"`
}

type schedInfo struct {
	PendingTasks float64 `json:"pendingTasks"`
}

type serverInfo struct {
	StartTime     float64 `json:"startTime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// SummaryHandler returns an http.HandlerFunc that serves live metrics in JSON
// format, aggregated from the Prometheus registry.
func (m *Metrics) SummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.handleSummary(w)
	}
}

func (m *Metrics) handleSummary(w http.ResponseWriter) {
	families, err := m.registry.Gather()
	if err != nil {
		http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}

	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	summary := Summary{
		HTTP: httpSummary{
			TotalRequests: sumCounter(fam["flockr_http_requests_total"]),
			ErrorRate:     computeErrorRate(fam["flockr_http_requests_total"]),
			P50Latency:    histogramPercentile(fam["flockr_http_request_duration_seconds"], 0.50),
			P95Latency:    histogramPercentile(fam["flockr_http_request_duration_seconds"], 0.95),
			P99Latency:    histogramPercentile(fam["flockr_http_request_duration_seconds"], 0.99),
		},
		Auth: authInfo{
			Successes: sumCounter(fam["flockr_auth_successes_total"]),
			Failures:  sumCounter(fam["flockr_auth_failures_total"]),
		},
		Domain: domainInfo{
			UsersRegistered:  counterValue(fam["flockr_users_registered_total"]),
			ChannelsCreated:  counterValue(fam["flockr_channels_created_total"]),
			MessagesSent:     counterWithLabel(fam["flockr_messages_sent_total"], "kind", "immediate"),
			MessagesDeferred: counterWithLabel(fam["flockr_messages_sent_total"], "kind", "deferred"),
			StandupsStarted:  counterValue(fam["flockr_standups_started_total"]),
		},
		RateLimit: rateLimitInfo{
			Rejections: counterValue(fam["flockr_ratelimit_rejections_total"]),
		},
		Scheduler: schedInfo{
			PendingTasks: gaugeValue(fam["flockr_deferred_tasks_pending"]),
		},
		Server: serverInfo{
			StartTime:     gaugeValue(fam["flockr_server_start_time_seconds"]),
			UptimeSeconds: float64(time.Now().Unix()) - gaugeValue(fam["flockr_server_start_time_seconds"]),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	_ = json.NewEncoder(w).Encode(summary)
}

// --- Prometheus metric helpers ---

func sumCounter(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() != nil {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func counterValue(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	ms := f.GetMetric()
	if len(ms) == 0 {
		return 0
	}
	if ms[0].GetCounter() != nil {
		return ms[0].GetCounter().GetValue()
	}
	return 0
}

func counterWithLabel(f *dto.MetricFamily, labelName, labelValue string) float64 {
	if f == nil {
		return 0
	}
	for _, m := range f.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == labelName && lp.GetValue() == labelValue {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func gaugeValue(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	ms := f.GetMetric()
	if len(ms) == 0 {
		return 0
	}
	if ms[0].GetGauge() != nil {
		return ms[0].GetGauge().GetValue()
	}
	return 0
}

func computeErrorRate(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total, errors float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil {
			continue
		}
		v := m.GetCounter().GetValue()
		total += v
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "status_code" {
				code := lp.GetValue()
				if len(code) > 0 && code[0] >= '4' {
					errors += v
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return errors / total
}

// histogramPercentile computes a percentile from aggregated histogram buckets
// using linear interpolation.
func histogramPercentile(f *dto.MetricFamily, q float64) float64 {
	if f == nil {
		return 0
	}

	type bucket struct {
		upperBound      float64
		cumulativeCount uint64
	}
	var totalCount uint64
	bucketMap := make(map[float64]uint64)

	for _, m := range f.GetMetric() {
		h := m.GetHistogram()
		if h == nil {
			continue
		}
		totalCount += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			bucketMap[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}

	if totalCount == 0 {
		return 0
	}

	buckets := make([]bucket, 0, len(bucketMap))
	for ub, count := range bucketMap {
		buckets = append(buckets, bucket{upperBound: ub, cumulativeCount: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].upperBound < buckets[j].upperBound
	})

	rank := q * float64(totalCount)

	var prevBound float64
	var prevCount uint64
	for _, b := range buckets {
		if math.IsInf(b.upperBound, 1) {
			break
		}
		if float64(b.cumulativeCount) >= rank {
			bucketCount := b.cumulativeCount - prevCount
			if bucketCount == 0 {
				return b.upperBound
			}
			fraction := (rank - float64(prevCount)) / float64(bucketCount)
			return prevBound + fraction*(b.upperBound-prevBound)
		}
		prevBound = b.upperBound
		prevCount = b.cumulativeCount
	}

	for i := len(buckets) - 1; i >= 0; i-- {
		if !math.IsInf(buckets[i].upperBound, 1) {
			return buckets[i].upperBound
		}
	}
	return 0
}
