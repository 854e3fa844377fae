package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

type appMetrics struct {
	started             time.Time
	requests            atomic.Int64
	transactionsCreated atomic.Int64
	transactionsDeleted atomic.Int64
	validationErrors    atomic.Int64
	busyRejections      atomic.Int64
	fetchErrors         atomic.Int64
	rateLimitHits       atomic.Int64
	suspicious          atomic.Int64
}

func newAppMetrics() *appMetrics {
	return &appMetrics{started: time.Now()}
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	m := s.metrics

	write := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	write("http_requests_total", "counter", "Total number of HTTP requests", m.requests.Load())
	write("transactions_created_total", "counter", "Transactions added", m.transactionsCreated.Load())
	write("transactions_deleted_total", "counter", "Transactions deleted", m.transactionsDeleted.Load())
	write("validation_errors_total", "counter", "Rejected entry forms", m.validationErrors.Load())
	write("busy_rejections_total", "counter", "Operations rejected while another was running", m.busyRejections.Load())
	write("fetch_errors_total", "counter", "Failed month loads", m.fetchErrors.Load())
	write("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", m.rateLimitHits.Load())
	write("suspicious_requests_total", "counter", "Suspicious requests detected", m.suspicious.Load())
	write("active_sessions", "gauge", "Sessions held in memory", s.sessions.Len())
	write("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.limiter.activeClients())
	write("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(m.started).Seconds()))
}
