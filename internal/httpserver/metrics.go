package httpserver

import (
	"net/http"
	"sync/atomic"
)

// requestMetrics counts served requests by status class. Counters are
// atomic; there is no other shared state.
type requestMetrics struct {
	total       atomic.Int64
	success     atomic.Int64
	clientError atomic.Int64
	serverError atomic.Int64
}

func (m *requestMetrics) record(status int) {
	m.total.Add(1)
	switch {
	case status >= 500:
		m.serverError.Add(1)
	case status >= 400:
		m.clientError.Add(1)
	default:
		m.success.Add(1)
	}
}

func (m *requestMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)
		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		m.record(status)
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"requests_total":        s.metrics.total.Load(),
		"requests_success":      s.metrics.success.Load(),
		"requests_client_error": s.metrics.clientError.Load(),
		"requests_server_error": s.metrics.serverError.Load(),
	})
}
