package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "devcamper_http_requests_total", Help: "Total HTTP requests served"},
		[]string{"method", "status"},
	)
	GeocodeLookups = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "devcamper_geocode_lookups_total", Help: "Total geocoding lookups sent upstream"},
	)
	GeocodeCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "devcamper_geocode_cache_hits_total", Help: "Total geocoding lookups served from cache"},
	)
	AggregateRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "devcamper_aggregate_recomputes_total", Help: "Derived aggregate recomputations by field"},
		[]string{"field"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, GeocodeLookups, GeocodeCacheHits, AggregateRecomputes)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware counts every request by method and response status.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
