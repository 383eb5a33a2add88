package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs the start and completion of every request and counts
// requests in the default metrics registry.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		reqCounter := metrics.GetOrRegisterCounter("route.TotalNumRequests", nil)

		fn := func(w http.ResponseWriter, r *http.Request) {
			reqCounter.Inc(1)

			entry := log.WithFields(logrus.Fields{
				"req_id": middleware.GetReqID(r.Context()),
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})
			entry.Debug("request started")

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry.WithFields(logrus.Fields{
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
			}).Info("request completed")
		}
		return http.HandlerFunc(fn)
	}
}
