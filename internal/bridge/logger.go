package bridge

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// requestLogger logs one line per bridge call.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.Int("response.status", ww.Status()),
					zap.Int("response.bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
				}
				if r.Method != "" {
					fields = append(fields, zap.String("request.method", r.Method))
				}
				if r.URL.Path != "" {
					fields = append(fields, zap.String("request.path", r.URL.Path))
				}
				if id := middleware.GetReqID(r.Context()); id != "" {
					fields = append(fields, zap.String("request.id", id))
				}
				log.Info("bridge request", fields...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
