package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type requestFieldsKey struct{}

// requestFields collects values that inner middleware learns after RequestLogger
// has handed the request on (inner handlers see a derived request, not this one).
type requestFields struct {
	subject string
}

// setLoggedSubject records subject for the request line, if RequestLogger is in the chain.
func setLoggedSubject(ctx context.Context, subject string) {
	if rf, ok := ctx.Value(requestFieldsKey{}).(*requestFields); ok {
		rf.subject = subject
	}
}

// RequestLogger writes one structured line per request after it completes.
// Expected order in router: RequestID -> RealIP -> RequestLogger -> Recoverer.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			rf := &requestFields{}
			r = r.WithContext(context.WithValue(r.Context(), requestFieldsKey{}, rf))

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
				}
				if id := chimw.GetReqID(r.Context()); id != "" {
					fields = append(fields, zap.String("request_id", id))
				}
				if rf.subject != "" {
					fields = append(fields, zap.String("subject", rf.subject))
				}

				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("request", fields...)
				case status >= http.StatusBadRequest:
					logger.Warn("request", fields...)
				default:
					logger.Info("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
