package middleware

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorReporter forwards an unexpected error to an external tracker.
type ErrorReporter func(err error, tags map[string]string)

// Recover turns a handler panic into a 500 response, logging it and passing it to report.
func Recover(log *zap.Logger, report ErrorReporter) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				log.Error("handler panic",
					zap.String("event", "panic"),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Error(err),
					zap.Stack("stack"),
				)
				if report != nil {
					report(err, map[string]string{"path": r.URL.Path, "method": r.Method})
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
