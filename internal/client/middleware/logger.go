package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// LoggerMiddleware logs outgoing requests and their responses
func LoggerMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			// Record start time
			start := time.Now()

			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				req = req.Clone(req.Context())
				req.Header.Set(RequestIDHeader, requestID)
			}

			log.Printf("[HTTP] [%s] %s %s - Started", requestID, req.Method, req.URL.Path)

			resp, err := next.RoundTrip(req)
			latency := time.Since(start)

			if err != nil {
				log.Printf("[HTTP] [%s] %s %s - Failed after %v: %v", requestID, req.Method, req.URL.Path, latency, err)
				return nil, err
			}

			log.Printf("[HTTP] [%s] %s %s - Completed in %v with status %d",
				requestID,
				req.Method,
				req.URL.Path,
				latency,
				resp.StatusCode,
			)

			return resp, nil
		})
	}
}
