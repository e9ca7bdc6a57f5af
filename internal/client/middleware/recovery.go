package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware converts a panic in the wrapped transport into an error
func RecoveryMiddleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("PANIC: %v\n%s", r, debug.Stack())
					resp = nil
					err = fmt.Errorf("transport panic: %v", r)
				}
			}()

			return next.RoundTrip(req)
		})
	}
}
