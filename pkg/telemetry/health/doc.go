// Package health reports whether the interceptor can do what it is
// configured to do.
//
// Components register checks by name; Check runs them concurrently with a
// per-check timeout and aggregates the results:
//
//	checker := health.New(time.Second)
//	checker.Register("cloud", func(ctx context.Context) error {
//	    if !sender.Initialized() {
//	        return errors.New("cloud sender not initialized")
//	    }
//	    return nil
//	})
//	http.Handle("/health", checker.Handler())
//
// A report is "ready" when every check passes and "degraded" otherwise; the
// HTTP handler answers 200 and 503 respectively. Health never affects
// interception: a degraded interceptor still passes every call through.
package health
