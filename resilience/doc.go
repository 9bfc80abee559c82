// Package resilience retries asynchronous completions (network calls made
// on behalf of a widget instance) with exponential backoff.
//
//	cfg := resilience.DefaultRetryConfig()
//	profile, err := resilience.Retry(ctx, cfg, func(ctx context.Context) (Profile, error) {
//	    return api.GetProfile(ctx, token)
//	})
package resilience
