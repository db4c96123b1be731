/*
Package resilience provides the circuit breaker that guards calls to the
completions provider and the search APIs.

A breaker fails fast while a provider is down instead of holding inbound
requests open against it. It never retries: a rejected or failed call is
returned to the caller as is.

# Usage

	breaker := resilience.New("google-search", resilience.Settings{
		Timeout: 30 * time.Second,
		IsFailure: func(err error) bool {
			var up *types.UpstreamError
			return !errors.As(err, &up) || up.StatusCode >= 500
		},
	})

	results, err := resilience.Do(ctx, breaker, func(ctx context.Context) ([]types.WebResult, error) {
		return google.Search(ctx, query)
	})

For streamed responses the call outlives any closure, so reserve a slot
with Allow and report the outcome once the body is done:

	done, err := breaker.Allow()
	if err != nil {
		return err
	}
	defer func() { done(streamErr) }()

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
