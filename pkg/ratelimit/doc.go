// Package ratelimit keeps an API client under the server's request quota.
//
// A Governor enforces two rules before every request:
//
//   - If the previous response reported fewer remaining requests than the
//     configured floor (X-Ratelimit-Remaining), wait for the number of
//     seconds given in X-Ratelimit-Reset.
//   - Never send two requests closer together than one minute divided by
//     the allowed requests per minute.
//
// Both waits are served in that order. The governor holds its own state, so
// independent clients never share a budget.
//
//	gov := ratelimit.NewGovernor(90)
//	if err := gov.Wait(ctx); err != nil {
//	    return err
//	}
//	resp, err := httpClient.Do(req)
//	if err == nil {
//	    gov.Observe(resp.Header)
//	}
package ratelimit
