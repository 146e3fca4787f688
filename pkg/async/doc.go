// Package async provides small generic helpers for running work concurrently.
//
// Async starts a function in its own goroutine and returns a Future whose
// result is collected with Await. WaitAll gathers several futures without
// stopping at the first failure, and Map fans a slice out over a bounded
// number of goroutines while keeping the outputs in input order:
//
//	results := async.Map(ctx, urls, 4, func(ctx context.Context, u string) Result {
//	    return fetch(ctx, u)
//	})
//
// Map is what the remote-image catcher uses so that one dead link never hides
// the outcome of the others.
package async
