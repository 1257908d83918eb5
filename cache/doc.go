// Package cache provides CachedValue, a self-refreshing value with separate
// refresh and retry windows.
//
// State transitions on every access, evaluated under the value's own lock:
//
//   - a memoized error is returned until the retry window passes, then the
//     value is refreshed;
//   - an empty value, or one past its refresh window, is refreshed;
//   - otherwise the projection of the cached value is returned, unless the
//     predicate rejects it and the retry window has passed, in which case the
//     value is refreshed early.
//
// A refresh sets both windows from the current time, whether it succeeds or
// not. A failed refresh clears the value and stores the error.
//
// Example:
//
//	topics := cache.New(10*time.Second, 2*time.Second, listTopics)
//	found, err := cache.Compute(ctx, topics,
//		func(names map[string]struct{}) bool { _, ok := names["orders"]; return ok },
//		func(ok bool) bool { return ok })
package cache
