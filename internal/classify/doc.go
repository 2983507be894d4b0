// Package classify assigns incident metadata to threads by asking a
// completion model, one call per thread.
//
// A failed call never aborts a run: the thread gets a fallback
// classification with empty fields and the error text. Only cancellation of
// the run context stops the loop.
package classify
