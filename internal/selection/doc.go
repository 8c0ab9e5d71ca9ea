// Package selection is the orchestration boundary the HTTP layer calls
// through. Each operation pins one catalog snapshot, then composes the
// rules validator and pricing engine over it. The service holds no
// per-request state and performs no caching; everything it returns is
// computed fresh from its inputs.
package selection
