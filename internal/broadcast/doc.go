// Package broadcast is the fan-out delivery engine.
//
// A broadcast delivers one payload (text, or photo with caption) to an
// ordered list of chat IDs through a transport.Sender. Concurrency is
// bounded by an explicit ConcurrencyBudget, throughput is shaped by a
// per-completion pacing sleep, and every recipient produces exactly one
// Outcome. Results accumulate in completion order, not input order.
//
// Delivery semantics
//
// The dispatcher is best-effort and single-shot: there are no retries, and
// a failed recipient never aborts the run. Failures become data (an Outcome
// with a failure kind and detail); the only fatal error path is building
// the sender itself, which happens before Run is ever called.
package broadcast
