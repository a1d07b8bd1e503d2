// Package session provides the instance manager: concurrency-safe access to
// per-instance current-node tracking and named variables.
package session
