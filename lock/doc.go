// Package lock implements a mutual-exclusion lock arbitrated by a single
// Redis-compatible store.
//
// A lock is a key set with SET NX PX to a random ownership token. Acquisition
// is retried a bounded number of times with jittered delays, and release only
// deletes the key while it still holds the caller's token. Locks expire on
// their own after the TTL, so a crashed holder never blocks others forever.
//
// The lock is not fair and offers no exclusivity once the TTL has elapsed.
package lock
