// Package search drives the home view's movie search and the detail view's lookup.
//
// A [Controller] turns raw keystrokes into committed queries after a quiet
// period and runs one fetch per committed query. Every fetch is tagged with a
// generation; a result is applied only while its generation is still current
// and the controller is open, so a slow response for an old query can never
// overwrite the state of a newer one. [DetailLoader] applies the same guard to
// single-title lookups.
//
// Both types publish immutable snapshots to subscribers through a
// [shared.Hub]. Subscribers are called in publish order, outside the
// publisher's lock, so they may read the publisher's Snapshot. A snapshot
// overtaken by a newer one before delivery is dropped. Subscribers must not
// call the publisher's mutating methods.
package search
