// Package tasks runs long movie operations in the background with progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes many titles to disk at once:
//
//  1. A producer fetches each detail record through [services.MovieService], paced by a rate limiter
//  2. A bounded worker pool renders every record in the requested [formatter.Format]
//  3. A manifest (export_manifest.json) summarizes the successes and failures
//
// A title that cannot be fetched or written is recorded as a failed result; the rest of the batch continues.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters and a message for display.
// Updates use select with default so a slow reader never stalls an export.
package tasks
