// Package tasks orchestrates playlist generation from a seed song with real-time progress reporting.
//
// # Pipeline
//
// [Builder.Run] drives a four-phase pipeline:
//
//  1. Fetch similar : asks the [services.SimilarityService] for tracks
//     similar to the seed. Zero candidates means the source does not know
//     the song and the run stops before touching the catalog.
//
//  2. Resolve : a bounded worker pool maps each candidate onto a catalog
//     URI via top-hit search, rate limited against the catalog API.
//     Misses are dropped silently; transport failures are recorded and
//     abort the run only past a configurable share of attempts. Results
//     are reassembled in similarity-rank order regardless of completion
//     order.
//
//  3. Create : a private playlist named after the seed is created for the
//     authenticated user.
//
//  4. Populate : resolved URIs (at most 100) are added in one bulk call.
//     A failure here is reported as a partial result with the empty
//     playlist left in place.
//
// Once creation starts the pipeline detaches from the caller's context so
// cancellation cannot leave a playlist half-observed.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Concurrency
//
// A [Builder] is safe for concurrent use. Runs are single-flight per
// normalized seed: a second run for a seed already in flight is rejected
// rather than queued.
package tasks
