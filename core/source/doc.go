// Package source provides sink.DataSource implementations and the pull loop
// transports use to consume them.
//
// Three sources cover the common payload shapes:
//
//   - Bytes wraps an in-memory buffer of known length.
//   - File serves an os.File with the length fixed by fstat.
//   - Reader adapts a sequential stream of unknown length, selecting chunked
//     framing.
//
// Consume drives the protocol: the declared size is queried exactly once
// before the first read, a non-negative size is honored byte-exactly, and an
// unknown size is drained until a zero-byte read. Transports that cannot
// reuse Consume directly must still follow those rules.
package source
