// SPDX-License-Identifier: EPL-2.0

// Package store holds the session's decoded IR and DI assets. Each store
// wraps a decoder registry (selected by file extension), assigns stable
// IDs with revisions for cache identity, and reports per-file failures
// as typed DecodeErrors that never abort a batch.
package store
