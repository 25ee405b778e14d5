// SPDX-License-Identifier: EPL-2.0

// Package engine is the command facade the UI layer talks to. It owns
// the IR and DI session stores, the playback engine and the convolution
// cache, and exposes the full control surface: pair selection, mix,
// volume, equalizer, transport, quick dry/wet A/B and batch export.
//
// Convolution runs on worker goroutines with single-flight deduplication
// per asset pair; results reaching the engine after the selection moved
// on are discarded. The audio callback is never entered from here.
package engine
