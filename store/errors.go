// SPDX-License-Identifier: EPL-2.0

package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a file could not become an asset.
type ErrorKind int

const (
	// Unreadable: the file could not be opened or read.
	Unreadable ErrorKind = iota
	// UnsupportedFormat: no decoder is registered for the extension.
	UnsupportedFormat
	// Corrupt: a decoder was found but rejected the contents.
	Corrupt
)

func (k ErrorKind) String() string {
	switch k {
	case Unreadable:
		return "unreadable"
	case UnsupportedFormat:
		return "unsupported format"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// DecodeError reports a per-file decode failure with enough context to
// surface it in a list UI. Batch operations collect these instead of
// aborting.
type DecodeError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var ErrAssetNotFound = errors.New("store: asset not found")
