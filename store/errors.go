package store

import "errors"

var (
	// ErrNotFound means no snapshot or blob exists under the key or URI.
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidID means a snapshot key was empty or a snapshot lacked its kind.
	ErrInvalidID = errors.New("store: invalid id")

	// ErrInvalidURI means a blob URI names another backend or bucket.
	ErrInvalidURI = errors.New("store: invalid uri")

	ErrNotConnected     = errors.New("store: not connected")
	ErrAlreadyConnected = errors.New("store: already connected")

	// ErrChecksumMismatch means snapshot data changed after it was sealed.
	ErrChecksumMismatch = errors.New("store: checksum mismatch")
)

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsInvalidID(err error) bool    { return errors.Is(err, ErrInvalidID) }
func IsNotConnected(err error) bool { return errors.Is(err, ErrNotConnected) }
func IsCorrupt(err error) bool      { return errors.Is(err, ErrChecksumMismatch) }
