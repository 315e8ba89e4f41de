package pngio

import (
	"errors"
	"io"
)

// A FormatError reports that the input is not a valid PNG.
type FormatError string

func (e FormatError) Error() string { return "png: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unimplemented
// PNG feature, or a colour type and bit depth pair this package rejects.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "png: unsupported feature: " + string(e) }

// A StreamError wraps a failure of the underlying reader or writer.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return "png: stream: " + e.Err.Error() }
func (e *StreamError) Unwrap() error { return e.Err }

var (
	chunkOrderError = FormatError("chunk out of order")
	errTruncated    = FormatError("unexpected end of data")

	// ErrClosed is returned by any call on a closed session.
	ErrClosed = errors.New("png: session closed")
	// ErrState is returned when session methods are called out of order.
	ErrState = errors.New("png: call out of sequence")
)

// readErr classifies an error from the underlying reader.
func readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errTruncated
	}
	return &StreamError{Err: err}
}

// zlibErr classifies an error surfaced through the inflater. Errors the
// session produced itself pass through untouched.
func zlibErr(err error) error {
	var (
		fe FormatError
		se *StreamError
	)
	switch {
	case errors.As(err, &fe), errors.As(err, &se):
		return err
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return FormatError("not enough pixel data")
	}
	return FormatError("compressed data: " + err.Error())
}
