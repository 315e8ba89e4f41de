package png

import (
	"errors"

	"pngbridge/pngio"
)

// Error kinds. Every error returned by Load and Save matches exactly one
// of them with errors.Is.
var (
	ErrStreamIO          = errors.New("stream i/o error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrLibrary           = errors.New("library error")
	ErrResourceInit      = errors.New("resource initialization error")
)

// LoadError reports a failed Load. No image is returned with it.
type LoadError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return "png: load: " + e.Msg + ": " + e.Err.Error()
	}
	return "png: load: " + e.Msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// SaveError reports a failed Save. Bytes already written to the stream are
// not rolled back.
type SaveError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Err != nil {
		return "png: save: " + e.Msg + ": " + e.Err.Error()
	}
	return "png: save: " + e.Msg
}

func (e *SaveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// classify maps a session error to its kind and message.
func classify(err error) (error, string) {
	var (
		ue pngio.UnsupportedError
		se *pngio.StreamError
	)
	switch {
	case errors.As(err, &ue):
		return ErrUnsupportedFormat, "unsupported format"
	case errors.As(err, &se):
		return ErrStreamIO, "stream error"
	}
	return ErrLibrary, "library error"
}

func loadFailure(err error) *LoadError {
	kind, msg := classify(err)
	return &LoadError{Kind: kind, Msg: msg, Err: err}
}

func saveFailure(err error) *SaveError {
	kind, msg := classify(err)
	return &SaveError{Kind: kind, Msg: msg, Err: err}
}
