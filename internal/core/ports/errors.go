package ports

import "errors"

var (
	// ErrUploadRejected is returned when the service answers with a non-2xx status
	ErrUploadRejected = errors.New("upload rejected")

	// ErrMalformedResponse is returned when a 2xx body cannot be parsed
	ErrMalformedResponse = errors.New("malformed upload response")
)

// TransportError reports that the request could not be sent or completed
type TransportError struct {
	Err error
}

// Error returns the underlying failure description unchanged
func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
