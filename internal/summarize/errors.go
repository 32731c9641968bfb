package summarize

import (
	"errors"
	"fmt"
)

var (
	// ErrContentNotFound means no stored document matched the requested id.
	ErrContentNotFound = errors.New("meeting content not found, select a meeting first")
	// ErrContentTooShort means the resolved document is below the minimum length.
	ErrContentTooShort = errors.New("meeting content is too short to summarize")
)

// EndpointFault is a non-success response from the model endpoint.
type EndpointFault struct {
	Status int
	Detail string
}

func (e *EndpointFault) Error() string {
	return fmt.Sprintf("API response unavailable: error %d. %s", e.Status, e.Detail)
}

// FaultDetails exposes the endpoint's own message to the fault log.
func (e *EndpointFault) FaultDetails() string {
	return e.Detail
}

// FormatFault is a success response whose body lacks the expected text.
type FormatFault struct {
	Body string
}

func (e *FormatFault) Error() string {
	return "API response in unexpected format."
}

func (e *FormatFault) FaultDetails() string {
	return e.Body
}

// Placeholder renders err as the text stored in place of a failed section.
func Placeholder(err error) string {
	var ef *EndpointFault
	var ff *FormatFault
	switch {
	case errors.As(err, &ef):
		return ef.Error()
	case errors.As(err, &ff):
		return ff.Error()
	default:
		return "API error: " + err.Error()
	}
}
