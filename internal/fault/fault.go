// Package fault defines typed request-time failures shared by every
// protocol adapter.
package fault

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Fault is a recoverable request-time error. Every adapter renders it in
// its own envelope; the HTTP status on the response always matches Status.
type Fault struct {
	// Status is the HTTP status code for the response.
	Status int
	// Message is the human-readable failure description.
	Message string
}

// Error renders the human-readable message.
func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	return f.Message
}

// Envelope is the JSON error body used by the non-SOAP, non-XML-RPC
// protocols.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Body returns the JSON error envelope for this fault.
func (f *Fault) Body() Envelope {
	return Envelope{Success: false, Error: f.Error()}
}

// MissingName reports a request that carries no operation name.
func MissingName() *Fault {
	return &Fault{Status: http.StatusBadRequest, Message: "operation name is required"}
}

// UnknownOperation reports a lookup miss for the named operation.
func UnknownOperation(name string) *Fault {
	return &Fault{Status: http.StatusNotFound, Message: fmt.Sprintf("operation %s not found", name)}
}

// ArgumentCount reports a positional-binding arity mismatch.
func ArgumentCount(name string) *Fault {
	return &Fault{Status: http.StatusBadRequest, Message: fmt.Sprintf("invalid number of arguments for operation %s", name)}
}

// BadArgument reports a value that could not be coerced to the declared
// parameter type.
func BadArgument(name string, index int, err error) *Fault {
	return &Fault{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("invalid argument %d for operation %s: %v", index+1, name, err),
	}
}

// Invocation reports an error raised by the operation itself.
func Invocation(name string, err error) *Fault {
	return &Fault{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("exception in operation %s: %v", name, err),
	}
}

// Malformed reports an unparseable request envelope.
func Malformed(detail string) *Fault {
	return &Fault{Status: http.StatusBadRequest, Message: detail}
}

// Internal reports an unexpected server-side failure.
func Internal(detail string) *Fault {
	return &Fault{Status: http.StatusInternalServerError, Message: detail}
}

// Write renders the fault as a JSON envelope response.
func Write(w http.ResponseWriter, f *Fault) {
	if f == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(f.Status)
	_ = json.NewEncoder(w).Encode(f.Body())
}

// From converts any error into a fault, passing typed faults through
// unchanged and mapping everything else to a 500.
func From(err error) *Fault {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Status: http.StatusInternalServerError, Message: err.Error()}
}
