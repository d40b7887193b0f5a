// Package httpform implements the plain form-encoded HTTP protocol:
// "call" names the operation and repeated "param" fields carry the
// ordered arguments.
package httpform

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/omnibridge/omnibridge/internal/classify"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/request"
)

// Adapter translates the form HTTP protocol.
type Adapter struct{}

// New returns the form HTTP adapter.
func New() *Adapter { return &Adapter{} }

// Name returns the adapter identifier.
func (*Adapter) Name() string { return "httpform" }

// ParseRequest reads the call and param fields of the combined request
// parameters. Array-style keys (param[]) are accepted as well.
func (*Adapter) ParseRequest(req *request.Context, _ classify.Result) (string, []any, *fault.Fault) {
	form := req.Form()
	name := form.Get("call")
	if name == "" {
		return "", nil, fault.MissingName()
	}
	params := form["param"]
	if len(params) == 0 {
		params = form["param[]"]
	}
	args := make([]any, 0, len(params))
	for _, p := range params {
		args = append(args, p)
	}
	return name, args, nil
}

// WriteResult writes the raw operation result as plain text.
func (*Adapter) WriteResult(w http.ResponseWriter, value any) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if value == nil {
		return nil
	}
	_, err := fmt.Fprint(w, stringify(value))
	return err
}

// WriteFault renders the shared JSON error envelope.
func (*Adapter) WriteFault(w http.ResponseWriter, f *fault.Fault) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(f.Status)
	return json.NewEncoder(w).Encode(f.Body())
}

// stringify renders scalars verbatim and composites as JSON so the
// plain-text surface stays machine-readable.
func stringify(value any) string {
	switch value.(type) {
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	}
}
