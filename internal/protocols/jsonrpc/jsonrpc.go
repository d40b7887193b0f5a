// Package jsonrpc implements the JSON envelope protocol: one "json"
// form field carrying {"call": name, "param": [...]}.
package jsonrpc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/omnibridge/omnibridge/internal/classify"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/request"
)

// Adapter translates the JSON envelope protocol.
type Adapter struct{}

// New returns the JSON adapter.
func New() *Adapter { return &Adapter{} }

// Name returns the adapter identifier.
func (*Adapter) Name() string { return "json" }

type envelope struct {
	Call  string `json:"call"`
	Param []any  `json:"param"`
}

// ParseRequest extracts the operation name and positional arguments
// from the json field of the combined request parameters.
func (*Adapter) ParseRequest(req *request.Context, _ classify.Result) (string, []any, *fault.Fault) {
	raw := req.Form().Get("json")
	if raw == "" {
		return "", nil, fault.MissingName()
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", nil, fault.Malformed(fmt.Sprintf("invalid json envelope: %v", err))
	}
	if env.Call == "" {
		return "", nil, fault.MissingName()
	}
	return env.Call, env.Param, nil
}

// WriteResult wraps the operation result as {"result": value}.
func (*Adapter) WriteResult(w http.ResponseWriter, value any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(map[string]any{"result": value})
}

// WriteFault renders the shared JSON error envelope.
func (*Adapter) WriteFault(w http.ResponseWriter, f *fault.Fault) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(f.Status)
	return json.NewEncoder(w).Encode(f.Body())
}
