// Package rest implements the path-based REST protocol: the path
// remainder after the service name carries the operation and its
// arguments as URL-encoded segments.
package rest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/omnibridge/omnibridge/internal/classify"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/request"
)

// Adapter translates the path REST protocol.
type Adapter struct{}

// New returns the REST adapter.
func New() *Adapter { return &Adapter{} }

// Name returns the adapter identifier.
func (*Adapter) Name() string { return "rest" }

// ParseRequest splits the classifier's path-info into the operation
// name followed by positional arguments, URL-decoding each segment.
func (*Adapter) ParseRequest(_ *request.Context, cls classify.Result) (string, []any, *fault.Fault) {
	pathInfo := strings.Trim(cls.PathInfo, "/")
	if pathInfo == "" {
		return "", nil, fault.MissingName()
	}
	segments := strings.Split(pathInfo, "/")
	name, err := url.PathUnescape(segments[0])
	if err != nil || name == "" {
		return "", nil, fault.MissingName()
	}
	args := make([]any, 0, len(segments)-1)
	for _, segment := range segments[1:] {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			decoded = segment
		}
		args = append(args, decoded)
	}
	return name, args, nil
}

// WriteResult writes the raw operation result as JSON.
func (*Adapter) WriteResult(w http.ResponseWriter, value any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(value)
}

// WriteFault renders the shared JSON error envelope.
func (*Adapter) WriteFault(w http.ResponseWriter, f *fault.Fault) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(f.Status)
	return json.NewEncoder(w).Encode(f.Body())
}
