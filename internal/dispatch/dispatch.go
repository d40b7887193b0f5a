// Package dispatch orchestrates one request pass: classify, select the
// adapter, parse, look up, invoke, serialize.
//
// Classification, not trial and error, decides the protocol: once an
// adapter is selected the dispatcher never falls through to another one,
// and every failure is terminal, producing exactly one fault response in
// the selected protocol's envelope.
package dispatch

import (
	"context"
	"net/http"

	"github.com/omnibridge/omnibridge/internal/classify"
	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/protocols/httpform"
	"github.com/omnibridge/omnibridge/internal/protocols/jsonrpc"
	"github.com/omnibridge/omnibridge/internal/protocols/rest"
	"github.com/omnibridge/omnibridge/internal/protocols/soap"
	"github.com/omnibridge/omnibridge/internal/protocols/xmlrpc"
	"github.com/omnibridge/omnibridge/internal/request"
)

// Adapter translates between one wire protocol and the contract's
// (operation, positional arguments) / (result, fault) pairs.
type Adapter interface {
	Name() string
	ParseRequest(req *request.Context, cls classify.Result) (operation string, args []any, f *fault.Fault)
	WriteResult(w http.ResponseWriter, value any) error
	WriteFault(w http.ResponseWriter, f *fault.Fault) error
}

// Collaborators are the documentation and codegen surfaces the
// dispatcher delegates to without invoking any operation.
type Collaborators struct {
	// WSDL serves the service WSDL document.
	WSDL func(w http.ResponseWriter, c *contract.Contract)
	// Descriptor serves the HTML service description.
	Descriptor func(w http.ResponseWriter, c *contract.Contract)
	// PDF serves the PDF documentation surface.
	PDF func(w http.ResponseWriter, c *contract.Contract)
	// Client serves a generated client stub download.
	Client func(w http.ResponseWriter, c *contract.Contract, kind classify.ClientKind, minified bool)
}

// Outcome summarizes one dispatched request for logging and tracing.
type Outcome struct {
	// Tag is the classified protocol or surface.
	Tag classify.Tag
	// Operation is the invoked operation name, empty for bypass tags.
	Operation string
	// Fault is the terminal fault, nil on success.
	Fault *fault.Fault
}

// Dispatcher routes classified requests to adapters and collaborators.
type Dispatcher struct {
	contract *contract.Contract
	toolkit  soap.Toolkit
	adapters map[classify.Tag]Adapter
	collab   Collaborators
}

// New builds a dispatcher over the contract with the standard adapter
// set. Nil collaborator entries fall back to a plain 404.
func New(c *contract.Contract, toolkit soap.Toolkit, collab Collaborators) *Dispatcher {
	if toolkit == nil {
		toolkit = soap.NewToolkit()
	}
	return &Dispatcher{
		contract: c,
		toolkit:  toolkit,
		adapters: map[classify.Tag]Adapter{
			classify.TagJSON:     jsonrpc.New(),
			classify.TagREST:     rest.New(),
			classify.TagXMLRPC:   xmlrpc.New(),
			classify.TagHTTPForm: httpform.New(),
		},
		collab: collab,
	}
}

// Contract returns the dispatched contract.
func (d *Dispatcher) Contract() *contract.Contract { return d.contract }

// Dispatch runs one full pass for the request and writes the response.
func (d *Dispatcher) Dispatch(ctx context.Context, w http.ResponseWriter, req *request.Context) Outcome {
	cls := classify.Classify(req, d.contract.ServiceName)
	outcome := Outcome{Tag: cls.Tag}

	switch cls.Tag {
	case classify.TagWSDL:
		d.delegate(w, d.collab.WSDL)
		return outcome
	case classify.TagDescriptor:
		d.delegate(w, d.collab.Descriptor)
		return outcome
	case classify.TagPDF:
		d.delegate(w, d.collab.PDF)
		return outcome
	case classify.TagClientDownload:
		if d.collab.Client == nil {
			http.NotFound(w, nil)
			return outcome
		}
		d.collab.Client(w, d.contract, cls.Client, cls.Minified)
		return outcome
	case classify.TagSOAP:
		d.toolkit.ServeRequest(w, req, d.contract)
		return outcome
	}

	adapter := d.adapters[cls.Tag]

	operation, args, f := adapter.ParseRequest(req, cls)
	outcome.Operation = operation
	if f != nil {
		outcome.Fault = f
		_ = adapter.WriteFault(w, f)
		return outcome
	}

	result, f := d.contract.InvokeContext(ctx, operation, args)
	if f != nil {
		outcome.Fault = f
		_ = adapter.WriteFault(w, f)
		return outcome
	}

	_ = adapter.WriteResult(w, result)
	return outcome
}

func (d *Dispatcher) delegate(w http.ResponseWriter, serve func(http.ResponseWriter, *contract.Contract)) {
	if serve == nil {
		http.NotFound(w, nil)
		return
	}
	serve(w, d.contract)
}
