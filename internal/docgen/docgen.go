// Package docgen renders documentation surfaces from a service
// contract: the HTML descriptor page and the PDF hand-off.
package docgen

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/docgen/templates"
	"github.com/omnibridge/omnibridge/internal/fault"
)

// clientDownloads lists the descriptor page download links in display
// order: token query plus label.
var clientDownloads = []templates.ClientLink{
	{Label: "PHP SOAP client", URL: "?phpsoapclient"},
	{Label: "PHP JSON client", URL: "?phpjsonclient"},
	{Label: "JavaScript JSON client", URL: "?jsjsonclient"},
	{Label: "JavaScript JSON client (minified)", URL: "?jsjsonclient&min"},
	{Label: "PHP XML-RPC client", URL: "?phprpcclient"},
	{Label: "PHP HTTP client", URL: "?phphttpclient"},
	{Label: "PHP REST client", URL: "?phprestclient"},
}

// Renderer serves the HTML descriptor for a contract.
type Renderer struct {
	loc templates.Localizer
}

// NewRenderer builds a descriptor renderer with the default localizer.
func NewRenderer() *Renderer {
	return &Renderer{loc: templates.DefaultLocalizer()}
}

// Serve writes the descriptor page for the contract. The page renders
// into a buffer first so a template failure still gets a fault status
// instead of dying after the 200 header went out.
func (r *Renderer) Serve(w http.ResponseWriter, c *contract.Contract) {
	view := BuildView(c)
	var buf bytes.Buffer
	if err := templates.ServicePage(view, r.loc).Render(context.Background(), &buf); err != nil {
		fault.Write(w, fault.From(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// BuildView formats a contract into descriptor view data.
func BuildView(c *contract.Contract) templates.ServiceView {
	view := templates.ServiceView{
		Name:        c.ServiceName,
		Endpoint:    c.Endpoint,
		Description: c.Description,
		Clients:     clientDownloads,
	}
	for _, op := range c.Operations {
		view.Operations = append(view.Operations, buildOperationView(op))
	}
	return view
}

func buildOperationView(op *contract.Operation) templates.OperationView {
	row := templates.OperationView{
		Name:        op.Name,
		Description: op.Description,
		Signature:   Signature(op),
	}
	for _, param := range op.Params {
		row.Params = append(row.Params, templates.ParamView{
			Name:        param.Name,
			TypeLabel:   param.TypeLabel,
			Description: param.Description,
		})
	}
	if op.Return != nil {
		row.ReturnType = op.Return.TypeLabel
		row.ReturnDescription = op.Return.Description
	}
	return row
}

// Signature renders an operation as "name(type a, type b) : type".
func Signature(op *contract.Operation) string {
	parts := make([]string, 0, len(op.Params))
	for _, param := range op.Params {
		parts = append(parts, fmt.Sprintf("%s %s", param.TypeLabel, param.Name))
	}
	signature := fmt.Sprintf("%s(%s)", op.Name, strings.Join(parts, ", "))
	if op.Return != nil {
		signature += " : " + op.Return.TypeLabel
	}
	return signature
}

// PDFRenderer produces the PDF documentation surface for a contract.
// Rendering itself is a collaborator concern; the core only routes the
// pdf tag here.
type PDFRenderer interface {
	ServePDF(w http.ResponseWriter, c *contract.Contract)
}

// UnavailablePDF is the default PDF surface: it reports the missing
// renderer instead of rendering.
type UnavailablePDF struct{}

// ServePDF responds that no PDF renderer is configured.
func (UnavailablePDF) ServePDF(w http.ResponseWriter, c *contract.Contract) {
	fault.Write(w, &fault.Fault{
		Status:  http.StatusNotImplemented,
		Message: fmt.Sprintf("no PDF renderer is configured for service %s", c.ServiceName),
	})
}
