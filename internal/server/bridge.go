package server

import (
	"github.com/omnibridge/omnibridge/internal/clientgen"
	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/dispatch"
	"github.com/omnibridge/omnibridge/internal/docgen"
	"github.com/omnibridge/omnibridge/internal/protocols/soap"
	"github.com/omnibridge/omnibridge/internal/wsdl"
)

// NewBridge assembles the full dispatcher for a contract: the standard
// adapter set plus the WSDL, descriptor, PDF and client-download
// surfaces. A nil pdf falls back to the 501 placeholder.
func NewBridge(c *contract.Contract, toolkit soap.Toolkit, pdf docgen.PDFRenderer) *dispatch.Dispatcher {
	if pdf == nil {
		pdf = docgen.UnavailablePDF{}
	}
	renderer := docgen.NewRenderer()
	return dispatch.New(c, toolkit, dispatch.Collaborators{
		WSDL:       wsdl.Serve,
		Descriptor: renderer.Serve,
		PDF:        pdf.ServePDF,
		Client:     clientgen.Serve,
	})
}
