// Package classify decides which wire protocol an inbound request uses.
//
// Classification is an ordered decision list evaluated top to bottom;
// the first matching arm wins. Later arms are reachable fallbacks, not
// alternatives, so the order is part of the contract and must not be
// rearranged. Detection looks only at the query string, the path and
// the (buffered) body — never at headers.
package classify

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/omnibridge/omnibridge/internal/request"
)

// Tag names the protocol or metadata surface a request selects.
type Tag string

const (
	// TagWSDL serves the service WSDL document.
	TagWSDL Tag = "wsdl"
	// TagDescriptor serves the HTML service description.
	TagDescriptor Tag = "descriptor"
	// TagPDF delegates to the PDF documentation renderer.
	TagPDF Tag = "pdf"
	// TagClientDownload serves a generated protocol client stub.
	TagClientDownload Tag = "client_download"
	// TagSOAP dispatches a native SOAP envelope.
	TagSOAP Tag = "soap"
	// TagJSON dispatches the JSON envelope protocol.
	TagJSON Tag = "json"
	// TagXMLRPC dispatches an XML-RPC method call.
	TagXMLRPC Tag = "xmlrpc"
	// TagHTTPForm dispatches the form-encoded HTTP protocol.
	TagHTTPForm Tag = "httpform"
	// TagREST dispatches a path-based REST call.
	TagREST Tag = "rest"
)

// ClientKind identifies one downloadable client stub.
type ClientKind string

const (
	ClientPHPSoap   ClientKind = "phpsoapclient"
	ClientPHPJSON   ClientKind = "phpjsonclient"
	ClientJSJSON    ClientKind = "jsjsonclient"
	ClientPHPXMLRPC ClientKind = "phprpcclient"
	ClientPHPHTTP   ClientKind = "phphttpclient"
	ClientPHPREST   ClientKind = "phprestclient"
)

// clientTokens lists download tokens in detection order.
var clientTokens = []ClientKind{
	ClientPHPSoap,
	ClientPHPJSON,
	ClientJSJSON,
	ClientPHPXMLRPC,
	ClientPHPHTTP,
	ClientPHPREST,
}

// Result carries the selected tag plus the tag-specific payload.
type Result struct {
	// Tag is the selected protocol or surface.
	Tag Tag
	// Client identifies the stub for TagClientDownload.
	Client ClientKind
	// Minified selects the minified stub variant.
	Minified bool
	// PathInfo is the path remainder for TagREST, slashes trimmed.
	PathInfo string
}

// Classify inspects one request and selects its protocol.
func Classify(req *request.Context, serviceName string) Result {
	lowerQuery := strings.ToLower(req.RawQuery())

	// 1. WSDL wins over everything, even when "pdf" also appears.
	if strings.Contains(lowerQuery, "wsdl") {
		return Result{Tag: TagWSDL}
	}

	// 2. PDF documentation.
	if strings.Contains(lowerQuery, "pdf") {
		return Result{Tag: TagPDF}
	}

	// 3. Client stub downloads. The "min" marker is case-sensitive and
	// only meaningful for the JS client.
	for _, token := range clientTokens {
		if !strings.Contains(lowerQuery, string(token)) {
			continue
		}
		minified := token == ClientJSJSON && strings.Contains(req.RawQuery(), "min")
		return Result{Tag: TagClientDownload, Client: token, Minified: minified}
	}

	// 4. A path remainder past the service name means REST.
	if pathInfo, ok := restPathInfo(req.Path(), serviceName); ok {
		return Result{Tag: TagREST, PathInfo: pathInfo}
	}

	// 5. Body sniffing. The body stays buffered; peeking here never
	// consumes it for the adapter that runs next.
	if req.HasBody() {
		if req.HasField("json") {
			return Result{Tag: TagJSON}
		}
		if isXMLRPCBody(req) {
			return Result{Tag: TagXMLRPC}
		}
		if req.HasField("call") {
			return Result{Tag: TagHTTPForm}
		}
		return Result{Tag: TagSOAP}
	}

	// 6. Nothing to go on: show the service description.
	if req.RawQuery() == "" {
		return Result{Tag: TagDescriptor}
	}

	// 7. Unrecognized query, no body: assume SOAP.
	return Result{Tag: TagSOAP}
}

// restPathInfo strips a leading /<serviceName> segment and reports
// whether a non-trivial remainder is left.
func restPathInfo(path, serviceName string) (string, bool) {
	remainder := path
	if serviceName != "" {
		prefix := "/" + serviceName
		if remainder == prefix {
			return "", false
		}
		if strings.HasPrefix(remainder, prefix+"/") {
			remainder = strings.TrimPrefix(remainder, prefix)
		}
	}
	trimmed := strings.Trim(remainder, "/")
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// isXMLRPCBody reports whether the whole body parses as XML with a
// methodCall root. Malformed XML is silently not XML-RPC so
// classification can fall through to the remaining arms.
func isXMLRPCBody(req *request.Context) bool {
	decoder := xml.NewDecoder(req.BodyReader())
	root := ""
	for {
		token, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) && root != "" {
				return root == "methodCall"
			}
			return false
		}
		if start, ok := token.(xml.StartElement); ok && root == "" {
			root = start.Name.Local
		}
	}
}
