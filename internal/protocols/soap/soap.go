// Package soap is the delegation boundary for native SOAP envelopes.
//
// The dispatcher never parses SOAP itself: it hands the buffered request
// plus the contract to a Toolkit. The built-in toolkit speaks enough
// SOAP 1.1 to bind document-style calls positionally; production setups
// can plug in a full external toolkit behind the same interface.
package soap

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/request"
)

// envelopeNS is the SOAP 1.1 envelope namespace.
const envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// Toolkit handles a native SOAP request end to end against a contract.
type Toolkit interface {
	ServeRequest(w http.ResponseWriter, req *request.Context, c *contract.Contract)
}

// BuiltinToolkit is the default envelope implementation.
type BuiltinToolkit struct{}

// NewToolkit returns the built-in SOAP toolkit.
func NewToolkit() *BuiltinToolkit { return &BuiltinToolkit{} }

type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    body     `xml:"Body"`
}

type body struct {
	Elements []element `xml:",any"`
}

// element is a generic XML element: the operation call and its
// positional argument children.
type element struct {
	XMLName  xml.Name
	Children []element `xml:",any"`
	Text     string    `xml:",chardata"`
}

// ServeRequest parses the envelope, invokes the named operation
// positionally and writes a SOAP response or fault.
func (t *BuiltinToolkit) ServeRequest(w http.ResponseWriter, req *request.Context, c *contract.Contract) {
	var env envelope
	if err := xml.NewDecoder(req.BodyReader()).Decode(&env); err != nil {
		t.writeFault(w, c, fault.Malformed(fmt.Sprintf("invalid SOAP envelope: %v", err)))
		return
	}
	if len(env.Body.Elements) == 0 {
		t.writeFault(w, c, fault.MissingName())
		return
	}

	call := env.Body.Elements[0]
	name := call.XMLName.Local
	args := make([]any, 0, len(call.Children))
	for _, child := range call.Children {
		args = append(args, strings.TrimSpace(child.Text))
	}

	result, f := c.Invoke(name, args)
	if f != nil {
		t.writeFault(w, c, f)
		return
	}
	t.writeResult(w, c, name, result)
}

func (t *BuiltinToolkit) writeResult(w http.ResponseWriter, c *contract.Contract, operation string, value any) {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<SOAP-ENV:Envelope xmlns:SOAP-ENV=%q><SOAP-ENV:Body>`, envelopeNS)
	fmt.Fprintf(&b, `<%sResponse xmlns="urn:%s"><return>`, operation, c.ServiceName)
	escape(&b, renderValue(value))
	fmt.Fprintf(&b, `</return></%sResponse>`, operation)
	b.WriteString(`</SOAP-ENV:Body></SOAP-ENV:Envelope>`)

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, b.String())
}

// writeFault maps 4xx faults to the SOAP Client fault code and the rest
// to Server, keeping the fault's HTTP status on the response.
func (t *BuiltinToolkit) writeFault(w http.ResponseWriter, _ *contract.Contract, f *fault.Fault) {
	code := "SOAP-ENV:Server"
	if f.Status >= 400 && f.Status < 500 {
		code = "SOAP-ENV:Client"
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<SOAP-ENV:Envelope xmlns:SOAP-ENV=%q><SOAP-ENV:Body>`, envelopeNS)
	b.WriteString(`<SOAP-ENV:Fault><faultcode>`)
	b.WriteString(code)
	b.WriteString(`</faultcode><faultstring>`)
	escape(&b, f.Message)
	b.WriteString(`</faultstring></SOAP-ENV:Fault>`)
	b.WriteString(`</SOAP-ENV:Body></SOAP-ENV:Envelope>`)

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(f.Status)
	_, _ = fmt.Fprint(w, b.String())
}

func escape(b *strings.Builder, text string) {
	_ = xml.EscapeText(b, []byte(text))
}

// renderValue flattens scalars verbatim and composites as JSON text.
func renderValue(value any) string {
	switch value.(type) {
	case nil:
		return ""
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
