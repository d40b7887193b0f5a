// Package xmlrpc implements the standard XML-RPC method-call protocol.
package xmlrpc

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/omnibridge/omnibridge/internal/classify"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/request"
)

// Adapter translates XML-RPC method calls and responses.
type Adapter struct{}

// New returns the XML-RPC adapter.
func New() *Adapter { return &Adapter{} }

// Name returns the adapter identifier.
func (*Adapter) Name() string { return "xmlrpc" }

type methodCall struct {
	XMLName    xml.Name   `xml:"methodCall"`
	MethodName string     `xml:"methodName"`
	Params     []xmlValue `xml:"params>param>value"`
}

// xmlValue mirrors the XML-RPC <value> grammar. Exactly one typed child
// is present; bare character data counts as a string.
type xmlValue struct {
	Int      *string    `xml:"int"`
	I4       *string    `xml:"i4"`
	Boolean  *string    `xml:"boolean"`
	Double   *string    `xml:"double"`
	String   *string    `xml:"string"`
	DateTime *string    `xml:"dateTime.iso8601"`
	Base64   *string    `xml:"base64"`
	Array    *xmlArray  `xml:"array"`
	Struct   *xmlStruct `xml:"struct"`
	Raw      string     `xml:",chardata"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

// ParseRequest decodes the methodCall envelope from the buffered body.
func (*Adapter) ParseRequest(req *request.Context, _ classify.Result) (string, []any, *fault.Fault) {
	var call methodCall
	if err := xml.NewDecoder(req.BodyReader()).Decode(&call); err != nil {
		return "", nil, fault.Malformed(fmt.Sprintf("invalid XML-RPC request: %v", err))
	}
	name := strings.TrimSpace(call.MethodName)
	if name == "" {
		return "", nil, fault.MissingName()
	}
	args := make([]any, 0, len(call.Params))
	for _, value := range call.Params {
		args = append(args, value.decode())
	}
	return name, args, nil
}

// decode converts an xmlValue to its Go representation.
func (v xmlValue) decode() any {
	switch {
	case v.Int != nil:
		return parseInt(*v.Int)
	case v.I4 != nil:
		return parseInt(*v.I4)
	case v.Boolean != nil:
		return strings.TrimSpace(*v.Boolean) == "1" || strings.EqualFold(strings.TrimSpace(*v.Boolean), "true")
	case v.Double != nil:
		return parseFloat(*v.Double)
	case v.String != nil:
		return *v.String
	case v.DateTime != nil:
		return strings.TrimSpace(*v.DateTime)
	case v.Base64 != nil:
		return strings.TrimSpace(*v.Base64)
	case v.Array != nil:
		items := make([]any, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			items = append(items, item.decode())
		}
		return items
	case v.Struct != nil:
		object := make(map[string]any, len(v.Struct.Members))
		for _, member := range v.Struct.Members {
			object[member.Name] = member.Value.decode()
		}
		return object
	default:
		return strings.TrimSpace(v.Raw)
	}
}

func parseInt(text string) any {
	var n int64
	if _, err := fmt.Sscanf(strings.TrimSpace(text), "%d", &n); err != nil {
		return strings.TrimSpace(text)
	}
	return n
}

func parseFloat(text string) any {
	var f float64
	if _, err := fmt.Sscanf(strings.TrimSpace(text), "%g", &f); err != nil {
		return strings.TrimSpace(text)
	}
	return f
}

// WriteResult writes the standard methodResponse envelope.
func (*Adapter) WriteResult(w http.ResponseWriter, value any) error {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<methodResponse><params><param>")
	encodeValue(&b, value)
	b.WriteString("</param></params></methodResponse>")

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := fmt.Fprint(w, b.String())
	return err
}

// WriteFault writes the standard XML-RPC fault struct; faultCode carries
// the HTTP status, which the response status mirrors.
func (*Adapter) WriteFault(w http.ResponseWriter, f *fault.Fault) error {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString("<methodResponse><fault><value><struct>")
	b.WriteString("<member><name>faultCode</name><value><int>")
	fmt.Fprintf(&b, "%d", f.Status)
	b.WriteString("</int></value></member>")
	b.WriteString("<member><name>faultString</name><value><string>")
	xmlEscape(&b, f.Message)
	b.WriteString("</string></value></member>")
	b.WriteString("</struct></value></fault></methodResponse>")

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(f.Status)
	_, err := fmt.Fprint(w, b.String())
	return err
}

// encodeValue writes one <value> element for a Go value. Composite
// types outside the basic map/slice shapes go through a JSON round-trip
// so arbitrary structs serialize as XML-RPC structs.
func encodeValue(b *strings.Builder, value any) {
	b.WriteString("<value>")
	writeValueBody(b, value)
	b.WriteString("</value>")
}

func writeValueBody(b *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		b.WriteString("<string></string>")
	case bool:
		if v {
			b.WriteString("<boolean>1</boolean>")
		} else {
			b.WriteString("<boolean>0</boolean>")
		}
	case string:
		b.WriteString("<string>")
		xmlEscape(b, v)
		b.WriteString("</string>")
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		fmt.Fprintf(b, "<int>%d</int>", v)
	case float32, float64:
		fmt.Fprintf(b, "<double>%v</double>", v)
	case []any:
		b.WriteString("<array><data>")
		for _, item := range v {
			encodeValue(b, item)
		}
		b.WriteString("</data></array>")
	case map[string]any:
		b.WriteString("<struct>")
		for name, member := range v {
			b.WriteString("<member><name>")
			xmlEscape(b, name)
			b.WriteString("</name>")
			encodeValue(b, member)
			b.WriteString("</member>")
		}
		b.WriteString("</struct>")
	default:
		writeValueBody(b, normalize(value))
	}
}

// normalize reduces arbitrary Go values to the any/[]any/map tree the
// direct encoder handles.
func normalize(value any) any {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	var tree any
	if err := json.Unmarshal(encoded, &tree); err != nil {
		return fmt.Sprint(value)
	}
	return tree
}

func xmlEscape(b *strings.Builder, text string) {
	_ = xml.EscapeText(b, []byte(text))
}
