// Package clientgen produces downloadable client stubs for each wire
// protocol from a service contract. Generation is deterministic
// templating; the only transformation step is JS minification.
package clientgen

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/omnibridge/omnibridge/internal/classify"
	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/fault"
)

// File is one generated client download.
type File struct {
	// Name is the download filename.
	Name string
	// ContentType is the response content type.
	ContentType string
	// Body is the generated source text.
	Body []byte
}

// stub describes one client kind: protocol label, file extension,
// content type and source template.
type stub struct {
	protocol    string
	extension   string
	contentType string
	template    *template.Template
}

var stubs = map[classify.ClientKind]stub{
	classify.ClientPHPSoap:   {protocol: "SOAP", extension: "php", contentType: "text/x-php", template: phpSoapTemplate},
	classify.ClientPHPJSON:   {protocol: "JSON", extension: "php", contentType: "text/x-php", template: phpJSONTemplate},
	classify.ClientJSJSON:    {protocol: "JSON", extension: "js", contentType: "application/javascript", template: jsJSONTemplate},
	classify.ClientPHPXMLRPC: {protocol: "XMLRPC", extension: "php", contentType: "text/x-php", template: phpXMLRPCTemplate},
	classify.ClientPHPHTTP:   {protocol: "HTTP", extension: "php", contentType: "text/x-php", template: phpHTTPTemplate},
	classify.ClientPHPREST:   {protocol: "REST", extension: "php", contentType: "text/x-php", template: phpRESTTemplate},
}

// templateData is the input every stub template receives.
type templateData struct {
	ServiceName string
	Endpoint    string
	Operations  []operationData
}

type operationData struct {
	Name   string
	Params []string
}

// Generate renders the client stub for the requested kind. The
// minified variant only exists for the JS client.
func Generate(c *contract.Contract, kind classify.ClientKind, minified bool) (File, error) {
	s, ok := stubs[kind]
	if !ok {
		return File{}, fmt.Errorf("unknown client kind %q", kind)
	}
	if minified && kind != classify.ClientJSJSON {
		return File{}, fmt.Errorf("client kind %q has no minified variant", kind)
	}

	data := templateData{ServiceName: c.ServiceName, Endpoint: c.Endpoint}
	for _, op := range c.Operations {
		params := make([]string, 0, len(op.Params))
		for _, param := range op.Params {
			params = append(params, param.Name)
		}
		data.Operations = append(data.Operations, operationData{Name: op.Name, Params: params})
	}

	var body bytes.Buffer
	if err := s.template.Execute(&body, data); err != nil {
		return File{}, fmt.Errorf("render %s client: %w", s.protocol, err)
	}

	name := fmt.Sprintf("%s_%s_Client.%s", c.ServiceName, s.protocol, s.extension)
	source := body.Bytes()
	if minified {
		minled, err := MinifyJS(source)
		if err != nil {
			return File{}, fmt.Errorf("minify %s client: %w", s.protocol, err)
		}
		source = minled
		name = fmt.Sprintf("%s_%s_Client.min.%s", c.ServiceName, s.protocol, s.extension)
	}

	return File{Name: name, ContentType: s.contentType, Body: source}, nil
}

// Serve writes a generated client stub as a file download.
func Serve(w http.ResponseWriter, c *contract.Contract, kind classify.ClientKind, minified bool) {
	file, err := Generate(c, kind, minified)
	if err != nil {
		fault.Write(w, &fault.Fault{Status: http.StatusNotFound, Message: err.Error()})
		return
	}
	w.Header().Set("Content-Type", file.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

// phpArgs renders a PHP parameter list ($a, $b).
func phpArgs(params []string) string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, "$"+p)
	}
	return strings.Join(out, ", ")
}

// jsArgs renders a JS parameter list (a, b).
func jsArgs(params []string) string {
	return strings.Join(params, ", ")
}

// restPath renders the PHP path-building expression for REST calls.
func restPath(params []string) string {
	if len(params) == 0 {
		return "''"
	}
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, fmt.Sprintf("'/' . rawurlencode($%s)", p))
	}
	return strings.Join(out, " . ")
}

var templateFuncs = template.FuncMap{
	"phpArgs":  phpArgs,
	"jsArgs":   jsArgs,
	"restPath": restPath,
}
