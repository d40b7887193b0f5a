// Package wsdl renders a WSDL 1.1 document for a service contract.
//
// The output is rpc/encoded SOAP 1.1: one message pair, portType
// operation and binding operation per contract operation, with the
// contract's endpoint as the service address.
package wsdl

import (
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/fault"
)

// xsdType maps contract type labels to XML Schema types.
func xsdType(label string) string {
	switch label {
	case "int":
		return "xsd:int"
	case "float":
		return "xsd:double"
	case "boolean":
		return "xsd:boolean"
	case "string":
		return "xsd:string"
	default:
		return "xsd:anyType"
	}
}

var wsdlTemplate = template.Must(template.New("wsdl").Funcs(template.FuncMap{
	"xsd": xsdType,
}).Parse(`<?xml version="1.0" encoding="utf-8"?>
<definitions name="{{.ServiceName}}"
    targetNamespace="urn:{{.ServiceName}}"
    xmlns:tns="urn:{{.ServiceName}}"
    xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
    xmlns:soapenc="http://schemas.xmlsoap.org/soap/encoding/"
    xmlns="http://schemas.xmlsoap.org/wsdl/">
{{- range .Operations}}
  <message name="{{.Name}}Request">
{{- range .Params}}
    <part name="{{.Name}}" type="{{xsd .TypeLabel}}"/>
{{- end}}
  </message>
  <message name="{{.Name}}Response">
{{- if .Return}}
    <part name="return" type="{{xsd .Return.TypeLabel}}"/>
{{- end}}
  </message>
{{- end}}
  <portType name="{{.ServiceName}}PortType">
{{- range .Operations}}
    <operation name="{{.Name}}">
{{- if .Description}}
      <documentation>{{.Description}}</documentation>
{{- end}}
      <input message="tns:{{.Name}}Request"/>
      <output message="tns:{{.Name}}Response"/>
    </operation>
{{- end}}
  </portType>
  <binding name="{{.ServiceName}}Binding" type="tns:{{.ServiceName}}PortType">
    <soap:binding style="rpc" transport="http://schemas.xmlsoap.org/soap/http"/>
{{- range .Operations}}
    <operation name="{{.Name}}">
      <soap:operation soapAction="urn:{{$.ServiceName}}#{{.Name}}"/>
      <input>
        <soap:body use="encoded" namespace="urn:{{$.ServiceName}}" encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"/>
      </input>
      <output>
        <soap:body use="encoded" namespace="urn:{{$.ServiceName}}" encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"/>
      </output>
    </operation>
{{- end}}
  </binding>
  <service name="{{.ServiceName}}">
    <port name="{{.ServiceName}}Port" binding="tns:{{.ServiceName}}Binding">
      <soap:address location="{{.Endpoint}}"/>
    </port>
  </service>
</definitions>
`))

// Render produces the WSDL document for the contract.
func Render(c *contract.Contract) (string, error) {
	if c == nil {
		return "", fmt.Errorf("contract is required")
	}
	var b strings.Builder
	if err := wsdlTemplate.Execute(&b, c); err != nil {
		return "", fmt.Errorf("render wsdl: %w", err)
	}
	return b.String(), nil
}

// Serve writes the WSDL document as an HTTP response.
func Serve(w http.ResponseWriter, c *contract.Contract) {
	doc, err := Render(c)
	if err != nil {
		fault.Write(w, fault.From(err))
		return
	}
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, doc)
}
