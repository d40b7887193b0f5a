package classify

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omnibridge/omnibridge/internal/request"
)

func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		path     string
		body     string
		want     Tag
		wantPath string
	}{
		{name: "wsdl", query: "wsdl", path: "/Calc", want: TagWSDL},
		{name: "wsdl uppercase", query: "WSDL", path: "/Calc", want: TagWSDL},
		{name: "wsdl beats pdf", query: "pdf&wsdl", path: "/Calc", want: TagWSDL},
		{name: "wsdl beats rest path", query: "wsdl", path: "/Calc/add/5/3", want: TagWSDL},
		{name: "pdf", query: "pdf", path: "/Calc", want: TagPDF},
		{name: "rest path", query: "", path: "/Calc/add/5/3/", want: TagREST, wantPath: "add/5/3"},
		{name: "descriptor on bare request", query: "", path: "/Calc", want: TagDescriptor},
		{name: "descriptor on empty path", query: "", path: "", want: TagDescriptor},
		{name: "soap fallback on odd query", query: "unexpected=1", path: "/Calc", want: TagSOAP},
		{name: "soap fallback on opaque body", path: "/Calc", body: "<soap:Envelope/>", want: TagSOAP},
		{name: "xmlrpc body", path: "/Calc", body: "<?xml version=\"1.0\"?><methodCall><methodName>add</methodName></methodCall>", want: TagXMLRPC},
		{name: "malformed xml is not xmlrpc", path: "/Calc", body: "<methodCall><unclosed", want: TagSOAP},
		{name: "plain text body falls back to soap", path: "/Calc", body: "hello there", want: TagSOAP},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := request.New("POST", tc.path, tc.query, []byte(tc.body))
			got := Classify(req, "Calc")
			if got.Tag != tc.want {
				t.Fatalf("tag = %s, want %s", got.Tag, tc.want)
			}
			if tc.wantPath != "" && got.PathInfo != tc.wantPath {
				t.Fatalf("path info = %q, want %q", got.PathInfo, tc.wantPath)
			}
		})
	}
}

func TestClassifyClientDownloads(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantClient   ClientKind
		wantMinified bool
	}{
		{name: "php soap", query: "phpsoapclient", wantClient: ClientPHPSoap},
		{name: "php json", query: "phpjsonclient", wantClient: ClientPHPJSON},
		{name: "js json", query: "jsjsonclient", wantClient: ClientJSJSON},
		{name: "js json minified", query: "jsjsonclient&min", wantClient: ClientJSJSON, wantMinified: true},
		{name: "js json MIN is case sensitive", query: "jsjsonclient&MIN", wantClient: ClientJSJSON, wantMinified: false},
		{name: "php xmlrpc", query: "phprpcclient", wantClient: ClientPHPXMLRPC},
		{name: "php http", query: "phphttpclient", wantClient: ClientPHPHTTP},
		{name: "php rest", query: "phprestclient", wantClient: ClientPHPREST},
		{name: "token is case insensitive", query: "PHPSoapClient", wantClient: ClientPHPSoap},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := request.New("GET", "/Calc", tc.query, nil)
			got := Classify(req, "Calc")
			if got.Tag != TagClientDownload {
				t.Fatalf("tag = %s, want client download", got.Tag)
			}
			if got.Client != tc.wantClient {
				t.Fatalf("client = %s, want %s", got.Client, tc.wantClient)
			}
			if got.Minified != tc.wantMinified {
				t.Fatalf("minified = %v, want %v", got.Minified, tc.wantMinified)
			}
		})
	}
}

func TestClassifyJSONAndFormFields(t *testing.T) {
	// The json/call sniffing keys come from the combined POST/GET
	// parameters, so a form-encoded body must be inspected through the
	// request context, not re-read.
	r := httptest.NewRequest("POST", "/Calc", strings.NewReader(`json={"call":"add","param":[5,3]}`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, err := request.FromHTTP(r)
	if err != nil {
		t.Fatalf("from http: %v", err)
	}
	if got := Classify(req, "Calc"); got.Tag != TagJSON {
		t.Fatalf("tag = %s, want json", got.Tag)
	}

	r = httptest.NewRequest("POST", "/Calc", strings.NewReader("call=add&param=5&param=3"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, err = request.FromHTTP(r)
	if err != nil {
		t.Fatalf("from http: %v", err)
	}
	if got := Classify(req, "Calc"); got.Tag != TagHTTPForm {
		t.Fatalf("tag = %s, want httpform", got.Tag)
	}

	// json in the query string with any body still selects JSON.
	r = httptest.NewRequest("POST", `/Calc?json={"call":"add","param":[]}`, strings.NewReader("ignored"))
	req, err = request.FromHTTP(r)
	if err != nil {
		t.Fatalf("from http: %v", err)
	}
	if got := Classify(req, "Calc"); got.Tag != TagJSON {
		t.Fatalf("tag = %s, want json", got.Tag)
	}
}

func TestClassifyDoesNotConsumeBody(t *testing.T) {
	body := `<?xml version="1.0"?><methodCall><methodName>add</methodName></methodCall>`
	req := request.New("POST", "/Calc", "", []byte(body))

	if got := Classify(req, "Calc"); got.Tag != TagXMLRPC {
		t.Fatalf("tag = %s, want xmlrpc", got.Tag)
	}
	if string(req.Body()) != body {
		t.Fatal("classification must leave the body intact")
	}
	// A second classification sees the same bytes.
	if got := Classify(req, "Calc"); got.Tag != TagXMLRPC {
		t.Fatal("second classification diverged")
	}
}
