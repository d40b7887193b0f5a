package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/omnibridge/omnibridge/internal/contract"
	"github.com/omnibridge/omnibridge/internal/demo"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	c, err := contract.Build(&demo.Calculator{}, contract.WithEndpoint("http://bridge.test/api"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return NewHandler(NewBridge(c, nil, nil))
}

func TestHandlerServesJSONEnvelope(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("json", `{"call":"Add","param":[2,3]}`)
	req := httptest.NewRequest(http.MethodPost, "http://bridge.test/api", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Result float64 `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Result != 5 {
		t.Errorf("result = %v, want 5", body.Result)
	}
}

func TestHandlerServesRESTPath(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "http://bridge.test/api/Calculator/Subtract/10/4", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "6" {
		t.Errorf("body = %q, want 6", got)
	}
}

func TestHandlerServesWSDL(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "http://bridge.test/api?wsdl", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "definitions") || !strings.Contains(body, "Calculator") {
		t.Errorf("wsdl body missing definitions:\n%s", body)
	}
}

func TestHandlerServesDescriptorPage(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "http://bridge.test/api", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Calculator") {
		t.Error("descriptor page is missing the service name")
	}
}

func TestHandlerServesClientDownload(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "http://bridge.test/api?phpjsonclient", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "Calculator_JSON_Client.php") {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestHandlerServesSOAPCall(t *testing.T) {
	handler := newTestHandler(t)

	envelope := `<?xml version="1.0"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/">
  <SOAP-ENV:Body>
    <Add><a>4</a><b>5</b></Add>
  </SOAP-ENV:Body>
</SOAP-ENV:Envelope>`
	req := httptest.NewRequest(http.MethodPost, "http://bridge.test/api", strings.NewReader(envelope))
	req.Header.Set("Content-Type", "text/xml")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "<return>9</return>") {
		t.Errorf("soap body = %s", rec.Body.String())
	}
}

func TestHandlerReportsFaultEnvelope(t *testing.T) {
	handler := newTestHandler(t)

	form := url.Values{}
	form.Set("json", `{"call":"Divide","param":[1,0]}`)
	req := httptest.NewRequest(http.MethodPost, "http://bridge.test/api", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Success {
		t.Error("success = true, want false")
	}
	if want := "exception in operation Divide: division by zero"; body.Error != want {
		t.Errorf("error = %q, want %q", body.Error, want)
	}
}

func TestHandlerEchoesRequestID(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "http://bridge.test/api", nil)
	req.Header.Set("X-Request-ID", "trace-me")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "trace-me" {
		t.Errorf("X-Request-ID = %q, want trace-me", got)
	}
}

func TestNewServerValidatesInputs(t *testing.T) {
	c, err := contract.Build(&demo.Calculator{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dispatcher := NewBridge(c, nil, nil)

	if _, err := NewServer(Config{}, dispatcher); err == nil {
		t.Error("NewServer accepted an empty address")
	}
	if _, err := NewServer(Config{HTTPAddr: ":0"}, nil); err == nil {
		t.Error("NewServer accepted a nil dispatcher")
	}
	if _, err := NewServer(Config{HTTPAddr: ":0"}, dispatcher); err != nil {
		t.Errorf("NewServer: %v", err)
	}
}

func TestChainOrdersMiddleware(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		_, _ = io.WriteString(w, "ok")
	}), mark("first"), nil, mark("second"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRecoverPanicWritesFault(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RecoverPanic())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
