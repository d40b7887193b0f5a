// Package server hosts the single bridge endpoint over HTTP. Every
// protocol the dispatcher understands is served from the same address.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/omnibridge/omnibridge/internal/dispatch"
	"github.com/omnibridge/omnibridge/internal/fault"
	"github.com/omnibridge/omnibridge/internal/request"
)

const tracerName = "github.com/omnibridge/omnibridge/internal/server"

// Config defines the inputs for the bridge server.
type Config struct {
	HTTPAddr string
}

// Server hosts the bridge HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer builds a configured bridge server around the dispatcher.
func NewServer(config Config, dispatcher *dispatch.Dispatcher) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(dispatcher),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
	}, nil
}

// NewHandler wraps the dispatcher in the standard middleware chain.
// When the contract endpoint carries a base path, that prefix is
// stripped before classification so path-based dispatch sees only the
// remainder.
func NewHandler(dispatcher *dispatch.Dispatcher) http.Handler {
	handler := Chain(
		dispatchHandler(dispatcher),
		RequestID(),
		RecoverPanic(),
	)
	if base := endpointBasePath(dispatcher.Contract().Endpoint); base != "" {
		handler = stripBasePath(base, handler)
	}
	return handler
}

// endpointBasePath extracts the mount path from the endpoint URL.
func endpointBasePath(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return strings.TrimRight(parsed.Path, "/")
}

// stripBasePath removes the mount prefix from matching request paths.
// Requests outside the mount pass through untouched.
func stripBasePath(base string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == base || strings.HasPrefix(r.URL.Path, base+"/") {
			stripped := r.Clone(r.Context())
			clonedURL := *r.URL
			clonedURL.Path = strings.TrimPrefix(r.URL.Path, base)
			stripped.URL = &clonedURL
			next.ServeHTTP(w, stripped)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// dispatchHandler runs one classify-and-dispatch pass per request and
// records the outcome on a span and the request log line.
func dispatchHandler(dispatcher *dispatch.Dispatcher) http.Handler {
	tracer := otel.Tracer(tracerName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := request.FromHTTP(r)
		if err != nil {
			fault.Write(w, fault.Malformed(err.Error()))
			return
		}

		ctx, span := tracer.Start(r.Context(), "bridge.dispatch", trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		start := time.Now()
		outcome := dispatcher.Dispatch(ctx, w, req)
		elapsed := time.Since(start)

		span.SetAttributes(
			attribute.String("bridge.tag", string(outcome.Tag)),
			attribute.String("bridge.operation", outcome.Operation),
		)
		status := "ok"
		if outcome.Fault != nil {
			status = fmt.Sprintf("fault %d", outcome.Fault.Status)
			span.SetStatus(otelcodes.Error, outcome.Fault.Message)
		}
		log.Printf(
			"dispatch tag=%s operation=%s status=%s duration=%s request_id=%s",
			outcome.Tag,
			outcome.Operation,
			status,
			elapsed.Round(time.Microsecond),
			r.Header.Get("X-Request-ID"),
		)
	})
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("bridge server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("bridge listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
