package contract

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

type calc struct {
	// scratch exists to prove per-invocation receiver isolation.
	scratch int
}

func (c *calc) Add(a, b int) int { return a + b }

func (c *calc) Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}

func (c *calc) Echo(message string) string { return message }

func (c *calc) Scribble(n int) int {
	c.scratch += n
	return c.scratch
}

func (c *calc) Panics() string { panic("unreachable state") }

func (c *calc) Level(v uint8) uint8 { return v }

func (c *calc) Count(n uint) uint { return n }

func (c *calc) DescribeService() ServiceDoc {
	return ServiceDoc{
		Description: "Basic arithmetic over the wire.",
		Operations: map[string]OperationDoc{
			"Add": {
				Description: "Adds two integers.",
				Params: []ParamDoc{
					{Name: "a", Description: "first addend"},
					{Name: "b", Description: "second addend"},
				},
				Return: &Return{Description: "sum of a and b"},
			},
		},
	}
}

type embedded struct{}

func (embedded) Inherited() string { return "inherited" }

type wrapper struct {
	embedded
}

func (wrapper) Own() string { return "own" }

type shadower struct {
	embedded
}

func (shadower) Inherited() string { return "shadowed" }

type empty struct{}

func TestBuildCollectsDeclaredOperations(t *testing.T) {
	c, err := Build(&calc{}, WithEndpoint("http://localhost:8080/Calc/"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if c.ServiceName != "calc" {
		t.Fatalf("service name = %q", c.ServiceName)
	}
	if c.Endpoint != "http://localhost:8080/Calc" {
		t.Fatalf("endpoint = %q, want trailing slash stripped", c.Endpoint)
	}
	if len(c.Operations) != 7 {
		t.Fatalf("operations = %d, want 7", len(c.Operations))
	}

	add, ok := c.Lookup("Add")
	if !ok {
		t.Fatal("Add not registered")
	}
	if add.Description != "Adds two integers." {
		t.Fatalf("description = %q", add.Description)
	}
	if len(add.Params) != 2 || add.Params[0].Name != "a" || add.Params[1].Name != "b" {
		t.Fatalf("params = %+v", add.Params)
	}
	if add.Params[0].TypeLabel != "int" {
		t.Fatalf("type label = %q", add.Params[0].TypeLabel)
	}
	if add.Return == nil || add.Return.TypeLabel != "int" {
		t.Fatalf("return = %+v", add.Return)
	}

	// Undocumented operations keep signature-derived metadata.
	echo, _ := c.Lookup("Echo")
	if echo.Description != "" {
		t.Fatalf("echo description = %q, want empty", echo.Description)
	}
	if echo.Params[0].Name != "arg1" || echo.Params[0].TypeLabel != "string" {
		t.Fatalf("echo params = %+v", echo.Params)
	}
}

func TestBuildExcludesPromotedMethods(t *testing.T) {
	c, err := Build(wrapper{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(c.Operations) != 1 || c.Operations[0].Name != "Own" {
		t.Fatalf("operations = %+v", c.Operations)
	}
	if _, ok := c.Lookup("Inherited"); ok {
		t.Fatal("promoted method must not be registered")
	}
}

func TestBuildKeepsShadowingDeclarations(t *testing.T) {
	c, err := Build(shadower{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := c.Lookup("Inherited"); !ok {
		t.Fatal("declaration shadowing an embedded method must be registered")
	}
	got, f := c.Invoke("Inherited", nil)
	if f != nil {
		t.Fatalf("fault: %v", f)
	}
	if got != "shadowed" {
		t.Fatalf("result = %v, want the shadowing declaration", got)
	}
}

func TestBuildRejectsEmptyService(t *testing.T) {
	_, err := Build(empty{})
	if !errors.Is(err, ErrNoOperations) {
		t.Fatalf("err = %v, want ErrNoOperations", err)
	}
}

func TestInvokeBindsPositionally(t *testing.T) {
	c, err := Build(&calc{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tests := []struct {
		name string
		op   string
		args []any
		want any
	}{
		{name: "typed ints", op: "Add", args: []any{5, 3}, want: 8},
		{name: "json numbers", op: "Add", args: []any{float64(5), float64(3)}, want: 8},
		{name: "path strings", op: "Add", args: []any{"5", "3"}, want: 8},
		{name: "float division", op: "Divide", args: []any{"9", "2"}, want: 4.5},
		{name: "string passthrough", op: "Echo", args: []any{"hello"}, want: "hello"},
		{name: "narrowing in range", op: "Level", args: []any{int64(200)}, want: uint8(200)},
		{name: "unsigned from typed int", op: "Count", args: []any{42}, want: uint(42)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, f := c.Invoke(tc.op, tc.args)
			if f != nil {
				t.Fatalf("fault: %v", f)
			}
			if got != tc.want {
				t.Fatalf("result = %v (%T), want %v", got, got, tc.want)
			}
		})
	}
}

func TestInvokeFaults(t *testing.T) {
	c, err := Build(&calc{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	tests := []struct {
		name       string
		op         string
		args       []any
		wantStatus int
		wantIn     string
	}{
		{name: "missing name", op: "", args: nil, wantStatus: http.StatusBadRequest, wantIn: "operation name is required"},
		{name: "unknown operation", op: "Nope", args: nil, wantStatus: http.StatusNotFound, wantIn: "operation Nope not found"},
		{name: "too few args", op: "Add", args: []any{"5"}, wantStatus: http.StatusBadRequest, wantIn: "invalid number of arguments"},
		{name: "too many args", op: "Add", args: []any{"5", "3", "1"}, wantStatus: http.StatusBadRequest, wantIn: "invalid number of arguments"},
		{name: "operation error", op: "Divide", args: []any{"1", "0"}, wantStatus: http.StatusInternalServerError, wantIn: "exception in operation Divide: division by zero"},
		{name: "operation panic", op: "Panics", args: nil, wantStatus: http.StatusInternalServerError, wantIn: "unreachable state"},
		{name: "uncoercible argument", op: "Add", args: []any{"five", "3"}, wantStatus: http.StatusBadRequest, wantIn: "invalid argument 1"},
		{name: "fractional for int", op: "Add", args: []any{2.5, float64(1)}, wantStatus: http.StatusBadRequest, wantIn: "invalid argument 1"},
		{name: "out of range for byte", op: "Level", args: []any{int64(300)}, wantStatus: http.StatusBadRequest, wantIn: "invalid argument 1"},
		{name: "negative for unsigned", op: "Count", args: []any{int64(-1)}, wantStatus: http.StatusBadRequest, wantIn: "invalid argument 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, f := c.Invoke(tc.op, tc.args)
			if f == nil {
				t.Fatal("expected fault")
			}
			if f.Status != tc.wantStatus {
				t.Fatalf("status = %d, want %d", f.Status, tc.wantStatus)
			}
			if !strings.Contains(f.Message, tc.wantIn) {
				t.Fatalf("message = %q, want substring %q", f.Message, tc.wantIn)
			}
		})
	}
}

func TestInvokeUsesFreshReceiver(t *testing.T) {
	c, err := Build(&calc{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, f := c.Invoke("Scribble", []any{"7"})
		if f != nil {
			t.Fatalf("fault: %v", f)
		}
		if got != 7 {
			t.Fatalf("invocation %d leaked receiver state: got %v", i, got)
		}
	}
}

func TestOperationNamesAreUnique(t *testing.T) {
	c, err := Build(&calc{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	seen := map[string]bool{}
	for _, op := range c.Operations {
		if seen[op.Name] {
			t.Fatalf("duplicate operation %s", op.Name)
		}
		seen[op.Name] = true
		if _, ok := c.Lookup(op.Name); !ok {
			t.Fatalf("operation %s missing from lookup table", op.Name)
		}
	}
}

func TestInvokeSharedContractIsConcurrencySafe(t *testing.T) {
	c, err := Build(&calc{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func(n int) {
			got, f := c.Invoke("Add", []any{n, n})
			if f != nil {
				done <- f
				return
			}
			if got != n*2 {
				done <- fmt.Errorf("got %v, want %d", got, n*2)
				return
			}
			done <- nil
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
