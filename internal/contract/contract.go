// Package contract builds the immutable, protocol-agnostic description
// of a service value.
//
// A Contract is constructed once at startup by reflecting over the
// methods declared directly on the service type, and is shared read-only
// across all concurrent request handlers. Invocation goes through a
// name-keyed table of uniform closures, never through per-request
// re-introspection.
package contract

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/omnibridge/omnibridge/internal/fault"
)

// ErrNoOperations reports a service type with zero qualifying public
// operations. It is fatal: service startup must abort.
var ErrNoOperations = errors.New("service type declares no public operations")

// Param describes one positional operation parameter.
type Param struct {
	// Name is the parameter identifier shown in documentation and WSDL.
	Name string
	// TypeLabel is the wire-facing type name (int, float, string, ...).
	TypeLabel string
	// Description is free-text documentation, may be empty.
	Description string
}

// Return describes an operation result.
type Return struct {
	// TypeLabel is the wire-facing type name of the result.
	TypeLabel string
	// Description is free-text documentation, may be empty.
	Description string
}

// Operation is one exposed method, addressable by name across every
// protocol. Params order is the positional-binding order everywhere.
type Operation struct {
	// Name is the unique, case-sensitive operation identifier.
	Name string
	// Params lists the wire parameters in binding order.
	Params []Param
	// Return describes the result, nil when the operation returns nothing.
	Return *Return
	// Description is the free-text operation summary.
	Description string

	method   reflect.Method
	takesCtx bool
	hasValue bool
	hasError bool
}

// Contract is the immutable description of one exposed service.
type Contract struct {
	// ServiceName is the display and identifier name of the service.
	ServiceName string
	// Endpoint is the canonical base URL, trailing slashes stripped.
	Endpoint string
	// Description is the free-text service summary.
	Description string
	// Operations lists the exposed operations in registry order.
	Operations []*Operation

	byName    map[string]*Operation
	prototype reflect.Value
}

// Option adjusts contract construction.
type Option func(*Contract)

// WithName overrides the service display name.
func WithName(name string) Option {
	return func(c *Contract) { c.ServiceName = name }
}

// WithEndpoint sets the canonical base URL. Trailing slashes are stripped.
func WithEndpoint(endpoint string) Option {
	return func(c *Contract) { c.Endpoint = strings.TrimRight(endpoint, "/") }
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// Build introspects the service value into a Contract.
//
// Only exported methods declared directly on the service type qualify:
// methods promoted from embedded types are excluded, since they are not
// intended as public operations. A service with zero qualifying methods
// fails with ErrNoOperations. Documentation is merged best-effort from
// the service's Describer implementation when present; missing fields
// stay empty and type labels fall back to the static signature.
func Build(service any, opts ...Option) (*Contract, error) {
	if service == nil {
		return nil, fmt.Errorf("service value is required")
	}

	value := reflect.ValueOf(service)
	typ := value.Type()

	c := &Contract{
		ServiceName: shortTypeName(typ),
		byName:      make(map[string]*Operation),
		prototype:   value,
	}

	var doc ServiceDoc
	if describer, ok := service.(Describer); ok {
		doc = describer.DescribeService()
	}
	if doc.Name != "" {
		c.ServiceName = doc.Name
	}
	c.Description = doc.Description

	for i := 0; i < typ.NumMethod(); i++ {
		method := typ.Method(i)
		if !method.IsExported() || method.Name == "DescribeService" {
			continue
		}
		if isPromoted(typ, method.Name) {
			continue
		}
		op, err := buildOperation(method, doc.Operations[method.Name])
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", method.Name, err)
		}
		c.Operations = append(c.Operations, op)
		c.byName[op.Name] = op
	}

	if len(c.Operations) == 0 {
		return nil, fmt.Errorf("build contract for %s: %w", c.ServiceName, ErrNoOperations)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup returns the named operation.
func (c *Contract) Lookup(name string) (*Operation, bool) {
	op, ok := c.byName[name]
	return op, ok
}

// Invoke binds args positionally to the named operation, calls it on a
// fresh receiver, and returns the result value. All failures come back
// as typed faults per the shared binding contract.
func (c *Contract) Invoke(name string, args []any) (any, *fault.Fault) {
	if name == "" {
		return nil, fault.MissingName()
	}
	op, ok := c.byName[name]
	if !ok {
		return nil, fault.UnknownOperation(name)
	}
	if len(args) != len(op.Params) {
		return nil, fault.ArgumentCount(name)
	}

	in := make([]reflect.Value, 0, len(args)+2)
	in = append(in, c.freshReceiver())
	if op.takesCtx {
		in = append(in, reflect.ValueOf(context.Background()))
	}
	for i, arg := range args {
		paramType := op.method.Type.In(len(in))
		coerced, err := coerce(arg, paramType)
		if err != nil {
			return nil, fault.BadArgument(name, i, err)
		}
		in = append(in, coerced)
	}

	out, err := call(op.method.Func, in)
	if err != nil {
		return nil, fault.Invocation(name, err)
	}

	var result any
	if op.hasError {
		last := out[len(out)-1]
		if !last.IsNil() {
			return nil, fault.Invocation(name, last.Interface().(error))
		}
		out = out[:len(out)-1]
	}
	if op.hasValue {
		result = out[0].Interface()
	}
	return result, nil
}

// InvokeContext is Invoke with a caller-supplied context for operations
// that accept one.
func (c *Contract) InvokeContext(ctx context.Context, name string, args []any) (any, *fault.Fault) {
	if ctx == nil {
		ctx = context.Background()
	}
	op, ok := c.byName[name]
	if ok && op.takesCtx {
		return c.invokeWith(ctx, op, args)
	}
	return c.Invoke(name, args)
}

func (c *Contract) invokeWith(ctx context.Context, op *Operation, args []any) (any, *fault.Fault) {
	if len(args) != len(op.Params) {
		return nil, fault.ArgumentCount(op.Name)
	}
	in := []reflect.Value{c.freshReceiver(), reflect.ValueOf(ctx)}
	for i, arg := range args {
		coerced, err := coerce(arg, op.method.Type.In(len(in)))
		if err != nil {
			return nil, fault.BadArgument(op.Name, i, err)
		}
		in = append(in, coerced)
	}
	out, err := call(op.method.Func, in)
	if err != nil {
		return nil, fault.Invocation(op.Name, err)
	}
	var result any
	if op.hasError {
		last := out[len(out)-1]
		if !last.IsNil() {
			return nil, fault.Invocation(op.Name, last.Interface().(error))
		}
		out = out[:len(out)-1]
	}
	if op.hasValue {
		result = out[0].Interface()
	}
	return result, nil
}

// call invokes fn converting panics into errors so one misbehaving
// operation never takes down the request handler.
func call(fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%v", recovered)
		}
	}()
	return fn.Call(in), nil
}

// freshReceiver returns a per-invocation copy of the service value so
// field mutations never leak across requests. For pointer receivers the
// pointed-to struct is shallow-copied; configured dependencies carry
// over, request-scoped scribbles do not.
func (c *Contract) freshReceiver() reflect.Value {
	proto := c.prototype
	if proto.Kind() == reflect.Pointer && !proto.IsNil() && proto.Elem().Kind() == reflect.Struct {
		clone := reflect.New(proto.Elem().Type())
		clone.Elem().Set(proto.Elem())
		return clone
	}
	return proto
}

func buildOperation(method reflect.Method, doc OperationDoc) (*Operation, error) {
	mt := method.Type

	firstArg := 1 // receiver
	takesCtx := false
	if mt.NumIn() > 1 && mt.In(1) == ctxType {
		takesCtx = true
		firstArg = 2
	}

	op := &Operation{
		Name:        method.Name,
		Description: doc.Description,
		method:      method,
		takesCtx:    takesCtx,
	}

	for i := firstArg; i < mt.NumIn(); i++ {
		idx := i - firstArg
		param := Param{
			Name:      fmt.Sprintf("arg%d", idx+1),
			TypeLabel: typeLabel(mt.In(i)),
		}
		if idx < len(doc.Params) {
			if doc.Params[idx].Name != "" {
				param.Name = doc.Params[idx].Name
			}
			if doc.Params[idx].TypeLabel != "" {
				param.TypeLabel = doc.Params[idx].TypeLabel
			}
			param.Description = doc.Params[idx].Description
		}
		op.Params = append(op.Params, param)
	}

	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errType {
			op.hasError = true
		} else {
			op.hasValue = true
		}
	case 2:
		if mt.Out(1) != errType {
			return nil, fmt.Errorf("second return value must be error")
		}
		op.hasValue = true
		op.hasError = true
	default:
		return nil, fmt.Errorf("too many return values")
	}

	if op.hasValue {
		ret := &Return{TypeLabel: typeLabel(mt.Out(0))}
		if doc.Return != nil {
			if doc.Return.TypeLabel != "" {
				ret.TypeLabel = doc.Return.TypeLabel
			}
			ret.Description = doc.Return.Description
		}
		op.Return = ret
	}

	return op, nil
}

// isPromoted reports whether the named method reaches typ through an
// embedded field rather than a direct declaration. A declaration on the
// type itself that shadows an embedded method counts as direct.
//
// The compiler synthesizes a wrapper function for every promoted
// method, and those wrappers carry no source position, so provenance is
// read off the method's position instead of its name. The lookup goes
// through the value type first: resolving a value-receiver method via
// the pointer type would hit the pointer wrapper and read as synthetic.
func isPromoted(typ reflect.Type, name string) bool {
	valueType := typ
	if valueType.Kind() == reflect.Pointer {
		valueType = valueType.Elem()
	}
	if method, ok := valueType.MethodByName(name); ok {
		return isSynthetic(method)
	}
	if method, ok := reflect.PointerTo(valueType).MethodByName(name); ok {
		return isSynthetic(method)
	}
	return false
}

func isSynthetic(method reflect.Method) bool {
	fn := runtime.FuncForPC(method.Func.Pointer())
	if fn == nil {
		return false
	}
	file, _ := fn.FileLine(fn.Entry())
	return file == "<autogenerated>"
}

func shortTypeName(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Name() != "" {
		return typ.Name()
	}
	return "Service"
}

// typeLabel maps a Go type to the language-neutral label used in
// documentation, WSDL and generated clients.
func typeLabel(typ reflect.Type) string {
	switch typ.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "mixed"
	}
}
