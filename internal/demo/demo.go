// Package demo ships a small arithmetic service used by the example
// server and the end-to-end tests. It exercises every contract shape:
// scalars, composites, error returns and per-call receiver state.
package demo

import (
	"errors"
	"strings"

	"github.com/omnibridge/omnibridge/internal/contract"
)

// ErrDivideByZero reports a division with a zero divisor.
var ErrDivideByZero = errors.New("division by zero")

// Stats summarizes a list of samples.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Calculator is the demo service. A fresh copy handles every call, so
// scratch holds per-invocation state only.
type Calculator struct {
	scratch float64
}

// Add returns the sum of two numbers.
func (c *Calculator) Add(a, b float64) float64 {
	c.scratch = a + b
	return c.scratch
}

// Subtract returns a minus b.
func (c *Calculator) Subtract(a, b float64) float64 {
	return a - b
}

// Divide returns a divided by b and fails on a zero divisor.
func (c *Calculator) Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// Stats computes min, max and mean over the samples.
func (c *Calculator) Stats(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, errors.New("at least one sample is required")
	}
	out := Stats{Min: samples[0], Max: samples[0]}
	var total float64
	for _, sample := range samples {
		if sample < out.Min {
			out.Min = sample
		}
		if sample > out.Max {
			out.Max = sample
		}
		total += sample
	}
	out.Mean = total / float64(len(samples))
	return out, nil
}

// Greet returns a greeting for the given name.
func (c *Calculator) Greet(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "world"
	}
	return "Hello, " + name + "!"
}

// DescribeService documents the service for the descriptor page, the
// WSDL and the generated clients.
func (c *Calculator) DescribeService() contract.ServiceDoc {
	return contract.ServiceDoc{
		Name:        "Calculator",
		Description: "Arithmetic over every supported protocol.",
		Operations: map[string]contract.OperationDoc{
			"Add": {
				Description: "Adds two numbers.",
				Params: []contract.ParamDoc{
					{Name: "a", Description: "first addend"},
					{Name: "b", Description: "second addend"},
				},
			},
			"Subtract": {
				Description: "Subtracts b from a.",
				Params: []contract.ParamDoc{
					{Name: "a", Description: "minuend"},
					{Name: "b", Description: "subtrahend"},
				},
			},
			"Divide": {
				Description: "Divides a by b. Fails on a zero divisor.",
				Params: []contract.ParamDoc{
					{Name: "a", Description: "dividend"},
					{Name: "b", Description: "divisor"},
				},
			},
			"Stats": {
				Description: "Computes min, max and mean over the samples.",
				Params: []contract.ParamDoc{
					{Name: "samples", Description: "numeric samples"},
				},
			},
			"Greet": {
				Description: "Greets the given name.",
				Params: []contract.ParamDoc{
					{Name: "name", Description: "name to greet"},
				},
			},
		},
	}
}
