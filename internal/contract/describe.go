package contract

// Describer is implemented by service values that carry structured
// documentation for their operations. Everything in it is optional;
// contract construction merges whatever is present and falls back to the
// static signature for the rest.
type Describer interface {
	DescribeService() ServiceDoc
}

// ServiceDoc documents a service and its operations.
type ServiceDoc struct {
	// Name overrides the service display name.
	Name string
	// Description is the free-text service summary.
	Description string
	// Operations maps operation names to their documentation.
	Operations map[string]OperationDoc
}

// OperationDoc documents one operation.
type OperationDoc struct {
	// Description is the free-text operation summary.
	Description string
	// Params documents parameters in declaration order.
	Params []ParamDoc
	// Return documents the result, nil to take the signature's word.
	Return *Return
}

// ParamDoc documents one parameter.
type ParamDoc struct {
	// Name is the parameter identifier; empty keeps the generated one.
	Name string
	// TypeLabel overrides the signature-derived type label.
	TypeLabel string
	// Description is free-text parameter documentation.
	Description string
}
