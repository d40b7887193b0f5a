// File views.go defines view data for service descriptor templates.
package templates

// ServiceView holds formatted service data for the descriptor page.
type ServiceView struct {
	// Name is the service display name.
	Name string
	// Endpoint is the canonical base URL of the service.
	Endpoint string
	// Description is the free-text service summary.
	Description string
	// Operations lists the formatted operation rows.
	Operations []OperationView
	// Clients lists the downloadable client stubs.
	Clients []ClientLink
}

// OperationView holds formatted operation data for display.
type OperationView struct {
	// Name is the operation identifier.
	Name string
	// Signature is the rendered call signature.
	Signature string
	// Description is the free-text operation summary.
	Description string
	// Params lists the formatted parameter rows.
	Params []ParamView
	// ReturnType is the result type label, empty for void operations.
	ReturnType string
	// ReturnDescription documents the result.
	ReturnDescription string
}

// ParamView holds formatted parameter data for display.
type ParamView struct {
	// Name is the parameter identifier.
	Name string
	// TypeLabel is the wire-facing type name.
	TypeLabel string
	// Description is free-text parameter documentation.
	Description string
}

// ClientLink holds one client stub download link.
type ClientLink struct {
	// Label is the visible link text.
	Label string
	// URL is the download query URL.
	URL string
}
