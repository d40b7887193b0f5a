// Package templates renders the HTML service descriptor.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer resolves display strings for descriptor labels.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// DefaultLocalizer returns an English localizer.
func DefaultLocalizer() Localizer {
	return message.NewPrinter(language.English)
}

// ServicePage renders the full descriptor document for a service.
func ServicePage(view ServiceView, loc Localizer) templ.Component {
	if loc == nil {
		loc = DefaultLocalizer()
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		write := func(format string, args ...any) error {
			_, err := fmt.Fprintf(w, format, args...)
			return err
		}

		if err := write(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body>`,
			templ.EscapeString(view.Name)); err != nil {
			return err
		}
		if err := write(`<h1>%s</h1>`, templ.EscapeString(view.Name)); err != nil {
			return err
		}
		if view.Description != "" {
			if err := write(`<p>%s</p>`, templ.EscapeString(view.Description)); err != nil {
				return err
			}
		}
		if err := write(`<p><strong>%s:</strong> <code>%s</code> · <a href="?wsdl">WSDL</a></p>`,
			templ.EscapeString(loc.Sprintf("Endpoint")),
			templ.EscapeString(view.Endpoint)); err != nil {
			return err
		}

		if err := write(`<h2>%s</h2>`, templ.EscapeString(loc.Sprintf("Operations"))); err != nil {
			return err
		}
		for _, op := range view.Operations {
			if err := operationSection(w, op, loc); err != nil {
				return err
			}
		}

		if len(view.Clients) > 0 {
			if err := write(`<h2>%s</h2><ul>`, templ.EscapeString(loc.Sprintf("Client downloads"))); err != nil {
				return err
			}
			for _, client := range view.Clients {
				if err := write(`<li><a href="%s">%s</a></li>`,
					templ.EscapeString(client.URL),
					templ.EscapeString(client.Label)); err != nil {
					return err
				}
			}
			if err := write(`</ul>`); err != nil {
				return err
			}
		}

		return write(`</body></html>`)
	})
}

func operationSection(w io.Writer, op OperationView, loc Localizer) error {
	write := func(format string, args ...any) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	}

	if err := write(`<section><h3><code>%s</code></h3>`, templ.EscapeString(op.Signature)); err != nil {
		return err
	}
	if op.Description != "" {
		if err := write(`<p>%s</p>`, templ.EscapeString(op.Description)); err != nil {
			return err
		}
	}
	if len(op.Params) > 0 {
		if err := write(`<table><thead><tr><th>%s</th><th>%s</th><th>%s</th></tr></thead><tbody>`,
			templ.EscapeString(loc.Sprintf("Parameter")),
			templ.EscapeString(loc.Sprintf("Type")),
			templ.EscapeString(loc.Sprintf("Description"))); err != nil {
			return err
		}
		for _, param := range op.Params {
			if err := write(`<tr><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(param.Name),
				templ.EscapeString(param.TypeLabel),
				templ.EscapeString(param.Description)); err != nil {
				return err
			}
		}
		if err := write(`</tbody></table>`); err != nil {
			return err
		}
	}
	if op.ReturnType != "" {
		if err := write(`<p><em>%s:</em> %s %s</p>`,
			templ.EscapeString(loc.Sprintf("Returns")),
			templ.EscapeString(op.ReturnType),
			templ.EscapeString(op.ReturnDescription)); err != nil {
			return err
		}
	}
	return write(`</section>`)
}
