// Package notification delivers ledger notifications to guardians.
package notification

import (
	"fmt"
	"strings"
	"text/template"

	appfinance "github.com/campusledger/backend/internal/application/finance"
)

// smsTemplates are kept short enough for two SMS segments.
var smsTemplates = map[string]string{
	appfinance.TemplatePaymentConfirmed: "{{.school}}Payment of {{.amount}} for {{.student_name}} received by {{.method}}{{if .reference}} (ref {{.reference}}){{end}}. Thank you.",
	appfinance.TemplateInvoiceIssued:    "{{.school}}Invoice {{.invoice_number}} for {{.student_name}}: {{.total}} due {{.due_date}}.",
	appfinance.TemplateInvoiceOverdue:   "{{.school}}Invoice {{.invoice_number}} for {{.student_name}} ({{.total}}) was due {{.due_date}} and is now overdue.",
}

// Renderer turns a template id and its variables into message text.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	root := template.New("sms").Option("missingkey=zero")
	for id, body := range smsTemplates {
		if _, err := root.New(id).Parse(body); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", id, err)
		}
	}
	return &Renderer{templates: root}, nil
}

// Render executes the template. A "school" variable, when present, prefixes
// the message as "<school>: ".
func (r *Renderer) Render(templateID string, vars map[string]string) (string, error) {
	t := r.templates.Lookup(templateID)
	if t == nil {
		return "", fmt.Errorf("unknown notification template %q", templateID)
	}

	data := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		data[k] = v
	}
	if school := data["school"]; school != "" {
		data["school"] = school + ": "
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", templateID, err)
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}
