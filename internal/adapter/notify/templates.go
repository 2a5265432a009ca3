package notify

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"leaveflow/internal/domain/notification"
)

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("Mon, 02 Jan 2006") },
}

var subjects = map[notification.Kind]string{
	notification.KindApprovalRequested: "Leave request from {{.RequesterName}} awaits your approval",
	notification.KindPartiallyApproved: "Your leave request was approved at level {{.Level}}",
	notification.KindApproved:          "Your leave request was approved",
	notification.KindRejected:          "Your leave request was rejected",
	notification.KindCancelled:         "Leave request from {{.RequesterName}} was cancelled",
}

const header = `Hello {{.RecipientName}},

`

const details = `
Request:  {{.RequestID}}
Dates:    {{date .StartDate}} to {{date .EndDate}}
Days:     {{.NumberOfDays}}
{{- if .Comments}}
Comments: {{.Comments}}
{{- end}}
`

var bodies = map[notification.Kind]string{
	notification.KindApprovalRequested: header + `{{.RequesterName}} has requested leave and your approval is needed at level {{.Level}}.
` + details,
	notification.KindPartiallyApproved: header + `{{.ActorName}} approved your leave request at level {{.Level}}. It now moves on to the next approver.
` + details,
	notification.KindApproved: header + `Your leave request has been fully approved by {{.ActorName}}.
` + details,
	notification.KindRejected: header + `Your leave request has been rejected by {{.ActorName}}.
` + details,
	notification.KindCancelled: header + `The leave request from {{.RequesterName}} has been cancelled by {{.ActorName}}.
` + details,
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

var templates = func() map[notification.Kind]compiled {
	out := make(map[notification.Kind]compiled, len(subjects))
	for kind, s := range subjects {
		out[kind] = compiled{
			subject: template.Must(template.New(string(kind) + "_subject").Parse(s)),
			body:    template.Must(template.New(string(kind) + "_body").Funcs(funcs).Parse(bodies[kind])),
		}
	}
	return out
}()

// Render produces the plain-text subject and body for m.
func Render(m notification.Message) (subject, body string, err error) {
	t, ok := templates[m.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", m.Kind)
	}
	var sb, bb strings.Builder
	if err := t.subject.Execute(&sb, m); err != nil {
		return "", "", err
	}
	if err := t.body.Execute(&bb, m); err != nil {
		return "", "", err
	}
	return sb.String(), bb.String(), nil
}
