package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"bitva-auth/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	subjectVerification  = "Email Verification"
	subjectPasswordReset = "Password Reset Request"
)

type templateData struct {
	Name    string
	Subject string
	Link    string
	// Broadcast bodies are written by admins and rendered as HTML.
	Content template.HTML
}

// Renderer turns an email job into one message per recipient.
type Renderer struct {
	templates map[models.EmailKind]*template.Template
}

func NewRenderer() (*Renderer, error) {
	files := map[models.EmailKind]string{
		models.EmailKindVerification:  "templates/verify.html",
		models.EmailKindPasswordReset: "templates/reset.html",
		models.EmailKindBroadcast:     "templates/broadcast.html",
	}
	r := &Renderer{templates: make(map[models.EmailKind]*template.Template, len(files))}
	for kind, file := range files {
		tmpl, err := template.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

func defaultSubject(job models.EmailJob) string {
	if job.Subject != "" {
		return job.Subject
	}
	switch job.Kind {
	case models.EmailKindVerification:
		return subjectVerification
	case models.EmailKindPasswordReset:
		return subjectPasswordReset
	}
	return ""
}

// Render executes the job's template for each recipient.
func (r *Renderer) Render(job models.EmailJob) ([]Message, error) {
	tmpl, ok := r.templates[job.Kind]
	if !ok {
		return nil, fmt.Errorf("no template for email kind %q", job.Kind)
	}
	subject := defaultSubject(job)

	msgs := make([]Message, 0, len(job.Recipients))
	var buf bytes.Buffer
	for _, rcpt := range job.Recipients {
		buf.Reset()
		data := templateData{
			Name:    rcpt.Name,
			Subject: subject,
			Link:    job.Link,
			Content: template.HTML(job.Content),
		}
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render %s email: %w", job.Kind, err)
		}
		msgs = append(msgs, Message{To: rcpt, Subject: subject, HTML: buf.String()})
	}
	return msgs, nil
}
