package notifier

import (
	"bytes"
	"fmt"
	"form-builder/config"
	"form-builder/models"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends response notifications to a form's NotifyEmails.
type Mailer struct {
	from   string
	sender Sender
}

func NewMailer(from string, sender Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

// FromConfig returns nil when SMTP_HOST is not set.
func FromConfig() *Mailer {
	if config.SMTPHost == "" {
		return nil
	}
	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
	return NewMailer(config.SMTPFrom, dialer)
}

var responseTmpl = template.Must(template.New("response").Parse(`<html>
	<body>
		<h3>New response for {{.Form.Name}}</h3>
		<p>Response ID: <strong>{{.Response.ID}}</strong></p>
		<p>Submitted by: {{.Response.SubmittedBy}} at {{.Response.SubmittedAt.Format "2006-01-02 15:04:05"}}</p>
		<p>This is an auto-generated email. Please do not reply.</p>
	</body>
</html>`))

// BuildResponseMessage composes the notification without sending it.
func (m *Mailer) BuildResponseMessage(form *models.Form, resp *models.FormResponse) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := responseTmpl.Execute(&body, struct {
		Form     *models.Form
		Response *models.FormResponse
	}{form, resp}); err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", form.NotifyEmails...)
	msg.SetHeader("Subject", fmt.Sprintf("New response: %s", form.Name))
	msg.SetBody("text/html", body.String())
	return msg, nil
}

// NotifyResponse is a no-op on a nil Mailer or when the form has no
// recipients.
func (m *Mailer) NotifyResponse(form *models.Form, resp *models.FormResponse) error {
	if m == nil || len(form.NotifyEmails) == 0 {
		return nil
	}
	msg, err := m.BuildResponseMessage(form, resp)
	if err != nil {
		return err
	}
	return m.sender.DialAndSend(msg)
}
