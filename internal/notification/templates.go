package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/stanstork/invite-links/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const timestampLayout = "Monday, January 2, 2006 at 3:04 PM MST"

// Content is a rendered notification ready for delivery.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

type notificationEmailData struct {
	Subject  string
	Text     string
	SentAt   string
	Accepted bool
}

// Compose renders the notification for a response given by name. sentAt is
// formatted in its own location.
func Compose(response models.Response, name string, sentAt time.Time) (Content, error) {
	var subject, text string
	switch response {
	case models.ResponseYes:
		subject = fmt.Sprintf("%s Said YES!", name)
		text = fmt.Sprintf("%s said YES! Your invitation has been accepted.", name)
	case models.ResponseNo:
		subject = fmt.Sprintf("%s Said No", name)
		text = fmt.Sprintf("%s said no, even after 20 attempts. Your invitation has been rejected.", name)
	default:
		return Content{}, models.NewValidationError("response", "response must be yes or no")
	}

	data := notificationEmailData{
		Subject:  subject,
		Text:     text,
		SentAt:   sentAt.Format(timestampLayout),
		Accepted: response == models.ResponseYes,
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "notification.html", data); err != nil {
		return Content{}, fmt.Errorf("failed to execute template: %w", err)
	}

	return Content{Subject: subject, Text: text, HTML: body.String()}, nil
}
