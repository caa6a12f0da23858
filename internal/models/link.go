package models

import "time"

// LinkTTL is the fixed validity window of every link.
const LinkTTL = 30 * 24 * time.Hour

type Response string

const (
	ResponseYes Response = "yes"
	ResponseNo  Response = "no"
)

// ParseResponse accepts only the literal values "yes" and "no".
func ParseResponse(raw string) (Response, bool) {
	switch Response(raw) {
	case ResponseYes, ResponseNo:
		return Response(raw), true
	}
	return "", false
}

// Link is a single invitation addressed by its opaque ID.
type Link struct {
	ID             string     `json:"id"`
	RecipientEmail string     `json:"recipient_email"`
	RecipientName  string     `json:"recipient_name"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	Response       *Response  `json:"response,omitempty"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
}

// IsExpired determines whether the link has lapsed.
func (l Link) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// IsAnswered indicates whether a response has been recorded.
func (l Link) IsAnswered() bool {
	return l.Response != nil
}

// Recipient is the public view of a link returned to the responding page.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
