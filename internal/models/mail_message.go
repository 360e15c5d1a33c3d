package models

import "time"

// MailMessage is an outgoing e-mail waiting in the outbox.
type MailMessage struct {
	ID          int64      `json:"id"`
	Recipient   string     `json:"recipient"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
}
