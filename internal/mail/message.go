// Package mail builds verification emails and moves them over RabbitMQ.
package mail

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// VerificationSubject is the subject line of the initial verification email.
	VerificationSubject = "Verify your account and start your journey!"
	// VerificationRoutingKey routes verification emails on the mail exchange.
	VerificationRoutingKey = "mail.verification"
)

var errInvalidUID = errors.New("invalid uid")

// VerificationEmail asks a freshly registered user to confirm their address.
type VerificationEmail struct {
	To       string    `json:"to"`
	From     string    `json:"from"`
	Subject  string    `json:"subject"`
	Username string    `json:"username"`
	UID      string    `json:"uid"`
	Token    string    `json:"token"`
	Link     string    `json:"link"`
	QueuedAt time.Time `json:"queued_at"`
}

// NewVerificationEmail builds the email for userID. The link points at the
// frontend, which posts uid and token back to the verification endpoint.
func NewVerificationEmail(frontendURL, from string, userID uint, to, username, token string, now time.Time) VerificationEmail {
	uid := EncodeUID(userID)
	return VerificationEmail{
		To:       to,
		From:     from,
		Subject:  VerificationSubject,
		Username: username,
		UID:      uid,
		Token:    token,
		Link:     fmt.Sprintf("%s/verify/%s/%s", strings.TrimRight(frontendURL, "/"), uid, token),
		QueuedAt: now.UTC(),
	}
}

// EncodeUID encodes a user id the way verification links carry it:
// unpadded URL-safe base64 of the decimal id.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uid, "="))
	if err != nil {
		return 0, errInvalidUID
	}
	id, err := strconv.ParseUint(string(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidUID
	}
	return uint(id), nil
}
