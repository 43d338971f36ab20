// Package notify builds the notification mails the platform sends and hands them to a
// transport: the Redis outbox stream on the API side, SMTP in the worker.
package notify

import (
	"context"
	"fmt"
	"strings"
)

type Kind string

const (
	KindRegistrationPending Kind = "registration_pending"
	KindAccountApproved     Kind = "account_approved"
	KindAccountDenied       Kind = "account_denied"
	KindAccountDeleted      Kind = "account_deleted"
	KindPasswordReset       Kind = "password_reset"
	KindReviewResponse      Kind = "review_response"
)

type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

func RegistrationPending(adminAddress, email, fullName string) Message {
	return Message{
		Kind:    KindRegistrationPending,
		To:      adminAddress,
		Subject: "Nieuwe registratie in afwachting: " + email,
		Body: fmt.Sprintf(
			"%s (%s) heeft zich geregistreerd en wacht op goedkeuring.\n\nBeoordeel de aanvraag in het beheerpaneel.",
			displayName(fullName, email), email,
		),
	}
}

func AccountApproved(to, fullName string) Message {
	return Message{
		Kind:    KindAccountApproved,
		To:      to,
		Subject: "Je account is goedgekeurd",
		Body: fmt.Sprintf(
			"Hallo %s,\n\nJe registratie is goedgekeurd. Je kunt nu inloggen en workshops bekijken.",
			displayName(fullName, to),
		),
	}
}

func AccountDenied(to, fullName string) Message {
	return Message{
		Kind:    KindAccountDenied,
		To:      to,
		Subject: "Je registratie is afgewezen",
		Body: fmt.Sprintf(
			"Hallo %s,\n\nJe registratie is helaas afgewezen. Je gegevens zijn verwijderd.",
			displayName(fullName, to),
		),
	}
}

func AccountDeleted(to, fullName string) Message {
	return Message{
		Kind:    KindAccountDeleted,
		To:      to,
		Subject: "Je account is verwijderd",
		Body: fmt.Sprintf(
			"Hallo %s,\n\nJe account en bijbehorende gegevens zijn verwijderd.",
			displayName(fullName, to),
		),
	}
}

func PasswordReset(to, code string, validMinutes int) Message {
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: "Je wachtwoord herstellen",
		Body: fmt.Sprintf(
			"Je herstelcode is %s.\n\nDeze code is %d minuten geldig. Heb je dit niet aangevraagd, negeer dan deze e-mail.",
			code, validMinutes,
		),
	}
}

func ReviewResponse(to, workshopTitle, response string) Message {
	return Message{
		Kind:    KindReviewResponse,
		To:      to,
		Subject: "Reactie op je review van " + workshopTitle,
		Body:    response,
	}
}

func displayName(fullName, fallback string) string {
	if name := strings.TrimSpace(fullName); name != "" {
		return name
	}
	return fallback
}
