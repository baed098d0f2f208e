package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
)

const interestSubject = "New Interest Received!"

type Mailer interface {
	Send(ctx context.Context, to, subject, plain, html string) error
}

// InterestNotifier renders the interest email and hands it to a Mailer.
type InterestNotifier struct {
	mailer      Mailer
	frontendURL string
}

func NewInterestNotifier(mailer Mailer, frontendURL string) *InterestNotifier {
	return &InterestNotifier{
		mailer:      mailer,
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
	}
}

func (n *InterestNotifier) NotifyInterest(ctx context.Context, email, senderName string) error {
	if n == nil || n.mailer == nil {
		return fmt.Errorf("mailer is not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("recipient email is required")
	}
	senderName = strings.TrimSpace(senderName)
	if senderName == "" {
		senderName = "Someone"
	}

	plain, body := n.render(senderName)
	if err := n.mailer.Send(ctx, email, interestSubject, plain, body); err != nil {
		return fmt.Errorf("send interest email: %w", err)
	}
	return nil
}

func (n *InterestNotifier) render(senderName string) (string, string) {
	link := n.frontendURL + "/dashboard"
	plain := fmt.Sprintf("%s has shown interest in your profile.\n\nView the interest on your dashboard: %s\n", senderName, link)
	body := fmt.Sprintf(
		`<h2>New Interest Received!</h2><p><strong>%s</strong> has shown interest in your profile.</p><p><a href="%s">Open your dashboard</a></p>`,
		html.EscapeString(senderName),
		html.EscapeString(link),
	)
	return plain, body
}
