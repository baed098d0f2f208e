package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendClientStub struct {
	resp *rest.Response
	err  error
	last *sgmail.SGMailV3
}

func (s *sendClientStub) SendWithContext(_ context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	s.last = email
	return s.resp, s.err
}

func TestNewSendGridMailerRequiresKey(t *testing.T) {
	if _, err := NewSendGridMailer(Config{FromEmail: "a@b.c"}); err == nil {
		t.Fatalf("expected error for empty api key")
	}
	if _, err := NewSendGridMailer(Config{APIKey: "SG.x"}); err == nil {
		t.Fatalf("expected error for empty sender")
	}
}

func TestSendBuildsSingleRecipientMail(t *testing.T) {
	stub := &sendClientStub{resp: &rest.Response{StatusCode: 202}}
	m := &SendGridMailer{client: stub, from: sgmail.NewEmail("Matrimony App", "no-reply@example.com")}

	if err := m.Send(context.Background(), "bride@example.com", "New Interest Received!", "plain", "<p>html</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if stub.last == nil || stub.last.Subject != "New Interest Received!" {
		t.Fatalf("unexpected mail: %+v", stub.last)
	}
	if len(stub.last.Personalizations) != 1 || stub.last.Personalizations[0].To[0].Address != "bride@example.com" {
		t.Fatalf("unexpected recipients: %+v", stub.last.Personalizations)
	}
}

func TestSendReportsRejectedStatus(t *testing.T) {
	stub := &sendClientStub{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
	m := &SendGridMailer{client: stub, from: sgmail.NewEmail("", "no-reply@example.com")}

	if err := m.Send(context.Background(), "x@example.com", "s", "p", "h"); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestSendWrapsTransportError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	m := &SendGridMailer{client: &sendClientStub{err: cause}, from: sgmail.NewEmail("", "no-reply@example.com")}

	err := m.Send(context.Background(), "x@example.com", "s", "p", "h")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}
