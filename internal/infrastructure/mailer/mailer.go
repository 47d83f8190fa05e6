// Package mailer sends transactional email.
package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"storefront/internal/domain/entity"
	"storefront/pkg/logger"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from, fromName: "Storefront"}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if m.from == "" {
		return fmt.Errorf("from address is empty")
	}
	if msg.To == "" {
		return fmt.Errorf("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.Body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(msg.Body)),
	)

	response, err := sendgrid.NewSendClient(m.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	logger.Info("[sendgrid] mail sent: status=%d to=%s subject=%s", response.StatusCode, msg.To, msg.Subject)
	return nil
}

// LogMailer only logs; it is used when no SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info("[mail] to=%s subject=%s (delivery disabled)", msg.To, msg.Subject)
	return nil
}

// New picks SendGrid when an API key is present.
func New(apiKey, from string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewSendGridMailer(apiKey, from)
}

// OrderConfirmation renders the confirmation email for a placed order.
func OrderConfirmation(to string, order *entity.Order) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks for your order %s.\n\n", order.ID)
	for _, it := range order.Items {
		fmt.Fprintf(&b, "%d x %s  %.2f %s\n", it.Quantity, it.Name, it.LineTotal, order.Currency)
	}
	fmt.Fprintf(&b, "\nSubtotal: %.2f %s\n", order.Subtotal, order.Currency)
	fmt.Fprintf(&b, "Shipping: %.2f %s\n", order.ShippingFee, order.Currency)
	fmt.Fprintf(&b, "Total:    %.2f %s\n", order.Total, order.Currency)
	if a := order.ShippingAddress; a != nil {
		fmt.Fprintf(&b, "\nShipping to:\n%s\n%s\n%s %s\n%s\n", a.FullName, a.Line1, a.PostalCode, a.City, a.Country)
	}
	return Message{
		To:      to,
		Subject: "Order confirmation " + order.ID,
		Body:    b.String(),
	}
}
