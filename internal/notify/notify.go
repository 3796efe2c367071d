package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/keighl/postmark"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/pricing"
)

// Notifier tells a customer their cart went through checkout.
type Notifier interface {
	CheckoutConfirmed(ctx context.Context, user *models.User, cart *models.Cart) error
}

type sender interface {
	SendEmail(email postmark.Email) (postmark.EmailResponse, error)
}

type Postmark struct {
	client sender
	from   string
}

var _ Notifier = (*Postmark)(nil)

func NewPostmark(serverToken, from string) *Postmark {
	return &Postmark{client: postmark.NewClient(serverToken, ""), from: from}
}

func (p *Postmark) CheckoutConfirmed(ctx context.Context, user *models.User, cart *models.Cart) error {
	if user.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	htmlBody, textBody := renderConfirmation(user, cart)
	_, err := p.client.SendEmail(postmark.Email{
		From:     p.from,
		To:       user.Email,
		Subject:  fmt.Sprintf("Order confirmation #%d", cart.ID),
		HtmlBody: htmlBody,
		TextBody: textBody,
		Tag:      "checkout",
	})
	if err != nil {
		return fmt.Errorf("postmark: send to %s: %w", user.Email, err)
	}
	return nil
}

func renderConfirmation(user *models.User, cart *models.Cart) (string, string) {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}

	var h, t strings.Builder
	fmt.Fprintf(&h, "<p>Dear %s,</p><p>Thank you for your purchase! Order #%d:</p><ul>", html.EscapeString(name), cart.ID)
	fmt.Fprintf(&t, "Dear %s,\n\nThank you for your purchase! Order #%d:\n", name, cart.ID)

	for i := range cart.Items {
		it := &cart.Items[i]
		title := fmt.Sprintf("product %d", it.ProductID)
		if it.Product != nil {
			title = it.Product.Name
		}
		line := pricing.LineTotal(*it).StringFixed(2)
		fmt.Fprintf(&h, "<li>%s x %d: %s</li>", html.EscapeString(title), it.Quantity, line)
		fmt.Fprintf(&t, "- %s x %d: %s\n", title, it.Quantity, line)
	}

	total := cart.TotalPrice.StringFixed(2)
	fmt.Fprintf(&h, "</ul><p>Total: <strong>%s</strong></p>", total)
	fmt.Fprintf(&t, "\nTotal: %s\n", total)
	return h.String(), t.String()
}

type Nop struct{}

func (Nop) CheckoutConfirmed(context.Context, *models.User, *models.Cart) error { return nil }
