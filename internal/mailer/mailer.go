package mailer

import (
	"fmt"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/sakuraessence/storefront/config"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/order"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"
)

var frPrinter = message.NewPrinter(language.French)

// Mailer sends the storefront's transactional email: order status notices and
// the contact-form pair. It implements order.Notifier.
type Mailer struct {
	smtp  config.SmtpConfig
	store config.StoreConfig
	pool  *ants.Pool

	// send is swapped out in tests.
	send func(msgs ...*gomail.Message) error
}

var _ order.Notifier = (*Mailer)(nil)

func New(smtp config.SmtpConfig, store config.StoreConfig) (*Mailer, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	m := &Mailer{smtp: smtp, store: store, pool: pool}
	m.send = m.dialAndSend
	return m, nil
}

func (m *Mailer) Close() {
	m.pool.Release()
}

func (m *Mailer) dialAndSend(msgs ...*gomail.Message) error {
	d := gomail.NewDialer(m.smtp.Host, m.smtp.Port, m.smtp.User, m.smtp.Passwd)
	return d.DialAndSend(msgs...)
}

func (m *Mailer) from() string {
	if m.smtp.From != "" {
		return m.smtp.From
	}
	return m.smtp.User
}

func (m *Mailer) newMessage(to, subject, htmlBody string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from(), m.store.Name)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return msg
}

// SendOrderStatusEmail sends the customer notice for a committed status
// transition. It is called exactly once per transition and receives an
// immutable order snapshot.
func (m *Mailer) SendOrderStatusEmail(to string, status domain.OrderStatus, snapshot *domain.Order) error {
	var subject, title, lead string
	switch status {
	case domain.OrderStatusConfirmed:
		subject = fmt.Sprintf("🌸 Votre commande est confirmée - %s", m.store.Name)
		title = "Commande confirmée 💐"
		lead = "Bonne nouvelle ! Votre commande a été confirmée et sera préparée avec soin."
	case domain.OrderStatusRejected:
		subject = fmt.Sprintf("🌸 Mise à jour de votre commande - %s", m.store.Name)
		title = "Commande non confirmée"
		lead = "Nous sommes désolés, votre commande n'a pas pu être confirmée. N'hésitez pas à nous contacter pour plus d'informations."
	default:
		return errors.Errorf("no email template for status %q", status)
	}

	body := m.emailTemplate(title, m.orderContent(lead, snapshot))
	msg := m.newMessage(to, subject, body)
	if err := m.send(msg); err != nil {
		return errors.Wrapf(err, "send status email to %s", to)
	}
	return nil
}

func (m *Mailer) orderContent(lead string, o *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Bonjour %s,</p><p>%s</p>", o.CustomerName, lead)

	b.WriteString(`<table style="width:100%;border-collapse:collapse;margin-top:15px;">`)
	for _, it := range o.Items {
		fmt.Fprintf(&b,
			`<tr><td style="padding:8px;border-bottom:1px solid #eee;">%s (%s) x%d</td>`+
				`<td style="padding:8px;border-bottom:1px solid #eee;text-align:right;">%s %s</td></tr>`,
			it.Name, it.Variant.String(), it.Quantity, amount(it.Subtotal()), m.store.Currency)
	}
	fmt.Fprintf(&b,
		`<tr><td style="padding:8px;font-weight:600;">Total</td>`+
			`<td style="padding:8px;text-align:right;font-weight:600;color:#0f766e;">%s %s</td></tr>`,
		amount(o.Total), m.store.Currency)
	b.WriteString("</table>")

	fmt.Fprintf(&b, `<p style="margin-top:20px;">À très bientôt,</p><p style="font-weight:600;color:#0f766e;">L'équipe %s</p>`, m.store.Name)
	return b.String()
}

// SendContactMessage queues the contact-form pair: the admin copy and the
// client acknowledgement. Dispatch is fire-and-forget on the worker pool;
// failures are logged, never surfaced to the shopper.
func (m *Mailer) SendContactMessage(name, email, subject, body string) error {
	adminContent := fmt.Sprintf(
		`<p><strong>Nom :</strong> %s</p><p><strong>Email :</strong> %s</p>`+
			`<p><strong>Sujet :</strong> %s</p><p><strong>Message :</strong></p>`+
			`<div style="background-color:#f9f9f9;padding:15px;border-radius:10px;margin-top:10px;border-left:4px solid #0f766e;">%s</div>`,
		name, email, orNoSubject(subject), nl2br(body))

	clientContent := fmt.Sprintf(
		`<p>Bonjour %s,</p><p>Merci de nous avoir contactés 🌸</p>`+
			`<p>Nous avons bien reçu votre message et vous répondrons dans les plus brefs délais.</p>`+
			`<div style="margin:20px 0;padding:15px;background-color:#fff6f8;border-radius:10px;border-left:4px solid #e6b8b8;">`+
			`<p style="margin:0 0 5px 0;"><strong>Votre message :</strong></p><p style="color:#555;">%s</p></div>`+
			`<p>À très bientôt,</p><p style="font-weight:600;color:#0f766e;">L'équipe %s</p>`,
		name, nl2br(body), m.store.Name)

	adminMail := m.newMessage(m.smtp.AdminTo,
		fmt.Sprintf("📩 Nouveau message - %s", orNoSubject(subject)),
		m.emailTemplate("💌 Nouveau message reçu depuis le site", adminContent))
	clientMail := m.newMessage(email,
		fmt.Sprintf("🌸 Merci pour votre message - %s", m.store.Name),
		m.emailTemplate("Merci pour votre message 💐", clientContent))

	return m.pool.Submit(func() {
		if err := m.send(adminMail, clientMail); err != nil {
			zap.L().Warn("contact mail send failed",
				zap.String("from_visitor", email),
				zap.Error(err))
		}
	})
}

// emailTemplate wraps content in the storefront mail frame.
func (m *Mailer) emailTemplate(title, content string) string {
	return fmt.Sprintf(`<body style="margin:0;padding:0;font-family:'Poppins',Arial,sans-serif;background-color:#fdfaf7;">
  <div style="max-width:600px;margin:40px auto;background:white;border-radius:20px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,0.08);">
    <div style="background-color:#0f766e;padding:20px 30px;text-align:center;color:#fff;">
      <h1 style="margin:0;font-size:28px;font-family:'Playfair Display',serif;">%s</h1>
      <p style="margin:5px 0 0;font-size:14px;color:#cde5e1;">Parfums raffinés &amp; élégance intemporelle</p>
    </div>
    <div style="padding:30px;color:#333;">
      <h2 style="color:#0f766e;font-size:20px;">%s</h2>
      <div style="margin-top:15px;line-height:1.6;font-size:15px;color:#555;">%s</div>
    </div>
    <div style="background-color:#fae1dd;padding:20px;text-align:center;">
      <p style="margin:0;font-size:13px;color:#555;">🌸 %s | Rabat, Maroc<br/>
        <a href="%s" style="color:#0f766e;text-decoration:none;font-weight:500;">%s</a>
      </p>
    </div>
  </div>
</body>`, m.store.Name, title, content, m.store.Name, m.store.SiteURL, strings.TrimPrefix(m.store.SiteURL, "https://"))
}

func amount(v float64) string {
	if v == float64(int64(v)) {
		return frPrinter.Sprintf("%d", int64(v))
	}
	return frPrinter.Sprintf("%.2f", v)
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br/>")
}

func orNoSubject(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Sans sujet"
	}
	return s
}
