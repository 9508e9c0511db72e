// Package notify delivers purchase confirmations. The engine treats
// delivery as fire-and-forget: every error here is logged upstream and
// never fails a grant.
package notify

import (
	"bytes"
	"fmt"
	"log"
	"net/smtp"
	"text/template"

	"kitlab/backend/config"
	"kitlab/backend/models"
	"kitlab/backend/store"
)

var confirmationTmpl = template.Must(template.New("purchase_confirmation").Parse(
	`Hi {{.UserName}},

Thanks for getting the {{.KitName}} kit (level {{.KitLevel}}, {{.KitTheme}}).
{{if .Free}}This kit was added to your account for free.{{else}}Amount charged: ${{printf "%.2f" .Amount}}.{{end}}

Your courses are waiting at {{.CoursesURL}}.

The KitLab team
`))

type templateData struct {
	UserName   string
	KitName    string
	KitTheme   string
	KitLevel   int
	Amount     float64
	Free       bool
	CoursesURL string
}

// Mailer renders and sends purchase confirmation emails over SMTP. With no
// SMTP host configured it logs the rendered message instead, which is what
// development and tests run with.
type Mailer struct {
	users store.UserStore
	kits  store.KitStore
	cfg   *config.Config
	log   *log.Logger
}

func NewMailer(users store.UserStore, kits store.KitStore, cfg *config.Config, logger *log.Logger) *Mailer {
	return &Mailer{users: users, kits: kits, cfg: cfg, log: logger}
}

// PurchaseConfirmation implements engine.Notifier.
func (m *Mailer) PurchaseConfirmation(userID, kitID string, purchase *models.Purchase) error {
	user, err := m.users.GetUser(userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	kit, err := m.kits.GetKit(kitID)
	if err != nil {
		return fmt.Errorf("load kit: %w", err)
	}

	var body bytes.Buffer
	err = confirmationTmpl.Execute(&body, templateData{
		UserName:   user.Name,
		KitName:    kit.Name,
		KitTheme:   kit.Theme,
		KitLevel:   kit.Level,
		Amount:     purchase.Amount,
		Free:       purchase.Amount == 0,
		CoursesURL: m.cfg.SiteURL + "/courses",
	})
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	subject := fmt.Sprintf("Your %s kit is ready", kit.Name)
	if m.cfg.SMTPHost == "" {
		m.log.Printf("notify (log-only) to=%s subject=%q", user.Email, subject)
		return nil
	}
	return m.send(user.Email, subject, body.String())
}

func (m *Mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.SMTPFrom, to, subject, body)
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	return smtp.SendMail(addr, nil, m.cfg.SMTPFrom, []string{to}, []byte(msg))
}
