package services

import (
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"storefront/config"
	"strings"

	"github.com/rs/zerolog"
)

var resetEmailTemplate = template.Must(template.New("reset").Parse(`
<table width="680px" cellpadding="0" cellspacing="0" border="0">
  <tbody>
    <tr>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
      <td width="80%" bgcolor="#eeeeee" align="center"><h1>{{.Brand}}</h1></td>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
    </tr>
    <tr>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
      <td width="80%" bgcolor="#ffffff" align="center" valign="top" style="line-height:24px">
        <font color="#333333" face="Arial"><span style="font-size:20px">Hello!</span></font><br>
        <font color="#333333" face="Arial"><span style="font-size:16px">We received a request to reset the password for {{.Email}}.</span></font><br>
      </td>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
    </tr>
    <tr>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
      <td width="80%" height="72" bgcolor="#ffffff" align="center" valign="middle" style="font-size:18px;font-family:Arial">
        <a href="{{.Link}}" style="color:#c00">Reset your password</a>
      </td>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
    </tr>
    <tr>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
      <td width="80%" bgcolor="#ffffff" align="center" style="font-size:12px;color:#777;font-family:Arial">If you did not ask for this, you can ignore this email.</td>
      <td width="10%" bgcolor="#eeeeee">&nbsp;</td>
    </tr>
  </tbody>
</table>
`))

func GenerateResetEmailContent(brand, email, link string) (string, error) {
	var b strings.Builder
	err := resetEmailTemplate.Execute(&b, struct {
		Brand string
		Email string
		Link  string
	}{brand, email, link})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg      config.SMTPConfig
	brand    string
	log      zerolog.Logger
	sendMail sendMailFunc
}

func NewSMTPMailer(cfg config.SMTPConfig, brand string, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, brand: brand, log: log, sendMail: smtp.SendMail}
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	body, err := GenerateResetEmailContent(m.brand, email, link)
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}
	return m.SendingEmail(email, "Reset your "+m.brand+" password", body)
}

func (m *SMTPMailer) SendingEmail(to, subject, body string) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("incomplete SMTP configuration: host=%q, port=%q, username=%q",
			m.cfg.Host, m.cfg.Port, m.cfg.Username)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	from := m.cfg.Username
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	message := "From: " + from + "\n" +
		"To: " + to + "\n" +
		"Subject: " + subject + "\n" +
		mime + "\n" +
		body

	m.log.Debug().Str("to", to).Str("addr", addr).Msg("sending email")
	if err := m.sendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("SMTP send error: %w", err)
	}
	m.log.Info().Str("to", to).Msg("email sent")
	return nil
}

// LogMailer writes reset links to the log instead of sending them. Used by the memory driver.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.log.Info().Str("to", email).Str("link", link).Msg("password reset link")
	return nil
}
