// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/config"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

const templateMensagemSimples = "simple_message.html"

const (
	AssuntoNovoBem             = "[Bens Físicos] Novo bem cadastrado"
	AssuntoCadastroNaoAprovado = "[Bens Físicos] Cadastro não aprovado"
	AssuntoMovimentacaoAceite  = "[Bens Físicos] Movimentação recebida para aceite"
	AssuntoMovimentacaoAceita  = "[Bens físicos] Sua solicitação de movimentação foi aceita."
	AssuntoMovimentacaoRejeit  = "[Bens físicos] Sua solicitação de movimentação foi rejeitada."
	AssuntoMovimentacaoCancel  = "[Bens físicos] Sua solicitação de movimentação foi cancelada."
)

type Email struct {
	Subject  string
	Template string
	Context  map[string]interface{}
	To       []string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPMailer renders the named template and delivers it with net/smtp.
// Without a host configured it only logs the message.
type SMTPMailer struct {
	config config.EmailConfig
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{config: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	body, err := renderTemplate(email.Template, email.Context)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	if m.config.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      email.To,
			"subject": email.Subject,
		}).Info("SMTP not configured, email not sent")
		return nil
	}

	from := m.config.FromEmail
	msg := "From: " + m.config.FromName + " <" + from + ">\r\n" +
		"To: " + strings.Join(email.To, ", ") + "\r\n" +
		"Subject: " + email.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + body

	var auth smtp.Auth
	if m.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)
	}
	addr := m.config.SMTPHost + ":" + m.config.SMTPPort

	if err := smtp.SendMail(addr, auth, from, email.To, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

var emailTemplates = map[string]*template.Template{
	templateMensagemSimples: template.Must(template.New(templateMensagemSimples).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.subject}}</title></head>
<body style="font-family: Arial, sans-serif; color: #42474a;">
  <h2>{{.title}}</h2>
  <p>{{.subtitle}}</p>
  {{if .body}}<p>{{.body}}</p>{{end}}
  <p style="font-size: 12px; color: #8c8c8c;">Secretaria Municipal de Educação de São Paulo</p>
</body>
</html>`)),
}

func renderTemplate(name string, data map[string]interface{}) (string, error) {
	tmpl, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NotificationService decides when and to whom an email goes.
type NotificationService struct {
	store      store.Store
	mailer     Mailer
	adminURL   string
	background func(func())
}

func NewNotificationService(st store.Store, mailer Mailer, adminURL string) *NotificationService {
	return &NotificationService{
		store:      st,
		mailer:     mailer,
		adminURL:   adminURL,
		background: func(f func()) { go f() },
	}
}

func mensagem(subject, subtitle, body string) map[string]interface{} {
	dados := map[string]interface{}{
		"subject":  subject,
		"title":    "Olá!",
		"subtitle": subtitle,
	}
	if body != "" {
		dados["body"] = body
	}
	return dados
}

func emailsDe(usuarios []models.Usuario) []string {
	var emails []string
	for _, u := range usuarios {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails
}

func (s *NotificationService) enviar(email Email) {
	if len(email.To) == 0 {
		return
	}
	s.background(func() {
		if err := s.mailer.Send(context.Background(), email); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"to":      email.To,
				"subject": email.Subject,
			}).Error("Failed to send email")
		}
	})
}

func (s *NotificationService) usuariosAtivos(ctx context.Context, papel models.Papel, unidadeID *uint) []models.Usuario {
	var usuarios []models.Usuario
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		usuarios, err = tx.ListUsuariosAtivos(ctx, papel, unidadeID)
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("papel", papel).Error("Failed to load email recipients")
	}
	return usuarios
}

func (s *NotificationService) usuario(ctx context.Context, id uint) *models.Usuario {
	var u *models.Usuario
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		u, err = tx.GetUsuario(ctx, id)
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("usuario_id", id).Error("Failed to load email recipient")
		return nil
	}
	return u
}

func destinatario(u *models.Usuario) []string {
	if u == nil || u.Email == "" {
		return nil
	}
	return []string{u.Email}
}

func (s *NotificationService) NovoBemCadastrado(ctx context.Context, bem *models.BemPatrimonial) {
	subtitle := fmt.Sprintf("O Bem Patrimonial \"%s\" foi cadastrado e aguarda aprovação. Acesse %s para avaliar o cadastro.",
		bem.Identificacao(), s.adminURL)

	s.enviar(Email{
		Subject:  AssuntoNovoBem,
		Template: templateMensagemSimples,
		Context:  mensagem(AssuntoNovoBem, subtitle, ""),
		To:       emailsDe(s.usuariosAtivos(ctx, models.PapelGestorPatrimonio, nil)),
	})
}

func (s *NotificationService) CadastroNaoAprovado(ctx context.Context, bem *models.BemPatrimonial, observacao string) {
	url := fmt.Sprintf("%s/bens/%d", s.adminURL, bem.ID)
	subtitle := fmt.Sprintf("O cadastro do Bem Patrimonial \"%s\" foi reprovado. Acesse %s para realizar os ajustes necessários. Mais detalhes abaixo.",
		bem.Identificacao(), url)

	s.enviar(Email{
		Subject:  AssuntoCadastroNaoAprovado,
		Template: templateMensagemSimples,
		Context:  mensagem(AssuntoCadastroNaoAprovado, subtitle, observacao),
		To:       destinatario(s.usuario(ctx, bem.CriadoPorID)),
	})
}

// MovimentacaoRecebida expects mov with asset and destination loaded.
func (s *NotificationService) MovimentacaoRecebida(ctx context.Context, mov *models.MovimentacaoBemPatrimonial) {
	destinoID := mov.UnidadeDestinoID
	emails := emailsDe(s.usuariosAtivos(ctx, models.PapelOperadorInventario, &destinoID))
	if len(emails) == 0 {
		return
	}

	subtitle := fmt.Sprintf("A Unidade Administrativa %s recebeu a movimentação do bem patrimonial %s para aceite. Acesse %s para concluir a movimentação.",
		mov.UnidadeDestino.Descricao(), mov.BemPatrimonial.Identificacao(), s.adminURL)

	s.enviar(Email{
		Subject:  AssuntoMovimentacaoAceite,
		Template: templateMensagemSimples,
		Context:  mensagem(AssuntoMovimentacaoAceite, subtitle, ""),
		To:       emails,
	})
}

func (s *NotificationService) MovimentacaoAceita(ctx context.Context, mov *models.MovimentacaoBemPatrimonial) {
	subtitle := fmt.Sprintf("A solicitação de movimentação do bem patrimonial %s foi aceita. Acesse %s para visualizar mais detalhes.",
		mov.BemPatrimonial.Identificacao(), s.adminURL)

	s.enviar(Email{
		Subject:  AssuntoMovimentacaoAceita,
		Template: templateMensagemSimples,
		Context:  mensagem(AssuntoMovimentacaoAceita, subtitle, ""),
		To:       destinatario(mov.SolicitadoPor),
	})
}

func (s *NotificationService) MovimentacaoRejeitada(ctx context.Context, mov *models.MovimentacaoBemPatrimonial, motivo string) {
	subtitle := fmt.Sprintf("A solicitação de movimentação do bem patrimonial %s foi rejeitada. Acesse %s para visualizar mais detalhes.",
		mov.BemPatrimonial.Identificacao(), s.adminURL)

	s.enviar(Email{
		Subject:  AssuntoMovimentacaoRejeit,
		Template: templateMensagemSimples,
		Context:  mensagem(AssuntoMovimentacaoRejeit, subtitle, motivo),
		To:       destinatario(mov.SolicitadoPor),
	})
}

func (s *NotificationService) MovimentacaoCancelada(ctx context.Context, mov *models.MovimentacaoBemPatrimonial) {
	subtitle := fmt.Sprintf("A solicitação de movimentação do bem patrimonial %s foi cancelada por %s. Acesse %s para visualizar mais detalhes.",
		mov.BemPatrimonial.Identificacao(), mov.CanceladoPor.NomeExibicao(), s.adminURL)

	s.enviar(Email{
		Subject:  AssuntoMovimentacaoCancel,
		Template: templateMensagemSimples,
		Context:  mensagem(AssuntoMovimentacaoCancel, subtitle, ""),
		To:       destinatario(mov.SolicitadoPor),
	})
}
