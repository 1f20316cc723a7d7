package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"
)

// Notification 封装一次变暗告警的上下文。
type Notification struct {
	TargetID  string
	Magnitude decimal.Decimal
	Threshold decimal.Decimal
	JD        decimal.Decimal
	Timestamp time.Time
	Band      string
	Source    string
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// EmailOptions parameterise SMTP submission.
type EmailOptions struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
	UseTLS     bool
	Timeout    time.Duration
}

// EmailNotifier 通过 SMTP 发送文本告警邮件。
type EmailNotifier struct {
	opts   EmailOptions
	client *mail.Client
	logger zerolog.Logger
}

// NewEmailNotifier 构造邮件告警器。
func NewEmailNotifier(opts EmailOptions, logger zerolog.Logger) (*EmailNotifier, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("smtp host required")
	}
	if len(opts.Recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient required")
	}
	if opts.From == "" {
		opts.From = opts.Username
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	clientOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTimeout(opts.Timeout),
	}
	if opts.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}
	if opts.UseTLS {
		clientOpts = append(clientOpts, mail.WithSSL())
	}

	client, err := mail.NewClient(opts.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &EmailNotifier{
		opts:   opts,
		client: client,
		logger: logger.With().Str("component", "alert_email").Logger(),
	}, nil
}

// Notify 渲染并提交告警邮件。
func (n *EmailNotifier) Notify(ctx context.Context, note Notification) error {
	msg := mail.NewMsg()
	if err := msg.From(n.opts.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(n.opts.Recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}

	msg.Subject(renderSubject(note))
	msg.SetBodyString(mail.TypeTextPlain, renderBody(note))

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}

	n.logger.Info().Str("target", note.TargetID).
		Str("magnitude", note.Magnitude.String()).
		Str("jd", note.JD.String()).
		Int("recipients", len(n.opts.Recipients)).
		Msg("告警已发送 (Email)")
	return nil
}

func renderSubject(note Notification) string {
	return fmt.Sprintf("%s alert: V=%s (JD %s)", note.TargetID, note.Magnitude.StringFixed(3), note.JD.StringFixed(5))
}

func renderBody(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("%s dimmed past V=%s.\n\n", note.TargetID, note.Threshold.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Latest V: %s\n", note.Magnitude.StringFixed(3)))
	builder.WriteString(fmt.Sprintf("JD: %s\n", note.JD.StringFixed(5)))
	builder.WriteString(fmt.Sprintf("Observed: %s UTC\n", note.Timestamp.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("UTC Sent: %s\n", time.Now().UTC().Format(time.RFC3339)))
	if note.Band != "" {
		builder.WriteString(fmt.Sprintf("Band: %s\n", note.Band))
	}
	if note.Source != "" {
		builder.WriteString(fmt.Sprintf("Source: AAVSO (%s)\n", note.Source))
	}
	return builder.String()
}

var _ Notifier = (*EmailNotifier)(nil)
