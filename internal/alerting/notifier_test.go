package alerting

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testNote() Notification {
	return Notification{
		TargetID:  "T CrB",
		Magnitude: decimal.RequireFromString("10.3"),
		Threshold: decimal.RequireFromString("10.0"),
		JD:        decimal.RequireFromString("2460002.5"),
		Timestamp: time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC),
		Band:      "V",
		Source:    "lcg",
	}
}

func TestRenderSubject(t *testing.T) {
	subject := renderSubject(testNote())
	if subject != "T CrB alert: V=10.300 (JD 2460002.50000)" {
		t.Fatalf("邮件主题格式不正确: %q", subject)
	}
}

func TestRenderBody(t *testing.T) {
	body := renderBody(testNote())
	for _, want := range []string{"dimmed past V=10.00", "Latest V: 10.300", "JD: 2460002.50000", "Band: V"} {
		if !strings.Contains(body, want) {
			t.Fatalf("邮件正文缺少 %q:\n%s", want, body)
		}
	}
}

func TestNewEmailNotifierValidation(t *testing.T) {
	logger := zerolog.Nop()

	if _, err := NewEmailNotifier(EmailOptions{Recipients: []string{"a@b.c"}}, logger); err == nil {
		t.Fatal("缺少 SMTP host 应报错")
	}
	if _, err := NewEmailNotifier(EmailOptions{Host: "smtp.example.com"}, logger); err == nil {
		t.Fatal("缺少收件人应报错")
	}
}

func TestNewEmailNotifierDefaults(t *testing.T) {
	n, err := NewEmailNotifier(EmailOptions{
		Host:       "smtp.example.com",
		Port:       465,
		Username:   "sender@example.com",
		Password:   "secret",
		Recipients: []string{"a@b.c"},
		UseTLS:     true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}
	if n.opts.From != "sender@example.com" {
		t.Fatalf("From 应回退到 Username, 实际 %q", n.opts.From)
	}
	if n.opts.Timeout != 30*time.Second {
		t.Fatalf("Timeout 应取默认值, 实际 %s", n.opts.Timeout)
	}
}
