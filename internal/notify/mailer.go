// Package notify 负责联系表单提交后的邮件通知。
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ErrMailerDisabled 表示未配置邮件服务，通知被跳过。
var ErrMailerDisabled = errors.New("email service not configured")

// Message 是一封待发送的邮件。
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Mailer 发送邮件。
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type resendEmails interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer 通过 Resend API 发送邮件。
type ResendMailer struct {
	emails resendEmails
}

// NewResendMailer 使用 API Key 创建 Resend 客户端。
func NewResendMailer(apiKey string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := m.emails.Send(&resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	if resp == nil || resp.Id == "" {
		return errors.New("resend send: empty response id")
	}
	return nil
}

// DisabledMailer 在缺少 RESEND_API_KEY 时使用，所有发送都返回 ErrMailerDisabled。
type DisabledMailer struct{}

func (DisabledMailer) Send(context.Context, Message) error {
	return ErrMailerDisabled
}

// NewMailer 有 API Key 时返回 Resend 实现，否则返回 DisabledMailer。
func NewMailer(apiKey string) Mailer {
	if apiKey == "" {
		return DisabledMailer{}
	}
	return NewResendMailer(apiKey)
}
