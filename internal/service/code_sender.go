package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resendlabs/resend-go"
	"github.com/sirupsen/logrus"
)

var ErrSenderNotConfigured = errors.New("email sender not configured")

type ResendCodeSender struct {
	client *resend.Client
	From   string
}

func NewResendCodeSender(apiKey string, from string) *ResendCodeSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendCodeSender{}
	}
	return &ResendCodeSender{
		client: resend.NewClient(apiKey),
		From:   from,
	}
}

func (s *ResendCodeSender) SendCode(ctx context.Context, email string, code string) error {
	if s.client == nil {
		return ErrSenderNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.From,
		To:      []string{email},
		Subject: "OTP Code",
		Html:    fmt.Sprintf("<p>Your OTP code: <strong>%s</strong></p>", code),
		Text:    fmt.Sprintf("Your OTP code: %s", code),
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// LogCodeSender stands in for a mail provider during local development.
type LogCodeSender struct {
	Logger logrus.FieldLogger
}

func (s LogCodeSender) SendCode(_ context.Context, email string, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{"email": email, "code": code}).Debug("one-time code issued")
	return nil
}
