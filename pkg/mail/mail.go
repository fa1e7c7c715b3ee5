// Package mail 发送邀请邮件。SMTP 未配置时只记录日志。
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"survey_backend/internal/config"
	"survey_backend/pkg/logger"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/smtppool"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender 返回投递 id
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
	Close()
}

type SMTPSender struct {
	pool *smtppool.Pool
	from string
}

func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	timeout := time.Duration(cfg.SendTimeout) * time.Second
	pool, err := smtppool.New(smtppool.Opt{
		Host:            cfg.Host,
		Port:            cfg.Port,
		MaxConns:        cfg.MaxConns,
		IdleTimeout:     timeout,
		PoolWaitTimeout: timeout,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureTLS,
			ServerName:         cfg.Host,
		},
		Auth: auth,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp pool: %w", err)
	}
	return &SMTPSender{pool: pool, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.New().String()
	err := s.pool.Send(smtppool.Email{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    []byte(msg.Text),
		HTML:    []byte(msg.HTML),
	})
	if err != nil {
		return "", err
	}

	logger.Log.Info("Email sent",
		zap.String("messageId", id),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return id, nil
}

func (s *SMTPSender) Close() {
	s.pool.Close()
}

// LogSender 不发送，只记录
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	preview := msg.Text
	if len([]rune(preview)) > 100 {
		preview = string([]rune(preview)[:100])
	}
	logger.Log.Info("Email not sent, SMTP not configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("preview", preview),
	)
	return fmt.Sprintf("simulated-%d", time.Now().UnixNano()), nil
}

func (LogSender) Close() {}

// New 按配置选择 SMTP 或仅日志
func New(cfg *config.SMTPConfig) (Sender, error) {
	if !cfg.Configured() {
		logger.Log.Warn("SMTP not configured, invitation emails will only be logged")
		return LogSender{}, nil
	}
	return NewSMTPSender(cfg)
}
