// Package mailer 提供邮件通知功能
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender 邮件发送接口
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Config 邮件配置
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender 基于 SMTP 的邮件发送器
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender 创建 SMTP 邮件发送器
func NewSMTPSender(cfg *Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send 发送邮件
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// Noop 空实现，未配置邮件服务时使用
type Noop struct{}

// Send 丢弃邮件
func (Noop) Send(to, subject, htmlBody string) error {
	return nil
}

// Recorder 记录发送的邮件，用于测试
type Recorder struct {
	Sent []RecordedMail
}

// RecordedMail 记录的邮件
type RecordedMail struct {
	To      string
	Subject string
	Body    string
}

// Send 记录邮件
func (r *Recorder) Send(to, subject, htmlBody string) error {
	r.Sent = append(r.Sent, RecordedMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
