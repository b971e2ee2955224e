// Package mail 邀请码通知邮件
package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
)

// Mailer SMTP over TLS 发信
type Mailer struct {
	cfg  config.MailConfig
	send func(addr string, cfg config.MailConfig, to, msg string) error
}

func New(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: sendTLS}
}

// SendMail 发送 HTML 邮件
func (m *Mailer) SendMail(to, subject, body string) error {
	if m.cfg.Host == "" || m.cfg.User == "" || m.cfg.Password == "" {
		return fmt.Errorf("邮件配置不完整，请检查 SMTP_HOST, SMTP_USER, SMTP_PASS")
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.cfg.User, to, subject, body)
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	return m.send(addr, m.cfg, to, msg)
}

// SendInviteCode 通知所有 NOTIFY_EMAILS，全部收件人都尝试一次，返回合并后的错误
func (m *Mailer) SendInviteCode(code string) error {
	if len(m.cfg.NotifyEmails) == 0 {
		return fmt.Errorf("未配置通知邮箱 NOTIFY_EMAILS")
	}

	subject := "【命理占卜】邀请码已更新"
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>命理占卜 - 邀请码更新通知</h2>
	<p>新的邀请码为：</p>
	<div style="padding: 20px; text-align: center; font-size: 24px; font-family: monospace; letter-spacing: 2px;">%s</div>
	<p style="color: #64748b; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
</div>`, code)

	log := logger.Named("Mail")
	var errs []error
	for _, to := range m.cfg.NotifyEmails {
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		if err := m.SendMail(to, subject, body); err != nil {
			log.Warn().Err(err).Str("to", to).Msg("发送邀请码通知失败")
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		log.Info().Str("to", to).Msg("邀请码通知已发送")
	}
	return errors.Join(errs...)
}

func sendTLS(addr string, cfg config.MailConfig, to, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("连接邮件服务器失败: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	defer client.Close()

	if err := client.Auth(smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)); err != nil {
		return fmt.Errorf("邮件认证失败: %w", err)
	}
	if err := client.Mail(cfg.User); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("获取写入器失败: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("关闭写入器失败: %w", err)
	}
	return client.Quit()
}
