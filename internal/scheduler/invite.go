// Package scheduler 邀请码定时轮换
package scheduler

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"fortune-backend/internal/logger"
)

const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeSetter 接收新邀请码
type CodeSetter interface {
	SetInviteCode(code string)
}

// Notifier 通知管理员，可为 nil
type Notifier interface {
	SendInviteCode(code string) error
}

// GenerateRandomCode 生成随机邀请码，去掉了易混淆的 0/O/1/I
func GenerateRandomCode(length int) string {
	if length <= 0 {
		length = 6
	}
	code := make([]byte, length)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		code[i] = codeCharset[n.Int64()]
	}
	return string(code)
}

// InviteRotator 按周期生成新邀请码
type InviteRotator struct {
	setter   CodeSetter
	notifier Notifier
	every    time.Duration
	length   int
	generate func(int) string
}

func NewInviteRotator(setter CodeSetter, notifier Notifier, every time.Duration, length int) *InviteRotator {
	return &InviteRotator{
		setter:   setter,
		notifier: notifier,
		every:    every,
		length:   length,
		generate: GenerateRandomCode,
	}
}

// Rotate 生成并生效一个新邀请码；通知失败只记日志
func (r *InviteRotator) Rotate() string {
	code := r.generate(r.length)
	r.setter.SetInviteCode(code)

	log := logger.Named("Scheduler")
	if r.notifier == nil {
		log.Info().Str("code", code).Msg("邀请码已更新（未配置邮件通知）")
		return code
	}
	log.Info().Msg("邀请码已更新")
	if err := r.notifier.SendInviteCode(code); err != nil {
		log.Warn().Err(err).Msg("发送邀请码通知邮件失败")
	}
	return code
}

// Run 立即轮换一次，之后每 every 轮换，直到 ctx 结束
func (r *InviteRotator) Run(ctx context.Context) {
	r.Rotate()
	if r.every <= 0 {
		return
	}
	logger.Named("Scheduler").Info().Dur("every", r.every).Msg("邀请码将定时轮换")

	ticker := time.NewTicker(r.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Rotate()
		}
	}
}
