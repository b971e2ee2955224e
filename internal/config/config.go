// Package config 从环境变量汇总服务配置
package config

import (
	"time"
)

// Config 服务配置
type Config struct {
	Port         string
	AllowOrigins []string

	// Location 起卦时间与出生时间的默认时区
	Location *time.Location

	LLM         LLMConfig
	Cache       CacheConfig
	Tasks       TaskConfig
	Access      AccessConfig
	Mail        MailConfig
	Corrections CorrectionsConfig
}

// LLMConfig 解读服务配置
type LLMConfig struct {
	Provider    string // deepseek | gemini
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration

	// 八字解读与卦象解读的 max_tokens 分开配置
	BaziMaxTokens       int
	DivinationMaxTokens int
}

// CacheConfig 解读缓存配置
type CacheConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// TaskConfig 异步解读任务配置
type TaskConfig struct {
	Concurrency int
	TTL         time.Duration
}

// AccessConfig 邀请码访问控制，InviteCode 为空时不做校验
type AccessConfig struct {
	InviteCode  string
	TokenSecret string
	TokenTTL    time.Duration

	// RotateEvery 大于 0 时启动即生成随机邀请码并按周期轮换
	RotateEvery time.Duration
	CodeLength  int
}

// MailConfig 邀请码通知邮件，Host 为空时不发送
type MailConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	NotifyEmails []string
}

// Enabled 发信配置是否完整
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.User != "" && m.Password != "" && len(m.NotifyEmails) > 0
}

// CorrectionsConfig 外部修正表（sqlite）路径，为空时只用内置表
type CorrectionsConfig struct {
	Path  string
	Watch bool
}

// Load 读取环境变量
func Load() *Config {
	cfg := &Config{}

	cfg.Port = getEnvString("PORT", "8080")
	cfg.AllowOrigins = getEnvList("CORS_ALLOW_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"})
	cfg.Location = loadLocation(getEnvString("FORTUNE_TIMEZONE", "Asia/Shanghai"))

	cfg.LLM.Provider = getEnvString("LLM_PROVIDER", "deepseek")
	cfg.LLM.APIKey = getEnvString("DEEPSEEK_API_KEY", getEnvString("LLM_API_KEY", ""))
	if cfg.LLM.Provider == "gemini" {
		cfg.LLM.APIKey = getEnvString("GEMINI_API_KEY", cfg.LLM.APIKey)
	}
	cfg.LLM.BaseURL = getEnvString("LLM_BASE_URL", "https://api.deepseek.com/v1")
	cfg.LLM.Model = getEnvString("LLM_MODEL", defaultModel(cfg.LLM.Provider))
	cfg.LLM.Temperature = getEnvFloat("LLM_TEMPERATURE", 0.7)
	cfg.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", 60*time.Second)
	cfg.LLM.BaziMaxTokens = getEnvInt("LLM_BAZI_MAX_TOKENS", 2000)
	cfg.LLM.DivinationMaxTokens = getEnvInt("LLM_DIVINATION_MAX_TOKENS", 1000)

	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
	cfg.Cache.RedisAddr = getEnvString("REDIS_ADDR", "")
	cfg.Cache.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.Cache.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.Cache.TTL = getEnvDuration("CACHE_TTL", 24*time.Hour)

	cfg.Tasks.Concurrency = getEnvInt("TASK_CONCURRENCY", 3)
	cfg.Tasks.TTL = getEnvDuration("TASK_TTL", 30*time.Minute)

	cfg.Access.InviteCode = getEnvString("INVITE_CODE", "")
	cfg.Access.TokenSecret = getEnvString("TOKEN_SECRET", "")
	cfg.Access.TokenTTL = getEnvDuration("TOKEN_TTL", 7*24*time.Hour)
	cfg.Access.RotateEvery = getEnvDuration("INVITE_CODE_ROTATE", 0)
	cfg.Access.CodeLength = getEnvInt("INVITE_CODE_LENGTH", 6)

	cfg.Mail.Host = getEnvString("SMTP_HOST", "")
	cfg.Mail.Port = getEnvInt("SMTP_PORT", 465)
	cfg.Mail.User = getEnvString("SMTP_USER", "")
	cfg.Mail.Password = getEnvString("SMTP_PASS", "")
	cfg.Mail.NotifyEmails = getEnvList("NOTIFY_EMAILS", nil)

	cfg.Corrections.Path = getEnvString("CORRECTIONS_PATH", "")
	cfg.Corrections.Watch = getEnvBool("CORRECTIONS_WATCH", false)

	return cfg
}

// HasCredential 是否已配置 API Key
func (c LLMConfig) HasCredential() bool {
	return c.APIKey != ""
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return "deepseek-chat"
}

func loadLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}
