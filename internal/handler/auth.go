package handler

import (
	"crypto/hmac"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fortune-backend/internal/config"
	"fortune-backend/internal/logger"
)

type VerifyRequest struct {
	Code string `json:"code"`
}

const tokenIssuer = "fortune-backend"

// Signer 邀请码校验与 token 签发，token 为 HS256 JWT
type Signer struct {
	mu         sync.RWMutex
	inviteCode string

	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner 未配置 TOKEN_SECRET 时使用随机密钥，重启后旧 token 失效
func NewSigner(cfg config.AccessConfig) *Signer {
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("生成token密钥失败: %v", err))
		}
		if cfg.InviteCode != "" || cfg.RotateEvery > 0 {
			logger.Named("Auth").Warn().Msg("未设置TOKEN_SECRET，使用随机密钥")
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Signer{inviteCode: cfg.InviteCode, secret: secret, ttl: ttl, now: time.Now}
}

// Enabled 是否配置了邀请码
func (s *Signer) Enabled() bool {
	return s.currentCode() != ""
}

// SetInviteCode 更换邀请码，已签发的 token 在有效期内仍然可用
func (s *Signer) SetInviteCode(code string) {
	s.mu.Lock()
	s.inviteCode = code
	s.mu.Unlock()
}

func (s *Signer) currentCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inviteCode
}

// Token 签发 token
func (s *Signer) Token() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate 校验签名、签发方与有效期
func (s *Signer) Validate(tokenString string) bool {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return err == nil && token.Valid
}

// Verify 验证邀请码
func (s *Signer) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "请求参数错误",
		})
		return
	}

	// 未配置邀请码直接通过
	code := s.currentCode()
	if code == "" || hmac.Equal([]byte(req.Code), []byte(code)) {
		token, err := s.Token()
		if err != nil {
			logger.C(c.Request.Context(), "Auth").Error().Err(err).Msg("签发token失败")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "签发token失败"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "验证成功",
			"token":   token,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": "邀请码错误",
	})
}

// Middleware 认证中间件
func (s *Signer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.Next()
			return
		}

		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "未授权访问"})
			return
		}
		if !s.Validate(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token无效或已过期"})
			return
		}
		c.Next()
	}
}
