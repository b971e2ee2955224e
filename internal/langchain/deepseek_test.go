package langchain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortune-backend/internal/bazi"
	"fortune-backend/internal/config"
	"fortune-backend/internal/meihua"
)

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:            "deepseek",
		APIKey:              "sk-test",
		BaseURL:             baseURL,
		Model:               "deepseek-chat",
		Temperature:         0.7,
		Timeout:             5 * time.Second,
		BaziMaxTokens:       2000,
		DivinationMaxTokens: 1000,
	}
}

func TestChatClientSuccess(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"  # 解读\n\n内容  \n"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	c := NewChatClient(testConfig(srv.URL+"/v1/"), nil)
	chart := bazi.ComputePillars(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), bazi.Male)
	text, err := c.Interpret(context.Background(), BaziPrompt(chart, 2000))
	require.NoError(t, err)
	assert.Equal(t, "# 解读\n\n内容", text)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "庚辰 庚寅 戊寅 甲巳")
	assert.Contains(t, got.Messages[0].Content, "性别：男")
}

func TestChatClientMissingCredential(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""
	_, err := NewChatClient(cfg, nil).Interpret(context.Background(), Prompt{Content: "x"})
	assert.True(t, errors.Is(err, ErrCredentialMissing))
	assert.False(t, called)
	assert.Equal(t, "请先设置DeepSeek API Key", UserMessage(err))
}

func TestChatClientErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   Kind
	}{
		{"bad status", http.StatusUnauthorized, `{"error":"unauthorized"}`, KindNetworkFailure},
		{"not json", http.StatusOK, `<html>oops</html>`, KindResponseParseFailure},
		{"no choices", http.StatusOK, `{"choices":[]}`, KindResponseParseFailure},
		{"no content", http.StatusOK, `{"choices":[{"message":{}}]}`, KindResponseParseFailure},
		{"null content", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":null}}]}`, KindResponseParseFailure},
		{"gateway html", http.StatusBadGateway, `<html>502 Bad Gateway</html>`, KindNetworkFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewChatClient(testConfig(srv.URL), nil).Interpret(context.Background(), Prompt{Content: "x"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.True(t, strings.HasPrefix(UserMessage(err), "获取解释失败: "))
		})
	}
}

func TestChatClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewChatClient(testConfig(url), nil).Interpret(context.Background(), Prompt{Content: "x"})
	assert.True(t, errors.Is(err, ErrNetworkFailure))
}

func TestChatClientContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	// 先放行处理函数，srv.Close 才不会一直等待
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := NewChatClient(testConfig(srv.URL), nil).Interpret(ctx, Prompt{Content: "x"})
	assert.Equal(t, KindNetworkFailure, KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewInterpreterWithoutKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	_, err := NewInterpreter(context.Background(), cfg, nil).Interpret(context.Background(), Prompt{})
	assert.True(t, errors.Is(err, ErrCredentialMissing))
}

func TestDivinationPrompt(t *testing.T) {
	h := meihua.FromSum(15)
	p := DivinationPrompt(h, meihua.MethodNumber, "  ", 1000)
	assert.Equal(t, "divination", p.Topic)
	assert.Equal(t, 1000, p.MaxTokens)
	assert.Contains(t, p.Content, h.String())
	assert.Contains(t, p.Content, "起卦方法：数字起卦")
	assert.Contains(t, p.Content, "未提供具体问题")

	p = DivinationPrompt(h, meihua.MethodNumber, "事业如何", 1000)
	assert.Contains(t, p.Content, "问题：事业如何")
}

func TestErrorKinds(t *testing.T) {
	err := networkError("boom %d", 1)
	assert.True(t, errors.Is(err, ErrNetworkFailure))
	assert.False(t, errors.Is(err, ErrResponseParseFailure))
	assert.Equal(t, "获取解释失败: boom 1", UserMessage(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("other")))
	assert.Equal(t, "", UserMessage(nil))
}
