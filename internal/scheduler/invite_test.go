package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorder struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (r *recorder) SetInviteCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func (r *recorder) SendInviteCode(code string) error {
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}

func TestGenerateRandomCode(t *testing.T) {
	code := GenerateRandomCode(8)
	assert.Len(t, code, 8)
	for _, c := range code {
		assert.True(t, strings.ContainsRune(codeCharset, c), string(c))
	}
	assert.Len(t, GenerateRandomCode(0), 6)
}

func TestRotate(t *testing.T) {
	rec := &recorder{err: errors.New("smtp down")}
	r := NewInviteRotator(rec, rec, 0, 6)
	r.generate = func(int) string { return "FIXED1" }

	assert.Equal(t, "FIXED1", r.Rotate())
	assert.Equal(t, []string{"FIXED1"}, rec.codes)

	// 未配置通知
	r = NewInviteRotator(rec, nil, 0, 6)
	assert.Len(t, r.Rotate(), 6)
}

func TestRunRotatesUntilCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)
	rec := &recorder{}
	r := NewInviteRotator(rec, nil, 10*time.Millisecond, 6)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return rec.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRunOnceWhenDisabled(t *testing.T) {
	rec := &recorder{}
	NewInviteRotator(rec, nil, 0, 6).Run(context.Background())
	assert.Equal(t, 1, rec.count())
}
