package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"fortune-backend/internal/logger"
	"fortune-backend/internal/model"
)

// TaskResult 任务产出，按任务类型填一项
type TaskResult struct {
	Bazi       *model.BaziReading
	Divination *model.DivinationReading
}

// TaskFunc 任务体，ctx 在取消任务或关闭注册表时结束
type TaskFunc func(ctx context.Context) (TaskResult, error)

type readingTask struct {
	id        string
	kind      string
	status    string
	requestID string
	result    TaskResult
	err       string
	cancel    context.CancelFunc
	createdAt time.Time
	expiresAt time.Time
}

// TaskRegistry 异步解读任务：并发上限、过期清理、按 request_id 去重
type TaskRegistry struct {
	mu        sync.Mutex
	tasks     map[string]*readingTask
	byRequest map[string]string

	sem  *semaphore.Weighted
	ttl  time.Duration
	now  func() time.Time
	wg   sync.WaitGroup
	base context.Context
	stop context.CancelFunc
}

// NewTaskRegistry concurrency<=0 时为 3，ttl<=0 时为 30 分钟
func NewTaskRegistry(concurrency int, ttl time.Duration) *TaskRegistry {
	if concurrency <= 0 {
		concurrency = 3
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	base, stop := context.WithCancel(context.Background())
	return &TaskRegistry{
		tasks:     make(map[string]*readingTask),
		byRequest: make(map[string]string),
		sem:       semaphore.NewWeighted(int64(concurrency)),
		ttl:       ttl,
		now:       time.Now,
		base:      base,
		stop:      stop,
	}
}

// Submit 提交任务；同一 request_id 的未过期任务直接返回，created 为 false
func (r *TaskRegistry) Submit(kind, requestID string, fn TaskFunc) (status model.TaskStatus, created bool) {
	requestID = strings.TrimSpace(requestID)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupExpiredLocked(now)

	if requestID != "" {
		if existingID, ok := r.byRequest[requestID]; ok {
			if t, ok := r.tasks[existingID]; ok {
				return buildTaskStatus(t), false
			}
			delete(r.byRequest, requestID)
		}
	}

	ctx, cancel := context.WithCancel(r.base)
	t := &readingTask{
		id:        uuid.NewString(),
		kind:      kind,
		status:    model.TaskPending,
		requestID: requestID,
		cancel:    cancel,
		createdAt: now,
		expiresAt: now.Add(r.ttl),
	}
	r.tasks[t.id] = t
	if requestID != "" {
		r.byRequest[requestID] = t.id
	}

	r.wg.Add(1)
	go r.run(ctx, t, fn)
	return buildTaskStatus(t), true
}

// Get 查询任务状态
func (r *TaskRegistry) Get(taskID string) (model.TaskStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupExpiredLocked(r.now())
	t, ok := r.tasks[taskID]
	if !ok {
		return model.TaskStatus{}, false
	}
	return buildTaskStatus(t), true
}

// Cancel 取消任务；已结束的任务原样返回
func (r *TaskRegistry) Cancel(taskID string) (model.TaskStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupExpiredLocked(r.now())
	t, ok := r.tasks[taskID]
	if !ok {
		return model.TaskStatus{}, false
	}

	switch t.status {
	case model.TaskDone, model.TaskFailed, model.TaskCanceled:
	default:
		t.status = model.TaskCanceled
		t.err = "任务已取消"
		t.cancel()
		r.releaseRequestLocked(t)
	}
	return buildTaskStatus(t), true
}

// Close 取消所有任务并等待退出
func (r *TaskRegistry) Close() {
	r.stop()
	r.wg.Wait()
}

func (r *TaskRegistry) run(ctx context.Context, t *readingTask, fn TaskFunc) {
	defer r.wg.Done()
	defer t.cancel()
	log := logger.C(ctx, "Task").With().Str("task_id", t.id).Str("kind", t.kind).Logger()

	if err := r.sem.Acquire(ctx, 1); err != nil {
		r.finish(t, TaskResult{}, err)
		return
	}
	defer r.sem.Release(1)

	r.mu.Lock()
	if t.status != model.TaskPending {
		r.mu.Unlock()
		return
	}
	t.status = model.TaskRunning
	r.mu.Unlock()

	log.Debug().Msg("任务开始")
	res, err := fn(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("任务失败")
	}
	r.finish(t, res, err)
}

func (r *TaskRegistry) finish(t *readingTask, res TaskResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.status == model.TaskCanceled {
		return
	}
	switch {
	case err != nil && r.base.Err() != nil:
		t.status = model.TaskCanceled
		t.err = "服务关闭，任务已取消"
	case err != nil:
		t.status = model.TaskFailed
		t.err = err.Error()
	default:
		t.status = model.TaskDone
		t.result = res
	}
	r.releaseRequestLocked(t)
}

func (r *TaskRegistry) releaseRequestLocked(t *readingTask) {
	if t.requestID != "" && r.byRequest[t.requestID] == t.id {
		delete(r.byRequest, t.requestID)
	}
}

func (r *TaskRegistry) cleanupExpiredLocked(now time.Time) {
	for id, t := range r.tasks {
		if now.After(t.expiresAt) {
			t.cancel()
			delete(r.tasks, id)
		}
	}
	for rid, tid := range r.byRequest {
		if _, ok := r.tasks[tid]; !ok {
			delete(r.byRequest, rid)
		}
	}
}

func buildTaskStatus(t *readingTask) model.TaskStatus {
	out := model.TaskStatus{
		TaskID:    t.id,
		Kind:      t.kind,
		Status:    t.status,
		Error:     t.err,
		CreatedAt: t.createdAt,
		ExpiresAt: t.expiresAt,
	}
	if t.status == model.TaskDone {
		out.Bazi = t.result.Bazi
		out.Divination = t.result.Divination
	}
	return out
}
