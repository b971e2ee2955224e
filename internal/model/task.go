package model

import "time"

// 任务状态
const (
	TaskPending  = "pending"
	TaskRunning  = "running"
	TaskDone     = "done"
	TaskFailed   = "failed"
	TaskCanceled = "canceled"
)

// TaskStatus 异步解读任务状态
type TaskStatus struct {
	TaskID     string             `json:"task_id"`
	Kind       string             `json:"kind"` // bazi, divination
	Status     string             `json:"status"`
	Bazi       *BaziReading       `json:"bazi,omitempty"`
	Divination *DivinationReading `json:"divination,omitempty"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	ExpiresAt  time.Time          `json:"expires_at"`
}
