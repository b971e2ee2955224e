package service

import (
	"context"

	"fortune-backend/internal/logger"
	"fortune-backend/internal/model"
)

const (
	TaskKindBazi       = "bazi"
	TaskKindDivination = "divination"
)

// SubmitBazi 先同步排盘校验输入，再把解读放进任务队列
func (r *Reader) SubmitBazi(ctx context.Context, reg *TaskRegistry, in model.BirthInput) (model.TaskStatus, bool, error) {
	if _, _, err := r.Chart(in); err != nil {
		return model.TaskStatus{}, false, err
	}
	reqID := logger.RequestID(ctx)
	status, created := reg.Submit(TaskKindBazi, in.RequestID, func(taskCtx context.Context) (TaskResult, error) {
		reading, err := r.ComputeBazi(logger.WithRequest(taskCtx, reqID), in, true)
		if err != nil {
			return TaskResult{}, err
		}
		if err := taskCtx.Err(); err != nil {
			return TaskResult{}, err
		}
		return TaskResult{Bazi: reading}, nil
	})
	return status, created, nil
}

// SubmitDivination 起卦时间取提交时刻，解读在任务中完成
func (r *Reader) SubmitDivination(ctx context.Context, reg *TaskRegistry, in model.DivinationInput) (model.TaskStatus, bool, error) {
	h, method, castAt, err := r.Cast(in)
	if err != nil {
		return model.TaskStatus{}, false, err
	}
	reqID := logger.RequestID(ctx)
	status, created := reg.Submit(TaskKindDivination, in.RequestID, func(taskCtx context.Context) (TaskResult, error) {
		reading := &model.DivinationReading{
			Question: in.Question,
			Hexagram: HexagramView(h, method, castAt),
		}
		reading.Interpretation = r.interpretDivination(logger.WithRequest(taskCtx, reqID), h, method, in.Question)
		if err := taskCtx.Err(); err != nil {
			return TaskResult{}, err
		}
		return TaskResult{Divination: reading}, nil
	})
	return status, created, nil
}
