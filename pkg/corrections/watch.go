package corrections

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"fortune-backend/internal/bazi"
	"fortune-backend/internal/logger"
)

const reloadDelay = 200 * time.Millisecond

// Watch 监听数据库文件变化并重新加载，直到 ctx 结束
//
// Write 以改名方式替换文件，所以监听的是所在目录。加载失败时保留旧表，只记日志。
func Watch(ctx context.Context, dbPath string, onLoad func(*bazi.Corrections)) error {
	dbPath = ResolvePath(dbPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("监听目录失败: %w", err)
	}

	go func() {
		defer watcher.Close()
		log := logger.Named("Corrections")
		name := filepath.Base(dbPath)

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
					continue
				}
				// 合并短时间内的多次事件
				if timer == nil {
					timer = time.NewTimer(reloadDelay)
				} else {
					timer.Reset(reloadDelay)
				}
				fire = timer.C
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("文件监听出错")
			case <-fire:
				fire = nil
				c, err := Load(dbPath)
				if err != nil {
					log.Warn().Err(err).Str("path", dbPath).Msg("重新加载修正表失败")
					continue
				}
				log.Info().Str("path", dbPath).Int("entries", c.Len()).Msg("修正表已重新加载")
				onLoad(c)
			}
		}
	}()
	return nil
}
