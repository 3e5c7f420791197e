// internal/worker/pool.go

// Package worker 提供固定容量的執行池：同一時間最多 Size() 個帳戶操作在執行。
// 每個操作在取得名額後一路執行到結束，唯一的阻塞點是帳戶鎖。
package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool 以加權號誌限制同時執行的工作數。
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// New 建立容量為 size 的執行池；size <= 0 時使用 runtime.NumCPU()。
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size 回傳執行池容量。
func (p *Pool) Size() int { return p.size }

// Do 等待空閒名額後執行 fn。
// 只有「等待名額」會因 ctx 取消而中止；fn 一旦開始便執行到完成。
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	fn()
	return nil
}
