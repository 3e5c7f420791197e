// internal/storage/breaker.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type compensatingKey struct{}

// Compensating 將 ctx 標記為補償寫入（例如還原已扣款的帳戶）。
// 補償寫入若被熔斷器擋下，先前的部分寫入就無法撤銷。
func Compensating(ctx context.Context) context.Context {
	return context.WithValue(ctx, compensatingKey{}, true)
}

func isCompensating(ctx context.Context) bool {
	v, _ := ctx.Value(compensatingKey{}).(bool)
	return v
}

// BreakerConfig 設定熔斷條件。
type BreakerConfig struct {
	Name                string
	ConsecutiveFailures uint32        // 連續失敗幾次後開路
	Timeout             time.Duration // 開路後多久進入半開
}

// BreakerStore 以熔斷器包裝另一個 Store。
// 後端持續故障時直接回傳 gobreaker.ErrOpenState，不再把請求壓到已失效的後端。
// 不會重試；ErrNotFound 不計為失敗。
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore 建立熔斷裝飾器。logger 可為 nil。
func NewBreakerStore(next Store, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "store"
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// State 回傳目前熔斷狀態。
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) Get(ctx context.Context, key []byte) (Record, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		rec, err := s.next.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return Record{}, wrapBreaker(err)
	}
	if v == nil {
		return Record{}, ErrNotFound
	}
	return v.(Record), nil
}

// Put 寫入記錄。以 Compensating 標記的寫入不經熔斷器，開路時仍會送達後端，
// 也不計入失敗次數。
func (s *BreakerStore) Put(ctx context.Context, key []byte, rec Record) error {
	if isCompensating(ctx) {
		return s.next.Put(ctx, key, rec)
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Put(ctx, key, rec)
	})
	return wrapBreaker(err)
}

func (s *BreakerStore) Delete(ctx context.Context, key []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Delete(ctx, key)
	})
	return wrapBreaker(err)
}

// Close 關閉底層後端（若其可關閉）。
func (s *BreakerStore) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func wrapBreaker(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("storage: breaker: %w", err)
	}
	return err
}
