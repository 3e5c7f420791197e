// internal/bank/bank.go

// Package bank 定義核心商業邏輯：帳戶建立、查詢、餘額調整、轉帳與刪除。
// 每個操作都在最小範圍的帳戶鎖內完成「讀 → 驗證 → 寫」：
// 單帳戶操作鎖該帳戶，轉帳同時鎖兩個帳戶（由 lock.Manager 保證固定取得順序）。
// 金額以 decimal.Decimal 表示，避免浮點誤差。
package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"moneytransfer/internal/lock"
	"moneytransfer/internal/storage"
)

// Engine 實作五個帳戶操作。
// - store：帳戶記錄的唯一擁有者；Engine 只持有操作期間的暫時拷貝。
// - locks：以帳戶 ID 為 key 的互斥鎖。
// - newID：產生全域唯一 ID（預設 UUID v4）。
type Engine struct {
	store  storage.Store
	locks  *lock.Manager
	logger *zap.Logger
	newID  func() string
}

// Option 調整 Engine 的可選元件。
type Option func(*Engine)

// WithLogger 設定 logger。
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLockManager 讓多個 Engine 共用同一個鎖管理器。
func WithLockManager(m *lock.Manager) Option {
	return func(e *Engine) {
		if m != nil {
			e.locks = m
		}
	}
}

// WithIDGenerator 替換帳戶 ID 產生器。產生的 ID 不可與既有帳戶重複。
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine 以指定的 Store 建立 Engine。
func NewEngine(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		locks:  lock.NewManager(),
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InFlight 回傳目前仍被引用的帳戶鎖數量。
func (e *Engine) InFlight() int {
	return e.locks.Len()
}

// AddAccount 建立餘額為 0 的新帳戶，回傳帳戶 JSON。
// ID 在取得鎖之前產生；新 ID 不可能被其他操作引用，因此這把鎖不會有競爭。
func (e *Engine) AddAccount(ctx context.Context, name string) (Result, error) {
	acc := Account{ID: e.newID(), Name: name, Balance: decimal.Zero}

	var res Result
	err := e.locks.Run(acc.ID, func() error {
		if err := e.store.Put(ctx, []byte(acc.ID), acc.record()); err != nil {
			return e.fault("put account", acc.ID, err)
		}
		payload, err := acc.Serialize()
		if err != nil {
			return fmt.Errorf("bank: serialize account %s: %w", acc.ID, err)
		}
		e.logger.Info("account added", zap.String("account_id", acc.ID), zap.String("name", acc.Name))
		res = Success(payload)
		return nil
	})
	return res, err
}

// GetAccount 回傳帳戶快照的 JSON。
func (e *Engine) GetAccount(ctx context.Context, id string) (Result, error) {
	var res Result
	err := e.locks.Run(id, func() error {
		acc, ok, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			res = Reject(ErrNotFound)
			return nil
		}
		payload, err := acc.Serialize()
		if err != nil {
			return fmt.Errorf("bank: serialize account %s: %w", id, err)
		}
		e.logger.Debug("account read", zap.String("account_id", id))
		res = Success(payload)
		return nil
	})
	return res, err
}

// ChangeBalance 將餘額加上 delta（可為負）；結果不得小於 0。
func (e *Engine) ChangeBalance(ctx context.Context, id string, delta decimal.Decimal) (Result, error) {
	var res Result
	err := e.locks.Run(id, func() error {
		acc, ok, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			res = Reject(ErrNotFound)
			return nil
		}
		next := acc.Balance.Add(delta)
		if next.IsNegative() {
			res = Reject(ErrNegativeBalance)
			return nil
		}

		acc.Balance = next
		if err := e.store.Put(ctx, []byte(id), acc.record()); err != nil {
			return e.fault("put account", id, err)
		}
		e.logger.Info("balance changed",
			zap.String("account_id", id),
			zap.String("delta", delta.String()),
			zap.String("balance", next.String()),
		)
		res = Success("")
		return nil
	})
	return res, err
}

// DeleteAccount 刪除餘額恰為 0 的帳戶。
func (e *Engine) DeleteAccount(ctx context.Context, id string) (Result, error) {
	var res Result
	err := e.locks.Run(id, func() error {
		acc, ok, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			res = Reject(ErrNotFound)
			return nil
		}
		if !acc.Balance.IsZero() {
			res = Reject(ErrBalanceNotZero)
			return nil
		}

		if err := e.store.Delete(ctx, []byte(id)); err != nil {
			return e.fault("delete account", id, err)
		}
		e.logger.Info("account deleted", zap.String("account_id", id))
		res = Success("")
		return nil
	})
	return res, err
}

// TransferMoney 由 fromID 轉 amount 到 toID。
// 1) 相同帳戶與非正數金額在取鎖前即拒絕 → 2) 同時持有兩把鎖後讀取雙方 →
// 3) 檢查存在性與餘額 → 4) 兩邊都確認後才依序寫入扣款與入帳。
// 入帳失敗時會嘗試還原扣款；還原也失敗則回傳 ErrPartialTransfer。
func (e *Engine) TransferMoney(ctx context.Context, fromID, toID string, amount decimal.Decimal) (Result, error) {
	if fromID == toID {
		return Reject(ErrSameAccount), nil
	}
	if !amount.IsPositive() {
		return Reject(ErrBadAmount), nil
	}

	var res Result
	err := e.locks.RunPair(fromID, toID, func() error {
		from, fromOK, err := e.load(ctx, fromID)
		if err != nil {
			return err
		}
		to, toOK, err := e.load(ctx, toID)
		if err != nil {
			return err
		}
		if !fromOK {
			res = Reject(ErrSourceNotFound)
			return nil
		}
		if !toOK {
			res = Reject(ErrDestinationNotFound)
			return nil
		}
		if from.Balance.Sub(amount).IsNegative() {
			res = Reject(ErrInsufficient)
			return nil
		}

		debited, credited := from, to
		debited.Balance = from.Balance.Sub(amount)
		credited.Balance = to.Balance.Add(amount)

		if err := e.store.Put(ctx, []byte(fromID), debited.record()); err != nil {
			return e.fault("debit account", fromID, err)
		}
		if err := e.store.Put(ctx, []byte(toID), credited.record()); err != nil {
			return e.rollbackDebit(ctx, from, toID, amount, err)
		}

		e.logger.Info("money transferred",
			zap.String("from", fromID),
			zap.String("to", toID),
			zap.String("amount", amount.String()),
		)
		res = Success("")
		return nil
	})
	return res, err
}

// load 讀取帳戶；不存在回傳 ok=false，只有 I/O 故障才回傳 error。
func (e *Engine) load(ctx context.Context, id string) (Account, bool, error) {
	rec, err := e.store.Get(ctx, []byte(id))
	if errors.Is(err, storage.ErrNotFound) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, e.fault("get account", id, err)
	}
	return fromRecord(rec), true, nil
}

// rollbackDebit 在入帳失敗後把來源帳戶寫回原值。
// 還原寫入標記為補償寫入，熔斷器開路時仍會嘗試。
func (e *Engine) rollbackDebit(ctx context.Context, from Account, toID string, amount decimal.Decimal, cause error) error {
	fields := []zap.Field{
		zap.String("from", from.ID),
		zap.String("to", toID),
		zap.String("amount", amount.String()),
		zap.NamedError("credit_error", cause),
	}

	if err := e.store.Put(storage.Compensating(ctx), []byte(from.ID), from.record()); err != nil {
		e.logger.Error("transfer left accounts inconsistent: debit applied, credit and rollback failed",
			append(fields, zap.NamedError("rollback_error", err))...)
		return fmt.Errorf("%w: from %s to %s amount %s: credit: %w, rollback: %w",
			ErrPartialTransfer, from.ID, toID, amount, cause, err)
	}

	e.logger.Error("transfer credit failed, debit rolled back", fields...)
	return fmt.Errorf("%w: credit account %s: %w", ErrTransferFault, toID, cause)
}

func (e *Engine) fault(op, id string, err error) error {
	e.logger.Error("store failure", zap.String("op", op), zap.String("account_id", id), zap.Error(err))
	return fmt.Errorf("bank: %s %s: %w", op, id, err)
}
