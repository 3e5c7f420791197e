// internal/storage/store.go

// Package storage 提供帳戶記錄的 key-value 儲存介面與多種後端實作
// （記憶體、JSON 快照檔、Redis），以及熔斷器裝飾器。
//
// 每次呼叫僅保證自身的原子性；「讀 → 驗證 → 寫」的跨呼叫原子性由呼叫端持有的鎖負責。
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound 表示 key 不存在。這是正常結果，不是 I/O 錯誤。
var ErrNotFound = errors.New("storage: record not found")

// Store 為帳戶記錄的位元組 key 存取介面。
//   - Get：不存在時回傳 ErrNotFound。
//   - Put：upsert，覆寫既有記錄。
//   - Delete：key 不存在時視為成功。
type Store interface {
	Get(ctx context.Context, key []byte) (Record, error)
	Put(ctx context.Context, key []byte, rec Record) error
	Delete(ctx context.Context, key []byte) error
}

// Backend 為可關閉的 Store，供程式進入點管理生命週期。
type Backend interface {
	Store
	io.Closer
}
