// internal/storage/memory.go
package storage

import (
	"context"
	"sync"
)

// MemoryStore 為純記憶體後端，適用於測試與不需持久化的部署。
// 內部保存序列化後的位元組，讀取時重新解碼，呼叫端拿到的永遠是獨立拷貝。
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string][]byte
}

// NewMemoryStore 建立空白的記憶體後端。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key []byte) (Record, error) {
	s.mu.RLock()
	b, ok := s.recs[string(key)]
	s.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	return DecodeRecord(b)
}

func (s *MemoryStore) Put(_ context.Context, key []byte, rec Record) error {
	b, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.recs[string(key)] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key []byte) error {
	s.mu.Lock()
	delete(s.recs, string(key))
	s.mu.Unlock()
	return nil
}

// Len 回傳目前記錄數。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// Close 為 no-op，讓 MemoryStore 滿足 Backend。
func (s *MemoryStore) Close() error { return nil }
