// internal/storage/jsonstore.go
//
// JSON 快照後端。記錄保存在記憶體 map，每次 Put/Delete 後整份寫回快照檔。
// 寫檔採「原子寫入」：先寫 path+".tmp"，完成後以 rename() 取代原檔，
// 中途失敗不會留下損壞的快照。
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

const (
	snapshotStorage = "json_snapshot"
	snapshotVersion = 3
)

// LoadSnapshot 讀取指定路徑的 JSON 快照。
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	err = json.NewDecoder(f).Decode(&snap)
	return snap, err
}

// SaveSnapshot 將快照原子寫入 path。
// 流程：設定 Meta → 寫入 .tmp → Sync → rename 取代正式檔。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = snapshotStorage
	snap.Meta.Version = snapshotVersion
	snap.Meta.Timestamp = time.Now()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// SnapshotStore 以 JSON 快照檔為持久層的 Store。
// mu 同時保護 recs 與檔案寫入，確保磁碟內容與記憶體一致。
type SnapshotStore struct {
	mu   sync.RWMutex
	path string
	recs map[string]Record
}

// OpenSnapshotStore 開啟（或建立）快照後端。檔案不存在時以空白狀態啟動。
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	s := &SnapshotStore{path: path, recs: make(map[string]Record)}

	snap, err := LoadSnapshot(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("storage: load snapshot %s: %w", path, err)
	}

	for _, e := range snap.Accounts {
		key := e.Key
		if key == "" {
			key = e.ID
		}
		s.recs[key] = e.Record
	}
	return s, nil
}

func (s *SnapshotStore) Get(_ context.Context, key []byte) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[string(key)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Put 寫入記錄並立即落盤；落盤失敗時還原記憶體狀態並回傳錯誤。
func (s *SnapshotStore) Put(_ context.Context, key []byte, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	prev, had := s.recs[k]
	s.recs[k] = rec
	if err := s.flushLocked(); err != nil {
		if had {
			s.recs[k] = prev
		} else {
			delete(s.recs, k)
		}
		return err
	}
	return nil
}

func (s *SnapshotStore) Delete(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(key)
	prev, had := s.recs[k]
	if !had {
		return nil
	}
	delete(s.recs, k)
	if err := s.flushLocked(); err != nil {
		s.recs[k] = prev
		return err
	}
	return nil
}

// Close 最後再寫一次快照。
func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// flushLocked 須在持有 mu 時呼叫。帳戶依 key 排序，讓快照內容穩定可比對。
func (s *SnapshotStore) flushLocked() error {
	snap := Snapshot{
		Meta:     Meta{Note: "account records with their store keys"},
		Accounts: make([]Entry, 0, len(s.recs)),
	}
	for k, rec := range s.recs {
		snap.Accounts = append(snap.Accounts, Entry{Key: k, Record: rec})
	}
	sort.Slice(snap.Accounts, func(i, j int) bool { return snap.Accounts[i].Key < snap.Accounts[j].Key })

	if err := SaveSnapshot(s.path, snap); err != nil {
		return fmt.Errorf("storage: save snapshot %s: %w", s.path, err)
	}
	return nil
}
