// internal/lock/lock.go

// Package lock 提供以帳戶 key 為單位的互斥鎖管理。
// 每個 key 對應一個具參考計數的 handle：第一次被引用時建立，最後一個使用者釋放後移除，
// 因此 key→handle 對應表只保留「正在使用中」的帳戶，不會隨帳戶數量無限成長。
// 雙 key 操作一律依固定全序取得鎖（較大的 key 先鎖），避免交叉等待造成死結。
package lock

import (
	"errors"
	"sync"
)

// ErrSameKey 代表 RunPair 收到兩個相同的 key。
// 同一 handle 無法被同一呼叫者鎖兩次（sync.Mutex 不可重入），因此直接拒絕。
var ErrSameKey = errors.New("lock: pair keys must differ")

// handle 為單一 key 的互斥物件。
// waiters 為持有中或排隊等待中的操作數，只在 Manager.mu 保護下讀寫。
type handle struct {
	mu      sync.Mutex
	waiters int
}

// Manager 管理 key → handle 對應表。
// - mu：保護 handles 本身（與各 handle 的互斥分離）。
// - handles：僅包含目前仍被至少一個操作引用的 key。
type Manager struct {
	mu      sync.Mutex
	handles map[string]*handle
}

// NewManager 建立空白的鎖管理器。
func NewManager() *Manager {
	return &Manager{handles: make(map[string]*handle)}
}

// Run 在持有 key 的獨占鎖期間執行 fn，並回傳 fn 的錯誤。
// fn 內不得再對同一 key 呼叫 Run/RunPair（不可重入）。
// 取得鎖會無限期阻塞，沒有逾時。
func (m *Manager) Run(key string, fn func() error) error {
	h := m.acquire(key)
	defer m.release(key, h)
	return fn()
}

// RunPair 在同時持有 keyA 與 keyB 的獨占鎖期間執行 fn。
// 不論呼叫端傳入順序，一律先鎖字典序較大的 key，再鎖較小的 key；
// 釋放時反向（先小後大）。相同 key 回傳 ErrSameKey，且不會觸碰對應表。
func (m *Manager) RunPair(keyA, keyB string, fn func() error) error {
	if keyA == keyB {
		return ErrSameKey
	}
	first, second := keyA, keyB
	if first < second {
		first, second = second, first
	}

	hFirst := m.acquire(first)
	defer m.release(first, hFirst)
	hSecond := m.acquire(second)
	defer m.release(second, hSecond)

	return fn()
}

// Len 回傳目前對應表中的 handle 數量。
// 所有進行中的操作結束後應為 0。
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// acquire 先在對應表臨界區內「取得或建立 handle 並遞增 waiters」，
// 離開臨界區後才阻塞在 handle 本身的鎖上。
func (m *Manager) acquire(key string) *handle {
	m.mu.Lock()
	h, ok := m.handles[key]
	if !ok {
		h = &handle{}
		m.handles[key] = h
	}
	h.waiters++
	m.mu.Unlock()

	h.mu.Lock()
	return h
}

// release 先解開 handle 的鎖，再於對應表臨界區內遞減 waiters；歸零時移除 key。
// 順序不可顛倒：若先移除 key，新的呼叫者可能建立第二個 handle，
// 與尚未解鎖的舊 handle 同時「持有」同一 key。
func (m *Manager) release(key string, h *handle) {
	h.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	h.waiters--
	if h.waiters == 0 {
		delete(m.handles, key)
	}
}
