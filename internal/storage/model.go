// internal/storage/model.go
//
// 定義儲存層的資料模型：單筆帳戶記錄 (Record) 與快照格式 (Snapshot)。
// 儲存層只負責資料的讀寫與序列化，不涉入任何商業規則（餘額檢查、鎖）。
package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record 為帳戶在儲存層的持久化格式。
// Balance 以十進位字串序列化，避免浮點誤差。
type Record struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Meta 為快照的中繼資料：儲存類型、結構版本、建立時間。
type Meta struct {
	Storage   string    `json:"storage"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// Entry 為快照中的一筆記錄，連同寫入時使用的 key。
// 舊版快照沒有 key 欄位，載入時以 Record.ID 代替。
type Entry struct {
	Key string `json:"key"`
	Record
}

// Snapshot 為 SnapshotStore 寫入磁碟的完整內容。
type Snapshot struct {
	Meta     Meta    `json:"_meta"`
	Accounts []Entry `json:"accounts"`
}
