// internal/storage/codec.go
//
// 記錄的序列化格式：JSON {"id","name","balance"}，balance 為十進位字串。
package storage

import (
	"encoding/json"
	"fmt"
)

// EncodeRecord 將記錄序列化為儲存用位元組。
func EncodeRecord(rec Record) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("storage: encode record %s: %w", rec.ID, err)
	}
	return b, nil
}

// DecodeRecord 解析儲存的位元組；空值或格式錯誤皆視為資料損壞。
func DecodeRecord(b []byte) (Record, error) {
	var rec Record
	if len(b) == 0 {
		return rec, fmt.Errorf("storage: decode record: empty value")
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("storage: decode record: %w", err)
	}
	return rec, nil
}
