// Package bank 定義帳戶領域模型與業務規則，不含任何 HTTP 或儲存細節。
// 本檔定義 Account 結構與其和儲存層記錄之間的轉換。

package bank

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"moneytransfer/internal/storage"
)

// Account represents a bank account.
// Balance 使用任意精度十進位數，完成的操作之後永遠 >= 0。
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Serialize 回傳帳戶的 JSON 表示，作為成功結果的 payload。
func (a Account) Serialize() (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (a Account) record() storage.Record {
	return storage.Record{ID: a.ID, Name: a.Name, Balance: a.Balance}
}

func fromRecord(r storage.Record) Account {
	return Account{ID: r.ID, Name: r.Name, Balance: r.Balance}
}
