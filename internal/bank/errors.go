// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 業務驗證錯誤一律放在 Result 中回傳，不作為 Go error；
// 上層 handler 依 Result.IsError() 決定狀態碼。
// 儲存層故障則以第二個回傳值 error 傳出，兩者不會混用。

package bank

import "errors"

// 業務驗證錯誤。
var (
	// ErrNotFound 代表帳戶不存在。
	ErrNotFound = errors.New("account does not exist")

	// ErrSourceNotFound 代表轉帳來源帳戶不存在。
	ErrSourceNotFound = errors.New("source account does not exist")

	// ErrDestinationNotFound 代表轉帳目標帳戶不存在。
	ErrDestinationNotFound = errors.New("destination account does not exist")

	// ErrSameAccount 代表轉帳來源與目標帳戶相同。
	ErrSameAccount = errors.New("same source and destination account")

	// ErrNegativeBalance 代表調整後餘額會小於 0。
	ErrNegativeBalance = errors.New("can not withdraw to negative balance")

	// ErrInsufficient 代表來源帳戶餘額不足以轉出。
	ErrInsufficient = errors.New("can not withdraw to negative value")

	// ErrBalanceNotZero 代表刪除時餘額不為 0。
	ErrBalanceNotZero = errors.New("account balance is not 0")

	// ErrBadAmount 代表轉帳金額非正數。
	ErrBadAmount = errors.New("amount must be positive")
)

// ErrPartialTransfer 代表轉帳入帳失敗且扣款無法還原：兩個帳戶已不一致。
// 這是嚴重故障，會以 error 等級記錄並回傳給呼叫端。
var ErrPartialTransfer = errors.New("transfer left accounts inconsistent")

// ErrTransferFault 代表轉帳入帳失敗但扣款已還原：帳戶一致，操作未完成。
var ErrTransferFault = errors.New("bank: transfer credit failed")
