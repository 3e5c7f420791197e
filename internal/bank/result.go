// internal/bank/result.go
package bank

// completedText 為無 payload 的成功結果文字。
const completedText = "Operation completed"

// Result 為單一帳戶操作的結果：成功（可帶 payload）或業務錯誤。
// 零值為無 payload 的成功。
type Result struct {
	Payload string
	Err     error
}

// Success 建立成功結果；payload 可為空字串。
func Success(payload string) Result {
	return Result{Payload: payload}
}

// Reject 建立業務錯誤結果。
func Reject(err error) Result {
	return Result{Err: err}
}

// IsError 回報結果是否為業務錯誤。
func (r Result) IsError() bool {
	return r.Err != nil
}

// Text 回傳要交給客戶端的文字：錯誤訊息、payload，或 "Operation completed"。
func (r Result) Text() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Payload != "":
		return r.Payload
	default:
		return completedText
	}
}
