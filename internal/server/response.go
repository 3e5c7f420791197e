// internal/server/response.go
//
// 本檔統一 HTTP 回應格式。
//   - 帳戶操作回應為純文字：payload（帳戶 JSON）或訊息。
//   - 健康檢查使用 JSON。
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"moneytransfer/internal/bank"
)

// writeJSON 輸出 JSON 回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeText 輸出純文字回應。
func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

// writeResult 將操作結果轉為狀態碼：業務錯誤 422，成功 200。
// 帶帳戶 payload 的成功回應以 JSON 標示。
func writeResult(w http.ResponseWriter, res bank.Result) {
	if res.IsError() {
		writeText(w, http.StatusUnprocessableEntity, res.Text())
		return
	}
	if strings.HasPrefix(res.Payload, "{") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(res.Payload))
		return
	}
	writeText(w, http.StatusOK, res.Text())
}
