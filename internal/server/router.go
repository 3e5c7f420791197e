// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊與請求日誌中介層。
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 帳戶操作沿用 /accounts/{操作} 的查詢參數介面，並同時掛在 /api/v1/ 下。
func (s *Server) Router() http.Handler {
	v1 := http.NewServeMux()

	// 健康檢查：回報執行池容量與進行中的帳戶鎖數。
	v1.HandleFunc("/health", s.health)

	// 帳戶操作：
	//   - /accounts/add?name=
	//   - /accounts/get?id=
	//   - /accounts/changeBalance?id=&amount=
	//   - /accounts/transferMoney?from=&to=&amount=
	//   - /accounts/delete?id=
	v1.HandleFunc("/accounts/add", s.add)
	v1.HandleFunc("/accounts/get", s.get)
	v1.HandleFunc("/accounts/changeBalance", s.changeBalance)
	v1.HandleFunc("/accounts/transferMoney", s.transferMoney)
	v1.HandleFunc("/accounts/delete", s.delete)

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", v1))
	root.Handle("/", v1)

	return s.withLogging(root)
}

// statusRecorder 記錄回應狀態碼供日誌使用。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
