// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供帳戶操作的 HTTP 介面，作為 bank 模組的傳輸層。
// 每個 handler 僅負責：
//  1. 解析與驗證查詢參數（不合法 → 400）
//  2. 將 Engine 呼叫排入執行池
//  3. 依結果回應：成功 200、業務錯誤 422、儲存層故障 500
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"moneytransfer/internal/bank"
	"moneytransfer/internal/worker"
)

// Server 為 HTTP 層核心結構：
// - Engine：帳戶操作引擎。
// - pool：限制同時執行的帳戶操作數量。
type Server struct {
	Engine *bank.Engine
	pool   *worker.Pool
	logger *zap.Logger
}

// NewServer 建立 HTTP 伺服器。pool 為 nil 時以 CPU 數建立；logger 可為 nil。
func NewServer(e *bank.Engine, pool *worker.Pool, logger *zap.Logger) *Server {
	if pool == nil {
		pool = worker.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Engine: e, pool: pool, logger: logger}
}

// add 處理 /accounts/add。
// 參數 name，或相容舊格式的 account={"name":"..."}。
func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	name := r.FormValue("name")
	if name == "" {
		if raw := r.FormValue("account"); raw != "" {
			var req struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal([]byte(raw), &req); err != nil {
				s.badRequest(w, r, "invalid add account request")
				return
			}
			name = req.Name
		}
	}
	if name == "" {
		s.badRequest(w, r, "invalid add account request")
		return
	}
	s.submit(w, r, func(ctx context.Context) (bank.Result, error) {
		return s.Engine.AddAccount(ctx, name)
	})
}

// get 處理 /accounts/get?id=。
func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	id := r.FormValue("id")
	if id == "" {
		s.badRequest(w, r, "invalid get account request")
		return
	}
	s.submit(w, r, func(ctx context.Context) (bank.Result, error) {
		return s.Engine.GetAccount(ctx, id)
	})
}

// changeBalance 處理 /accounts/changeBalance?id=&amount=。amount 可為負數（提款）。
func (s *Server) changeBalance(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	id := r.FormValue("id")
	amount, ok := parseAmount(r)
	if id == "" || !ok {
		s.badRequest(w, r, "invalid change balance request")
		return
	}
	s.submit(w, r, func(ctx context.Context) (bank.Result, error) {
		return s.Engine.ChangeBalance(ctx, id, amount)
	})
}

// transferMoney 處理 /accounts/transferMoney?from=&to=&amount=。
func (s *Server) transferMoney(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	from, to := r.FormValue("from"), r.FormValue("to")
	amount, ok := parseAmount(r)
	if from == "" || to == "" || !ok {
		s.badRequest(w, r, "invalid transfer money request")
		return
	}
	s.submit(w, r, func(ctx context.Context) (bank.Result, error) {
		return s.Engine.TransferMoney(ctx, from, to, amount)
	})
}

// delete 處理 /accounts/delete?id=。
func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if !allowed(w, r) {
		return
	}
	id := r.FormValue("id")
	if id == "" {
		s.badRequest(w, r, "invalid delete account request")
		return
	}
	s.submit(w, r, func(ctx context.Context) (bank.Result, error) {
		return s.Engine.DeleteAccount(ctx, id)
	})
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"workers":  s.pool.Size(),
		"inFlight": s.Engine.InFlight(),
	})
}

// submit 在執行池中執行操作。
// 操作本身使用不可取消的 context：轉帳的兩次寫入不能因客戶端斷線而只完成一半。
// 只有「等待執行池名額」會因請求取消而中止。
func (s *Server) submit(w http.ResponseWriter, r *http.Request, op func(context.Context) (bank.Result, error)) {
	var (
		res bank.Result
		err error
	)
	ctx := context.WithoutCancel(r.Context())
	if perr := s.pool.Do(r.Context(), func() { res, err = op(ctx) }); perr != nil {
		s.logger.Warn("request abandoned while waiting for worker", zap.String("path", r.URL.Path), zap.Error(perr))
		writeText(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	if err != nil {
		s.logger.Error("operation failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeText(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeResult(w, res)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	s.logger.Info(msg, zap.String("path", r.URL.Path), zap.String("query", r.URL.RawQuery))
	writeText(w, http.StatusBadRequest, msg)
}

// allowed 只接受 GET 與 POST。
func allowed(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// parseAmount 解析 amount 參數；缺少或格式錯誤回傳 false。
func parseAmount(r *http.Request) (decimal.Decimal, bool) {
	raw := r.FormValue("amount")
	if raw == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
