package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/John-Robertt/avsearch/internal/domain"
	"github.com/John-Robertt/avsearch/internal/provider"
	"github.com/John-Robertt/avsearch/internal/widget"
)

// Handler 把 widget 暴露为本地 HTTP 接口，便于在宿主之外调试。
//
// 约束：
// - 不做缓存；只通过 Cache-Control 把 cacheDuration 告知调用方
// - 错误统一为 {"error_code","error_msg"}
type Handler struct {
	Widget *widget.Widget
	Log    *slog.Logger
}

type errorResponse struct {
	Code    string `json:"error_code"`
	Message string `json:"error_msg"`
}

// NewRouter 注册全部路由。
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/widget", h.Metadata).Methods(http.MethodGet)
	r.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return r
}

// Metadata 处理 GET /widget。
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Widget.Metadata())
}

// Search 处理 GET /search?code=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	log := h.logger()
	params := domain.Params{Code: r.URL.Query().Get("code")}

	start := time.Now()
	entries, err := h.Widget.Call(r.Context(), widget.FuncSearchJavDB, params)
	if err != nil {
		status, body := classifySearchError(err)
		log.Warn("搜索请求失败", "code", params.Code, "status", status, "error", err)
		writeJSON(w, status, body)
		return
	}
	if entries == nil {
		entries = []domain.MovieEntry{}
	}

	if m, ok := h.Widget.Module(widget.FuncSearchJavDB); ok && m.CacheDuration > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", m.CacheDuration))
	}
	log.Info("搜索请求完成", "code", params.Code, "entries", len(entries), "dur", time.Since(start))
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.New(slog.DiscardHandler)
}

// classifySearchError 把批次级错误映射为 HTTP 状态码：
// 参数错误 400，无结果 404，上游超时 504，其余 502。
func classifySearchError(err error) (int, errorResponse) {
	code := provider.Code(err)
	body := errorResponse{Code: code, Message: provider.Message(err)}

	switch code {
	case provider.ErrCodeInvalidInput:
		return http.StatusBadRequest, body
	case provider.ErrCodeNoResults:
		return http.StatusNotFound, body
	case "":
		body.Code = "internal_error"
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return http.StatusGatewayTimeout, body
	}
	return http.StatusBadGateway, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
