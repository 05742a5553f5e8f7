package web

import (
	"BikeSharing/src/metrics"
	"BikeSharing/src/processor"
	"BikeSharing/src/render"
	"BikeSharing/src/report"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) *Handler {
	if deps.Builder == nil {
		deps.Builder = report.NewBuilder(nil)
	}
	return &Handler{deps: deps}
}

// build 根据查询参数构造 Session 并生成报表
func (h *Handler) build(r *http.Request) (report.Report, error) {
	if h.deps.Source == nil {
		return report.Report{}, fmt.Errorf("%w: no dataset configured", processor.ErrDataUnavailable)
	}
	ds, err := h.deps.Source.Current()
	if err != nil {
		return report.Report{}, err
	}
	q := r.URL.Query()
	s, err := report.NewSession(ds, q.Get("start"), q.Get("end"))
	if err != nil {
		// 数据已加载, 保留范围供页面重新选择日期
		full := ds.FullRange()
		return report.Report{Range: full, Bounds: full}, err
	}
	return h.deps.Builder.Build(s), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, processor.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, processor.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, err error) {
	status := statusFor(err)
	logger := zerolog.Ctx(r.Context())
	logger.Warn().Err(err).Int("status", status).Msg("request rejected")
	metrics.ObserveReport(endpoint, time.Since(start), metrics.OutcomeError)
	http.Error(w, err.Error(), status)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep, err := h.build(r)

	page := dashboardPage{Report: rep, Query: rangeQuery(rep.Range)}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		page.Error = err.Error()
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("dashboard unavailable")
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, page); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render dashboard")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())

	outcome := metrics.OutcomeSuccess
	if page.Error != "" {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveReport("dashboard", time.Since(start), outcome)
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "panel")

	rep, err := h.build(r)
	if err != nil {
		writeError(w, r, "chart", start, err)
		return
	}
	panel, ok := rep.Panel(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := render.Chart(panel, &buf); err != nil {
		writeError(w, r, "chart", start, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(buf.Bytes())
	metrics.ObserveReport("chart", time.Since(start), metrics.OutcomeSuccess)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep, err := h.build(r)
	if err != nil {
		writeError(w, r, "report", start, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode report")
	}
	metrics.ObserveReport("report", time.Since(start), metrics.OutcomeSuccess)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rep, err := h.build(r)
	if err != nil {
		writeError(w, r, "export", start, err)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteWorkbook(&buf, rep); err != nil {
		writeError(w, r, "export", start, err)
		return
	}
	name := fmt.Sprintf("bike-sharing_%s_%s.xlsx",
		rep.Range.Start.Format(processor.DateLayout), rep.Range.End.Format(processor.DateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
	metrics.ObserveReport("export", time.Since(start), metrics.OutcomeSuccess)
}

func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.WriteLogo(&buf, h.deps.LogoPath); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to load logo")
		http.Error(w, "logo unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// Logs 以 chunked 文本流推送实时日志, 直到客户端断开
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	if h.deps.Logs == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	logChan := h.deps.Logs.Subscribe()
	defer h.deps.Logs.Unsubscribe(logChan)

	for {
		select {
		case msg, ok := <-logChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintln(w, msg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

type health struct {
	Status  string `json:"status"`
	Dataset bool   `json:"dataset"`
	Path    string `json:"path,omitempty"`
	Rows    int    `json:"rows"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := health{Status: "ok"}
	if h.deps.Source != nil {
		resp.Path = h.deps.Source.Path()
		if ds, err := h.deps.Source.Current(); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Dataset = true
			resp.Rows = ds.Len()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode health")
	}
}
