package generate

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/surjeetsr38/gyansathi-backend/internal/api"
	"github.com/surjeetsr38/gyansathi-backend/internal/api/apperr"
	"github.com/surjeetsr38/gyansathi-backend/internal/auth"
	"github.com/surjeetsr38/gyansathi-backend/internal/config"
	"github.com/surjeetsr38/gyansathi-backend/internal/gemini"
	"github.com/surjeetsr38/gyansathi-backend/internal/metrics"
	"github.com/surjeetsr38/gyansathi-backend/internal/middleware"
	"github.com/surjeetsr38/gyansathi-backend/internal/prompt"
	"github.com/surjeetsr38/gyansathi-backend/internal/promptlog"
	"github.com/surjeetsr38/gyansathi-backend/internal/quota"
)

// maxBodyBytes bounds /generate bodies well above any sane prompt payload.
const maxBodyBytes = 1 << 20

type Handler struct {
	limits   config.Limits
	engine   *quota.Engine
	client   *gemini.Client
	logger   *promptlog.Logger
	validate *validator.Validate
}

func NewHandler(limits config.Limits, engine *quota.Engine, client *gemini.Client, logger *promptlog.Logger) *Handler {
	return &Handler{
		limits:   limits,
		engine:   engine,
		client:   client,
		logger:   logger,
		validate: validator.New(),
	}
}

// Generate runs the guard pipeline for one generation request. Each stage
// either passes an updated pipeline state forward or terminates with a
// structured rejection; quota is charged before the upstream call and not
// refunded if that call fails.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	if claims == nil {
		apperr.Handle(w, apperr.ErrNoToken)
		return
	}

	// Shape guard. The raw bytes are kept for the upstream passthrough.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		apperr.Handle(w, apperr.NewInvalidRequestError("request body unreadable or too large"))
		return
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		apperr.Handle(w, apperr.NewInvalidRequestError("request body must be JSON with a contents array"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Handle(w, apperr.NewInvalidRequestError("contents array is missing or empty"))
		return
	}

	// Sanitize guard.
	text := prompt.Join(req.Contents)
	if verr := prompt.Validate(text, h.limits.MaxPromptChars); verr != nil {
		metrics.PromptsRejectedTotal.WithLabelValues(verr.Code).Inc()
		apperr.Handle(w, verr)
		return
	}

	// Quota guard. A store failure means quota is indeterminate, which is an
	// infrastructure error, not a denial.
	dec, err := h.engine.Consume(r.Context(), claims.CallerID(), claims.Email)
	if err != nil {
		slog.Error("quota consume failed", "error", err, "caller_id", claims.CallerID())
		apperr.Handle(w, apperr.ErrServerError)
		return
	}
	if !dec.Allowed {
		metrics.QuotaDenialsTotal.Inc()
		apperr.Handle(w, apperr.NewQuotaExceededError(dec.Quota))
		return
	}

	// Telemetry, strictly fire-and-forget.
	h.logger.Record(promptlog.Entry{
		CallerID:  claims.CallerID(),
		Email:     claims.Email,
		CharCount: utf8.RuneCountInString(text),
		Preview:   prompt.Preview(text),
		SourceIP:  middleware.ClientIP(r),
	})

	// Upstream forward. The unit consumed above stays consumed even when
	// this fails; pay before use.
	raw, err := h.client.Generate(r.Context(), body)
	if err != nil {
		h.handleUpstreamError(w, err, dec.Quota, claims.CallerID())
		return
	}
	metrics.UpstreamRequestsTotal.WithLabelValues("ok").Inc()

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Error("gemini returned unparseable body", "error", err)
		apperr.Handle(w, apperr.ErrServerError.WithQuota(dec.Quota))
		return
	}
	payload["quota"] = dec.Quota

	w.Header().Set("X-RateLimit-User-Remaining", strconv.Itoa(dec.Quota.Remaining))
	api.JSON(w, http.StatusOK, payload)
}

func (h *Handler) handleUpstreamError(w http.ResponseWriter, err error, v quota.View, callerID string) {
	if errors.Is(err, gemini.ErrMissingKey) {
		metrics.UpstreamRequestsTotal.WithLabelValues("missing_key").Inc()
		slog.Error("gemini API key not configured")
		apperr.Handle(w, apperr.ErrMissingAPIKey.WithQuota(v))
		return
	}

	var ue *gemini.UpstreamError
	if errors.As(err, &ue) {
		metrics.UpstreamRequestsTotal.WithLabelValues(strconv.Itoa(ue.StatusCode)).Inc()
		slog.Warn("gemini rejected request", "status", ue.StatusCode, "message", ue.Message, "caller_id", callerID)
		apperr.Handle(w, apperr.NewUpstreamError(ue.StatusCode, ue.Message).WithQuota(v))
		return
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("transport_error").Inc()
	slog.Error("gemini call failed", "error", err, "caller_id", callerID)
	apperr.Handle(w, apperr.ErrServerError.WithQuota(v))
}

// Quota returns the caller's current view without consuming anything.
func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	if claims == nil {
		apperr.Handle(w, apperr.ErrNoToken)
		return
	}

	v, err := h.engine.Read(r.Context(), claims.CallerID())
	if err != nil {
		slog.Error("quota read failed", "error", err, "caller_id", claims.CallerID())
		apperr.Handle(w, apperr.ErrServerError)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"quota": v})
}

// Health reports liveness plus the configured limit values.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"limits": HealthLimits{
			WindowMs:       h.limits.WindowMs,
			MaxPerWindow:   h.limits.MaxPerWindow,
			DailyQuota:     h.limits.DailyQuota,
			MaxPromptChars: h.limits.MaxPromptChars,
		},
	})
}
