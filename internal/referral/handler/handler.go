package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"xainik/internal/referral/models"
	"xainik/internal/referral/service/recorder"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/httputil"
	"xainik/pkg/requestcontext"
)

// RecorderService ingests tracking signals.
type RecorderService interface {
	RecordEvent(ctx context.Context, in recorder.Input) error
}

// AnalyticsService serves the aggregate read paths.
type AnalyticsService interface {
	ReferralFunnel(ctx context.Context, referralIDs []id.ReferralID, days int) (models.FunnelCounts, error)
	PlatformBreakdown(ctx context.Context, referralIDs []id.ReferralID, days int) ([]models.PlatformStat, error)
	TopReferrers(ctx context.Context, userID id.UserID, days int) ([]models.ReferrerStat, error)
}

// RegistryService manages the referral read model.
type RegistryService interface {
	CreateReferral(ctx context.Context, userID id.UserID, pitchID id.PitchID) (*models.Referral, error)
}

// Handler wires referral endpoints to the services.
type Handler struct {
	recorder  RecorderService
	analytics AnalyticsService
	registry  RegistryService
	logger    *slog.Logger
}

// New constructs a referral handler with its dependencies.
func New(rec RecorderService, analytics AnalyticsService, registry RegistryService, logger *slog.Logger) *Handler {
	return &Handler{
		recorder:  rec,
		analytics: analytics,
		registry:  registry,
		logger:    logger,
	}
}

// Register mounts referral endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/referrals", h.HandleCreateReferral)
	r.Post("/events", h.HandleRecordEvent)
	r.Get("/analytics/funnel", h.HandleFunnel)
	r.Get("/analytics/platforms", h.HandlePlatformBreakdown)
	r.Get("/analytics/top-referrers", h.HandleTopReferrers)
}

// HandleCreateReferral handles POST /referrals.
func (h *Handler) HandleCreateReferral(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateReferralRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ref, err := h.registry.CreateReferral(ctx, req.ParsedUserID(), req.ParsedPitchID())
	if err != nil {
		h.logger.ErrorContext(ctx, "referral creation failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromReferral(ref))
}

// HandleRecordEvent handles POST /events. The calling contract is fire and
// forget: a suppressed duplicate is indistinguishable from an accepted event,
// so both answer 202.
func (h *Handler) HandleRecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	in := recorder.Input{
		ReferralID: req.ParsedReferralID(),
		Type:       req.ParsedType(),
		Platform:   id.Platform(req.Platform),
		UserAgent:  requestcontext.UserAgent(ctx),
		IPAddress:  requestcontext.ClientIP(ctx),
	}

	if err := h.recorder.RecordEvent(ctx, in); err != nil {
		h.logger.ErrorContext(ctx, "event recording failed",
			"request_id", requestID,
			"referral_id", req.ReferralID,
			"event_type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleFunnel handles GET /analytics/funnel.
func (h *Handler) HandleFunnel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	referralIDs, err := parseReferralIDs(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	days, err := parseDays(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	counts, err := h.analytics.ReferralFunnel(ctx, referralIDs, days)
	if err != nil {
		h.logger.ErrorContext(ctx, "funnel query failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "funnel served",
		"request_id", requestID,
		"referrals", len(referralIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, counts)
}

// HandlePlatformBreakdown handles GET /analytics/platforms.
func (h *Handler) HandlePlatformBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	referralIDs, err := parseReferralIDs(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	days, err := parseDays(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.analytics.PlatformBreakdown(ctx, referralIDs, days)
	if err != nil {
		h.logger.ErrorContext(ctx, "platform breakdown query failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, PlatformBreakdownResponse{Platforms: stats})
}

// HandleTopReferrers handles GET /analytics/top-referrers.
func (h *Handler) HandleTopReferrers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, err := id.ParseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	days, err := parseDays(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.analytics.TopReferrers(ctx, userID, days)
	if err != nil {
		h.logger.ErrorContext(ctx, "top referrer query failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TopReferrersResponse{Referrers: stats})
}
