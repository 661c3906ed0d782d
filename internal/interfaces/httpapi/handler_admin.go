package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/domain/picksource"
	"github.com/gridline/spreadpool/internal/usecase"
)

func (h *Handler) AssignAnonymousPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignAnonymousPicks")
	defer span.End()

	var req assignAnonymousPicksRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	assigned, err := h.pickService.AssignAnonymousPicks(ctx, req.Email, req.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "assign anonymous picks failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assignAnonymousPicksResponse{AssignedCount: assigned})
}

func (h *Handler) ValidateAnonymousPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateAnonymousPick")
	defer span.End()

	pickID := strings.TrimSpace(r.PathValue("pickID"))
	if pickID == "" {
		writeError(ctx, w, fmt.Errorf("%w: pick id is required", usecase.ErrInvalidInput))
		return
	}

	var req validateAnonymousPickRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.pickService.ValidateAnonymousPick(ctx, pickID, pick.ValidationStatus(req.Status)); err != nil {
		h.logger.WarnContext(ctx, "validate anonymous pick failed", "pick_id", pickID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *Handler) SetPickVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPickVisibility")
	defer span.End()

	pickID := strings.TrimSpace(r.PathValue("pickID"))
	if pickID == "" {
		writeError(ctx, w, fmt.Errorf("%w: pick id is required", usecase.ErrInvalidInput))
		return
	}

	var req setPickVisibilityRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.pickService.SetPickVisibility(ctx, pickID, req.Visible); err != nil {
		h.logger.WarnContext(ctx, "set pick visibility failed", "pick_id", pickID, "visible", req.Visible, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"visible": req.Visible})
}

func (h *Handler) SetSourceOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSourceOverride")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput))
		return
	}

	var req setSourceOverrideRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.precedenceService.SetOverride(ctx, picksource.Override{
		UserID:    userID,
		Season:    req.Season,
		Week:      req.Week,
		Preferred: picksource.Source(req.Preferred),
		SetBy:     principal.UserID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set source override failed", "user_id", userID, "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"preferred": req.Preferred})
}

func (h *Handler) ClearSourceOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearSourceOverride")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput))
		return
	}

	var req clearSourceOverrideRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.precedenceService.ClearOverride(ctx, userID, req.Season, req.Week); err != nil {
		h.logger.WarnContext(ctx, "clear source override failed", "user_id", userID, "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) RebuildWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RebuildWeek")
	defer span.End()

	season, week, err := seasonWeekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.recomputeService.RebuildWeek(ctx, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "rebuild week failed", "season", season, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type assignAnonymousPicksRequest struct {
	Email  string `json:"email" validate:"required,email"`
	UserID string `json:"userId" validate:"required"`
}

type assignAnonymousPicksResponse struct {
	AssignedCount int `json:"assignedCount"`
}

type validateAnonymousPickRequest struct {
	Status string `json:"status" validate:"required,oneof=pending auto_validated manually_validated conflicting"`
}

type setPickVisibilityRequest struct {
	Visible bool `json:"visible"`
}

type setSourceOverrideRequest struct {
	Season    int    `json:"season" validate:"required,gt=0"`
	Week      int    `json:"week" validate:"gte=0"`
	Preferred string `json:"preferred" validate:"required,oneof=authenticated anonymous"`
	Reason    string `json:"reason" validate:"max=500"`
}

type clearSourceOverrideRequest struct {
	Season int `json:"season" validate:"required,gt=0"`
	Week   int `json:"week" validate:"gte=0"`
}
