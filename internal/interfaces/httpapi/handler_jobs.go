package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/gridline/spreadpool/internal/usecase"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func (h *Handler) RunSyncWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncWeekJob")
	defer span.End()

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dispatchID := req.dispatchIDOrManual("sync-week")
	result, err := h.recomputeService.RunWeekSync(ctx, req.Season, req.Week, dispatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync week job failed", "season", req.Season, "week", req.Week, "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRecomputeWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeWeekJob")
	defer span.End()

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dispatchID := req.dispatchIDOrManual("recompute-week")
	result, err := h.recomputeService.RunWeekRecompute(ctx, req.Season, req.Week, dispatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run recompute week job failed", "season", req.Season, "week", req.Week, "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRecomputeSeasonJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeSeasonJob")
	defer span.End()

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dispatchID := req.dispatchIDOrManual("recompute-season")
	result, err := h.recomputeService.RunSeasonRecompute(ctx, req.Season, dispatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run recompute season job failed", "season", req.Season, "dispatch_id", dispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type internalJobRequest struct {
	Season     int    `json:"season"`
	Week       int    `json:"week"`
	DispatchID string `json:"dispatch_id"`
}

func (req internalJobRequest) dispatchIDOrManual(jobName string) string {
	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID != "" {
		return dispatchID
	}
	return buildManualDispatchID(jobName, fmt.Sprintf("%d-w%02d", req.Season, req.Week), time.Now().UTC())
}

func decodeInternalJobRequest(r *http.Request) (internalJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req internalJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return internalJobRequest{}, nil
		}
		return internalJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func buildManualDispatchID(jobName, scope string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	scope = sanitizeDispatchPart(scope)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + scope + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}
