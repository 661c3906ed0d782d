package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/platform/logging"
	"github.com/gridline/spreadpool/internal/usecase"
)

type Handler struct {
	pickService       *usecase.PickService
	gradingService    *usecase.GradingService
	standingsService  *usecase.StandingsService
	precedenceService *usecase.PrecedenceService
	recomputeService  *usecase.RecomputeService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	pickService *usecase.PickService,
	gradingService *usecase.GradingService,
	standingsService *usecase.StandingsService,
	precedenceService *usecase.PrecedenceService,
	recomputeService *usecase.RecomputeService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		pickService:       pickService,
		gradingService:    gradingService,
		standingsService:  standingsService,
		precedenceService: precedenceService,
		recomputeService:  recomputeService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListWeekGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekGames")
	defer span.End()

	season, week, err := seasonWeekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.gradingService.ListWeekGames(ctx, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list week games failed", "season", season, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetWeekLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekLeaderboard")
	defer span.End()

	season, week, err := seasonWeekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.standingsService.GetWeekLeaderboard(ctx, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get week leaderboard failed", "season", season, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTOs(rows))
}

func (h *Handler) GetSeasonLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonLeaderboard")
	defer span.End()

	season, err := seasonFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.standingsService.GetSeasonLeaderboard(ctx, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get season leaderboard failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summariesToDTOs(rows))
}

func (h *Handler) SubmitPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	var req submitPicksRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.pickService.SubmitPicks(ctx, usecase.SubmitPicksInput{
		UserID: principal.UserID,
		Season: req.Season,
		Week:   req.Week,
		Picks:  selectionsFromRequest(req.Picks),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit picks failed", "user_id", principal.UserID, "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, picksToDTOs(picks))
}

func (h *Handler) GetMyWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	season, week, err := seasonWeekFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, resolution, err := h.pickService.GetUserWeekPicks(ctx, principal.UserID, season, week)
	if err != nil {
		h.logger.WarnContext(ctx, "get week picks failed", "user_id", principal.UserID, "season", season, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekPicksDTO{
		Source:     string(resolution.Source),
		Overridden: resolution.Overridden,
		Picks:      picksToDTOs(picks),
	})
}

func (h *Handler) SubmitAnonymousPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitAnonymousPicks")
	defer span.End()

	var req submitAnonymousPicksRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.pickService.SubmitAnonymousPicks(ctx, usecase.SubmitAnonymousPicksInput{
		Email:  req.Email,
		Season: req.Season,
		Week:   req.Week,
		Picks:  selectionsFromRequest(req.Picks),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit anonymous picks failed", "season", req.Season, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]anonymousPickDTO, 0, len(picks))
	for _, p := range picks {
		items = append(items, anonymousPickToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusCreated, items)
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(payload); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func seasonFromPath(r *http.Request) (int, error) {
	season, err := strconv.Atoi(strings.TrimSpace(r.PathValue("season")))
	if err != nil || season <= 0 {
		return 0, fmt.Errorf("%w: season must be a positive integer", usecase.ErrInvalidInput)
	}
	return season, nil
}

func seasonWeekFromPath(r *http.Request) (int, int, error) {
	season, err := seasonFromPath(r)
	if err != nil {
		return 0, 0, err
	}
	week, err := strconv.Atoi(strings.TrimSpace(r.PathValue("week")))
	if err != nil || week <= 0 {
		return 0, 0, fmt.Errorf("%w: week must be a positive integer", usecase.ErrInvalidInput)
	}
	return season, week, nil
}

type pickSelectionRequest struct {
	GameID string `json:"gameId" validate:"required"`
	Side   string `json:"side" validate:"required,oneof=home away"`
	IsLock bool   `json:"isLock"`
}

type submitPicksRequest struct {
	Season int                    `json:"season" validate:"required,gt=0"`
	Week   int                    `json:"week" validate:"required,gt=0"`
	Picks  []pickSelectionRequest `json:"picks" validate:"required,min=1,dive"`
}

type submitAnonymousPicksRequest struct {
	Email  string                 `json:"email" validate:"required,email"`
	Season int                    `json:"season" validate:"required,gt=0"`
	Week   int                    `json:"week" validate:"required,gt=0"`
	Picks  []pickSelectionRequest `json:"picks" validate:"required,min=1,dive"`
}

func selectionsFromRequest(items []pickSelectionRequest) []usecase.PickSelection {
	out := make([]usecase.PickSelection, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.PickSelection{
			GameID: item.GameID,
			Side:   game.Side(item.Side),
			IsLock: item.IsLock,
		})
	}
	return out
}

type gameDTO struct {
	ID          string   `json:"id"`
	Season      int      `json:"season"`
	Week        int      `json:"week"`
	HomeTeam    string   `json:"homeTeam"`
	AwayTeam    string   `json:"awayTeam"`
	Spread      *float64 `json:"spread,omitempty"`
	HomeScore   *int     `json:"homeScore,omitempty"`
	AwayScore   *int     `json:"awayScore,omitempty"`
	Status      string   `json:"status"`
	ATSWinner   *string  `json:"atsWinner,omitempty"`
	MarginBonus int      `json:"marginBonus"`
}

func gameToDTO(g game.Game) gameDTO {
	var winner *string
	if g.ATSWinner != nil {
		value := string(*g.ATSWinner)
		winner = &value
	}
	return gameDTO{
		ID:          g.ID,
		Season:      g.Season,
		Week:        g.Week,
		HomeTeam:    g.HomeTeam,
		AwayTeam:    g.AwayTeam,
		Spread:      g.Spread,
		HomeScore:   g.HomeScore,
		AwayScore:   g.AwayScore,
		Status:      string(g.Status),
		ATSWinner:   winner,
		MarginBonus: g.MarginBonus,
	}
}

type pickDTO struct {
	ID      string  `json:"id"`
	GameID  string  `json:"gameId"`
	Season  int     `json:"season"`
	Week    int     `json:"week"`
	Side    string  `json:"side"`
	IsLock  bool    `json:"isLock"`
	Visible bool    `json:"visible"`
	Result  *string `json:"result,omitempty"`
	Points  *int    `json:"points,omitempty"`
}

type weekPicksDTO struct {
	Source     string    `json:"source"`
	Overridden bool      `json:"overridden"`
	Picks      []pickDTO `json:"picks"`
}

func pickToDTO(p pick.Pick) pickDTO {
	var result *string
	if p.Result != nil {
		value := string(*p.Result)
		result = &value
	}
	return pickDTO{
		ID:      p.ID,
		GameID:  p.GameID,
		Season:  p.Season,
		Week:    p.Week,
		Side:    string(p.Side),
		IsLock:  p.IsLock,
		Visible: p.Visible,
		Result:  result,
		Points:  p.Points,
	}
}

func picksToDTOs(items []pick.Pick) []pickDTO {
	out := make([]pickDTO, 0, len(items))
	for _, item := range items {
		out = append(out, pickToDTO(item))
	}
	return out
}

type anonymousPickDTO struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	GameID           string `json:"gameId"`
	Season           int    `json:"season"`
	Week             int    `json:"week"`
	Side             string `json:"side"`
	IsLock           bool   `json:"isLock"`
	ValidationStatus string `json:"validationStatus"`
}

func anonymousPickToDTO(p pick.AnonymousPick) anonymousPickDTO {
	return anonymousPickDTO{
		ID:               p.ID,
		Email:            p.Email,
		GameID:           p.GameID,
		Season:           p.Season,
		Week:             p.Week,
		Side:             string(p.Side),
		IsLock:           p.IsLock,
		ValidationStatus: string(p.ValidationStatus),
	}
}

type leaderboardRowDTO struct {
	Rank         int       `json:"rank"`
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	PicksCounted int       `json:"picksCounted"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Pushes       int       `json:"pushes"`
	LockWins     int       `json:"lockWins"`
	LockLosses   int       `json:"lockLosses"`
	TotalPoints  int       `json:"totalPoints"`
	Payment      string    `json:"paymentStatus"`
	Verified     bool      `json:"verified"`
	Source       string    `json:"source"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

func summariesToDTOs(rows []leaderboard.PeriodSummary) []leaderboardRowDTO {
	out := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboardRowDTO{
			Rank:         row.Rank,
			UserID:       row.UserID,
			DisplayName:  row.DisplayName,
			PicksCounted: row.PicksCounted,
			Wins:         row.Wins,
			Losses:       row.Losses,
			Pushes:       row.Pushes,
			LockWins:     row.LockWins,
			LockLosses:   row.LockLosses,
			TotalPoints:  row.TotalPoints,
			Payment:      string(row.Payment),
			Verified:     row.Verified,
			Source:       string(row.Source),
			CalculatedAt: row.CalculatedAt,
		})
	}
	return out
}
