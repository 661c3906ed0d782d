package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridline/spreadpool/internal/domain/game"
	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/domain/picksource"
	"github.com/gridline/spreadpool/internal/platform/id"
	"github.com/gridline/spreadpool/internal/platform/logging"
)

type PickSelection struct {
	GameID string
	Side   game.Side
	IsLock bool
}

type SubmitPicksInput struct {
	UserID string
	Season int
	Week   int
	Picks  []PickSelection
}

type SubmitAnonymousPicksInput struct {
	Email  string
	Season int
	Week   int
	Picks  []PickSelection
}

// PickService owns pick intake for both sources. A submission is atomic:
// one rule violation rejects the whole batch and leaves the stored set
// untouched.
type PickService struct {
	pickRepo    pick.Repository
	anonRepo    pick.AnonymousRepository
	gameRepo    game.Repository
	precedence  *PrecedenceService
	idGen       id.Generator
	rules       pick.Rules
	invalidator PeriodInvalidator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPickService(
	pickRepo pick.Repository,
	anonRepo pick.AnonymousRepository,
	gameRepo game.Repository,
	precedence *PrecedenceService,
	idGen id.Generator,
	rules pick.Rules,
	invalidator PeriodInvalidator,
	logger *logging.Logger,
) *PickService {
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if rules.MaxPicksPerWeek <= 0 || rules.MaxLocksPerWeek <= 0 {
		rules = pick.DefaultRules()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PickService{
		pickRepo:    pickRepo,
		anonRepo:    anonRepo,
		gameRepo:    gameRepo,
		precedence:  precedence,
		idGen:       idGen,
		rules:       rules,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitPicks stores an authenticated batch. Resubmitting a game replaces
// the earlier pick for it without consuming another slot. Any anonymous
// picks the user still has for the week stop counting but stay on record.
func (s *PickService) SubmitPicks(ctx context.Context, input SubmitPicksInput) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPicks")
	defer span.End()

	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Season <= 0 || input.Week <= 0 {
		return nil, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}
	if len(input.Picks) == 0 {
		return nil, fmt.Errorf("%w: at least one pick is required", ErrInvalidInput)
	}

	existing, err := s.pickRepo.ListByUserWeek(ctx, input.UserID, input.Season, input.Week)
	if err != nil {
		return nil, fmt.Errorf("list existing picks for submission: %w", err)
	}
	existingByGame := make(map[string]pick.Pick, len(existing))
	for _, item := range existing {
		existingByGame[item.GameID] = item
	}

	now := s.now().UTC()
	incoming := make([]pick.Pick, 0, len(input.Picks))
	for _, selection := range input.Picks {
		item, err := s.buildPick(ctx, input.UserID, input.Season, input.Week, selection, existingByGame[selection.GameID].ID, now)
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, item)
	}

	if err := s.rules.ValidateSubmission(existing, incoming, input.Season, input.Week); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.pickRepo.Upsert(ctx, incoming); err != nil {
		return nil, fmt.Errorf("upsert picks: %w", err)
	}

	// Authenticated picks supersede the user's anonymous ones for the week.
	// The anonymous rows stay for audit but stop counting.
	if err := s.anonRepo.SetActiveForUserWeek(ctx, input.UserID, input.Season, input.Week, false); err != nil {
		s.logger.WarnContext(ctx, "deactivate anonymous picks after submission failed",
			"user_id", input.UserID,
			"season", input.Season,
			"week", input.Week,
			"error", err,
		)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateUserWeek(ctx, input.Season, input.Week, []string{input.UserID})
	}

	return incoming, nil
}

// GetUserWeekPicks returns the picks counting for the user's week plus the
// source resolution behind them.
func (s *PickService) GetUserWeekPicks(ctx context.Context, userID string, season, week int) ([]pick.Pick, picksource.Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetUserWeekPicks")
	defer span.End()

	return s.precedence.CountedWeekPicks(ctx, userID, season, week)
}

// SetPickVisibility hides or restores one authenticated pick. A hidden pick
// keeps its grade but contributes nothing anywhere.
func (s *PickService) SetPickVisibility(ctx context.Context, pickID string, visible bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SetPickVisibility")
	defer span.End()

	if strings.TrimSpace(pickID) == "" {
		return fmt.Errorf("%w: pick id is required", ErrInvalidInput)
	}

	item, exists, err := s.pickRepo.GetByID(ctx, pickID)
	if err != nil {
		return fmt.Errorf("get pick for visibility change: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: pick=%s", ErrNotFound, pickID)
	}

	if err := s.pickRepo.SetVisibility(ctx, pickID, visible); err != nil {
		return fmt.Errorf("set pick visibility: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateUserWeek(ctx, item.Season, item.Week, []string{item.UserID})
	}
	return nil
}

// SubmitAnonymousPicks stores a pre-registration batch keyed by email. The
// picks enter as pending validation and count for nobody until an admin
// assigns and validates them.
func (s *PickService) SubmitAnonymousPicks(ctx context.Context, input SubmitAnonymousPicksInput) ([]pick.AnonymousPick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitAnonymousPicks")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if input.Season <= 0 || input.Week <= 0 {
		return nil, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}
	if len(input.Picks) == 0 {
		return nil, fmt.Errorf("%w: at least one pick is required", ErrInvalidInput)
	}

	// The caps apply to the email's whole week, across batches. Earlier
	// batches count; a resubmission for a game already picked lands on the
	// same row instead of consuming another slot.
	existing, err := s.anonRepo.ListByEmailWeek(ctx, email, input.Season, input.Week)
	if err != nil {
		return nil, fmt.Errorf("list existing anonymous picks for submission: %w", err)
	}
	existingByGame := make(map[string]pick.AnonymousPick, len(existing))
	held := make([]pick.Pick, 0, len(existing))
	for _, item := range existing {
		if !item.Active {
			continue
		}
		existingByGame[item.GameID] = item
		held = append(held, item.AsPick())
	}

	now := s.now().UTC()
	incoming := make([]pick.AnonymousPick, 0, len(input.Picks))
	asPicks := make([]pick.Pick, 0, len(input.Picks))
	for _, selection := range input.Picks {
		built, err := s.buildPick(ctx, email, input.Season, input.Week, selection, existingByGame[selection.GameID].ID, now)
		if err != nil {
			return nil, err
		}
		asPicks = append(asPicks, built)
		incoming = append(incoming, pick.AnonymousPick{
			ID:               built.ID,
			Email:            email,
			GameID:           selection.GameID,
			Season:           input.Season,
			Week:             input.Week,
			Side:             selection.Side,
			IsLock:           selection.IsLock,
			AssignedUserID:   existingByGame[selection.GameID].AssignedUserID,
			ValidationStatus: pick.ValidationPending,
			Active:           true,
			Visible:          true,
			UpdatedAt:        now,
		})
	}

	if err := s.rules.ValidateSubmission(held, asPicks, input.Season, input.Week); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	if err := s.anonRepo.Upsert(ctx, incoming); err != nil {
		return nil, fmt.Errorf("upsert anonymous picks: %w", err)
	}
	return incoming, nil
}

// AssignAnonymousPicks attaches every anonymous pick under an email to a
// registered user. Validation remains a separate admin step.
func (s *PickService) AssignAnonymousPicks(ctx context.Context, email, userID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.AssignAnonymousPicks")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	count, err := s.anonRepo.AssignByEmail(ctx, email, userID)
	if err != nil {
		return 0, fmt.Errorf("assign anonymous picks by email: %w", err)
	}
	return count, nil
}

// ValidateAnonymousPick moves one anonymous pick through the validation
// workflow. A validated pick that is assigned starts counting, so the
// owner's standings go stale.
func (s *PickService) ValidateAnonymousPick(ctx context.Context, pickID string, status pick.ValidationStatus) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ValidateAnonymousPick")
	defer span.End()

	if strings.TrimSpace(pickID) == "" {
		return fmt.Errorf("%w: pick id is required", ErrInvalidInput)
	}
	switch status {
	case pick.ValidationPending, pick.ValidationAuto, pick.ValidationManual, pick.ValidationConflicting:
	default:
		return fmt.Errorf("%w: unknown validation status %q", ErrInvalidInput, status)
	}

	item, exists, err := s.anonRepo.GetByID(ctx, pickID)
	if err != nil {
		return fmt.Errorf("get anonymous pick for validation: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: anonymous pick=%s", ErrNotFound, pickID)
	}

	if err := s.anonRepo.SetValidation(ctx, pickID, status); err != nil {
		return fmt.Errorf("set anonymous pick validation: %w", err)
	}

	if s.invalidator != nil && item.AssignedUserID != nil {
		s.invalidator.InvalidateUserWeek(ctx, item.Season, item.Week, []string{*item.AssignedUserID})
	}
	return nil
}

// buildPick validates the selection against the game store and produces the
// storable pick. existingID keeps a resubmission on the same row.
func (s *PickService) buildPick(ctx context.Context, userID string, season, week int, selection PickSelection, existingID string, now time.Time) (pick.Pick, error) {
	if strings.TrimSpace(selection.GameID) == "" {
		return pick.Pick{}, fmt.Errorf("%w: game id is required on every pick", ErrInvalidInput)
	}
	if !game.ValidSide(selection.Side) {
		return pick.Pick{}, fmt.Errorf("%w: %s", ErrInvalidInput, pick.ErrInvalidSide)
	}

	item, exists, err := s.gameRepo.GetByID(ctx, selection.GameID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get game for pick: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: game=%s", ErrNotFound, selection.GameID)
	}
	if item.Season != season || item.Week != week {
		return pick.Pick{}, fmt.Errorf("%w: %s", ErrInvalidInput, pick.ErrWeekMismatch)
	}

	pickID := existingID
	if pickID == "" {
		pickID, err = s.idGen.NewID()
		if err != nil {
			return pick.Pick{}, fmt.Errorf("generate pick id: %w", err)
		}
	}

	return pick.Pick{
		ID:        pickID,
		UserID:    userID,
		GameID:    selection.GameID,
		Season:    season,
		Week:      week,
		Side:      selection.Side,
		IsLock:    selection.IsLock,
		Submitted: true,
		Visible:   true,
		UpdatedAt: now,
	}, nil
}
