package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/domain/picksource"
)

// PrecedenceService decides which of a user's pick sources counts for a
// period. Resolution is per week: a season view is the union of each week's
// single counted source, never a cross-source merge inside one week.
type PrecedenceService struct {
	pickRepo     pick.Repository
	anonRepo     pick.AnonymousRepository
	overrideRepo picksource.OverrideRepository
	invalidator  PeriodInvalidator
	now          func() time.Time
}

func NewPrecedenceService(
	pickRepo pick.Repository,
	anonRepo pick.AnonymousRepository,
	overrideRepo picksource.OverrideRepository,
	invalidator PeriodInvalidator,
) *PrecedenceService {
	return &PrecedenceService{
		pickRepo:     pickRepo,
		anonRepo:     anonRepo,
		overrideRepo: overrideRepo,
		invalidator:  invalidator,
		now:          time.Now,
	}
}

// BindInvalidator wires the recompute trigger in after construction. The
// invalidator is built on top of services that themselves depend on this
// one, so it cannot be passed to the constructor in production wiring.
func (s *PrecedenceService) BindInvalidator(invalidator PeriodInvalidator) {
	s.invalidator = invalidator
}

// CountedWeekPicks returns the picks that count for one (user, season, week)
// together with the resolution that selected them.
func (s *PrecedenceService) CountedWeekPicks(ctx context.Context, userID string, season, week int) ([]pick.Pick, picksource.Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrecedenceService.CountedWeekPicks")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, picksource.Resolution{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if season <= 0 || week <= 0 {
		return nil, picksource.Resolution{}, fmt.Errorf("%w: season and week must be greater than zero", ErrInvalidInput)
	}

	authPicks, err := s.pickRepo.ListByUserWeek(ctx, userID, season, week)
	if err != nil {
		return nil, picksource.Resolution{}, fmt.Errorf("list authenticated picks for precedence: %w", err)
	}
	anonPicks, err := s.anonRepo.ListByUserWeek(ctx, userID, season, week)
	if err != nil {
		return nil, picksource.Resolution{}, fmt.Errorf("list anonymous picks for precedence: %w", err)
	}

	override, err := s.lookupOverride(ctx, userID, season, week)
	if err != nil {
		return nil, picksource.Resolution{}, err
	}

	return resolveWeekPicks(authPicks, anonPicks, override)
}

// CountedSeasonPicks returns every pick counting toward a user's season
// standing. Each week resolves independently; a user may count
// authenticated picks one week and anonymous picks the next. The returned
// source is authenticated when any counted week resolved authenticated,
// anonymous when only anonymous weeks counted, none otherwise.
func (s *PrecedenceService) CountedSeasonPicks(ctx context.Context, userID string, season int) ([]pick.Pick, picksource.Source, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrecedenceService.CountedSeasonPicks")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, picksource.SourceNone, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if season <= 0 {
		return nil, picksource.SourceNone, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}

	authPicks, err := s.pickRepo.ListByUserSeason(ctx, userID, season)
	if err != nil {
		return nil, picksource.SourceNone, fmt.Errorf("list authenticated picks for season precedence: %w", err)
	}
	anonPicks, err := s.anonRepo.ListByUserSeason(ctx, userID, season)
	if err != nil {
		return nil, picksource.SourceNone, fmt.Errorf("list anonymous picks for season precedence: %w", err)
	}

	authByWeek := make(map[int][]pick.Pick)
	for _, item := range authPicks {
		authByWeek[item.Week] = append(authByWeek[item.Week], item)
	}
	anonByWeek := make(map[int][]pick.AnonymousPick)
	for _, item := range anonPicks {
		anonByWeek[item.Week] = append(anonByWeek[item.Week], item)
	}

	weeks := make([]int, 0, len(authByWeek)+len(anonByWeek))
	seen := make(map[int]struct{})
	for week := range authByWeek {
		weeks = append(weeks, week)
		seen[week] = struct{}{}
	}
	for week := range anonByWeek {
		if _, ok := seen[week]; ok {
			continue
		}
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	out := make([]pick.Pick, 0, len(authPicks))
	seasonSource := picksource.SourceNone
	for _, week := range weeks {
		override, err := s.lookupOverride(ctx, userID, season, week)
		if err != nil {
			return nil, picksource.SourceNone, err
		}
		counted, resolution, err := resolveWeekPicks(authByWeek[week], anonByWeek[week], override)
		if err != nil {
			return nil, picksource.SourceNone, err
		}
		out = append(out, counted...)

		switch resolution.Source {
		case picksource.SourceAuthenticated:
			seasonSource = picksource.SourceAuthenticated
		case picksource.SourceAnonymous:
			if seasonSource == picksource.SourceNone {
				seasonSource = picksource.SourceAnonymous
			}
		}
	}

	return out, seasonSource, nil
}

// SetOverride records an admin precedence decision. Week 0 scopes the
// override to the whole season. The affected user's standings are marked
// stale immediately.
func (s *PrecedenceService) SetOverride(ctx context.Context, item picksource.Override) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrecedenceService.SetOverride")
	defer span.End()

	if strings.TrimSpace(item.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if item.Season <= 0 || item.Week < 0 {
		return fmt.Errorf("%w: season must be greater than zero and week must not be negative", ErrInvalidInput)
	}
	if !picksource.ValidSource(item.Preferred) {
		return fmt.Errorf("%w: preferred source must be authenticated or anonymous", ErrInvalidInput)
	}

	item.UpdatedAt = s.now().UTC()
	if err := s.overrideRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert source override: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateUserWeek(ctx, item.Season, item.Week, []string{item.UserID})
	}
	return nil
}

// ClearOverride removes an override and lets the default precedence rule
// apply again.
func (s *PrecedenceService) ClearOverride(ctx context.Context, userID string, season, week int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrecedenceService.ClearOverride")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if season <= 0 || week < 0 {
		return fmt.Errorf("%w: season must be greater than zero and week must not be negative", ErrInvalidInput)
	}

	if err := s.overrideRepo.Delete(ctx, userID, season, week); err != nil {
		return fmt.Errorf("delete source override: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateUserWeek(ctx, season, week, []string{userID})
	}
	return nil
}

// lookupOverride prefers a week-scoped override and falls back to the
// season-wide one at week 0.
func (s *PrecedenceService) lookupOverride(ctx context.Context, userID string, season, week int) (*picksource.Override, error) {
	if s.overrideRepo == nil {
		return nil, nil
	}

	item, exists, err := s.overrideRepo.Get(ctx, userID, season, week)
	if err != nil {
		return nil, fmt.Errorf("get source override: %w", err)
	}
	if exists {
		return &item, nil
	}
	if week == 0 {
		return nil, nil
	}

	item, exists, err = s.overrideRepo.Get(ctx, userID, season, 0)
	if err != nil {
		return nil, fmt.Errorf("get season source override: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return &item, nil
}

func resolveWeekPicks(authPicks []pick.Pick, anonPicks []pick.AnonymousPick, override *picksource.Override) ([]pick.Pick, picksource.Resolution, error) {
	countedAuth := make([]pick.Pick, 0, len(authPicks))
	for _, item := range authPicks {
		if item.Counted() {
			countedAuth = append(countedAuth, item)
		}
	}
	countedAnon := make([]pick.Pick, 0, len(anonPicks))
	for _, item := range anonPicks {
		if item.Eligible() {
			countedAnon = append(countedAnon, item.AsPick())
		}
	}

	resolution := picksource.Resolve(len(countedAuth) > 0, len(countedAnon) > 0, override)
	switch resolution.Source {
	case picksource.SourceAuthenticated:
		return countedAuth, resolution, nil
	case picksource.SourceAnonymous:
		return countedAnon, resolution, nil
	default:
		return nil, resolution, nil
	}
}
