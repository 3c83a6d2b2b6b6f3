package service

import (
	"context"
	"sync"

	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/clock"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Statistics aggregates lead counts over the actor's visible set. The
// independent counts run concurrently; period windows use the civil
// calendar day, Monday-based week and month.
func (s *Service) Statistics(ctx context.Context, actorID uuid.UUID) (transport.StatisticsResponse, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return transport.StatisticsResponse{}, err
	}

	scope := scopeFrom(s.matrix.VisibilityFor(actor))
	periods := clock.Periods(s.clock.Now())

	var (
		mu   sync.Mutex
		resp transport.StatisticsResponse
	)

	g, gctx := errgroup.WithContext(ctx)

	count := func(dest *int, fn func() (int, error)) {
		g.Go(func() error {
			n, err := fn()
			if err != nil {
				return err
			}
			mu.Lock()
			*dest = n
			mu.Unlock()
			return nil
		})
	}

	count(&resp.Total, func() (int, error) { return s.repo.CountVisible(gctx, scope) })
	count(&resp.Duplicates, func() (int, error) { return s.repo.CountDuplicates(gctx, scope) })
	count(&resp.Assigned, func() (int, error) { return s.repo.CountAssigned(gctx, scope) })
	count(&resp.CreatedToday, func() (int, error) { return s.repo.CountCreatedSince(gctx, scope, periods.DayStart) })
	count(&resp.CreatedWeek, func() (int, error) { return s.repo.CountCreatedSince(gctx, scope, periods.WeekStart) })
	count(&resp.CreatedMonth, func() (int, error) { return s.repo.CountCreatedSince(gctx, scope, periods.MonthStart) })
	count(&resp.ConvertedToday, func() (int, error) { return s.repo.CountConvertedSince(gctx, scope, periods.DayStart) })
	count(&resp.ConvertedWeek, func() (int, error) { return s.repo.CountConvertedSince(gctx, scope, periods.WeekStart) })
	count(&resp.ConvertedMonth, func() (int, error) { return s.repo.CountConvertedSince(gctx, scope, periods.MonthStart) })

	g.Go(func() error {
		byStatus, err := s.repo.StatusCounts(gctx, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		resp.ByStatus = byStatus
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		byCategory, err := s.repo.CategoryCounts(gctx, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		resp.ByCategory = byCategory
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return transport.StatisticsResponse{}, err
	}

	if resp.ByStatus == nil {
		resp.ByStatus = map[string]int{}
	}
	if resp.ByCategory == nil {
		resp.ByCategory = map[string]int{}
	}

	return resp, nil
}
