package scheme

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domain "chitfund-backend/internal/domain/scheme"
	"chitfund-backend/internal/domain/uow"
)

const sweepPageSize = 100

// SweepMatured walks every live scheme, stores the whole months elapsed since
// its start date and completes the ones whose last instalment month has passed.
// A failure on one scheme does not stop the sweep; all failures are returned joined.
func (u *Usecase) SweepMatured(ctx context.Context) (SweepResult, error) {
	var (
		res  SweepResult
		errs []error
	)
	now := u.clock()
	live := make([]domain.Scheme, 0, sweepPageSize)
	for offset := 0; ; offset += sweepPageSize {
		page, err := u.repos.Schemes.List(ctx, domain.ListFilter{
			Status: domain.StatusLive,
			Limit:  sweepPageSize,
			Offset: offset,
		})
		if err != nil {
			return res, err
		}
		live = append(live, page...)
		if len(page) < sweepPageSize {
			break
		}
	}

	for i := range live {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		s := &live[i]
		res.Checked++
		months := domain.MonthsElapsed(s.ChitStartDate, now, s.ChitDuration)
		switch {
		case months == s.ChitDuration:
			if _, err := u.CompleteScheme(ctx, SystemActor, s.SchemeID); err != nil {
				errs = append(errs, err)
				continue
			}
			res.Completed++
		case months != s.CompletedMonths:
			if _, err := u.RecordProgress(ctx, SystemActor, s.SchemeID); err != nil {
				errs = append(errs, err)
				continue
			}
			res.Progressed++
		}
	}

	u.log.Info("maturity_sweep_finished",
		zap.Int("checked", res.Checked),
		zap.Int("progressed", res.Progressed),
		zap.Int("completed", res.Completed),
		zap.Int("failed", len(errs)),
	)
	return res, errors.Join(errs...)
}

// RecordProgress refreshes completedMonths of a live scheme without changing its status.
func (u *Usecase) RecordProgress(ctx context.Context, actor Actor, schemeID string) (*SchemeDTO, error) {
	return u.transition(ctx, actor, domain.OpRecordProgress, schemeID, "Instalment progress recorded",
		func(_ uow.Repos, s *domain.Scheme) error {
			s.CompletedMonths = domain.MonthsElapsed(s.ChitStartDate, u.clock(), s.ChitDuration)
			return nil
		})
}
