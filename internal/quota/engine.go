package quota

import (
	"context"
	"fmt"
	"time"
)

// Engine is the daily-quota accounting core. It is stateless apart from the
// one persisted record per caller; the daily reset is encoded entirely in the
// comparison between the stored day key and the current one.
type Engine struct {
	store        Store
	defaultQuota int
	now          func() time.Time
}

func NewEngine(store Store, defaultQuota int) *Engine {
	return &Engine{
		store:        store,
		defaultQuota: defaultQuota,
		now:          time.Now,
	}
}

// Read returns the caller's current quota view without consuming anything.
func (e *Engine) Read(ctx context.Context, callerID string) (View, error) {
	rec, err := e.store.Read(ctx, callerID)
	if err != nil {
		return View{}, fmt.Errorf("reading quota for %s: %w", callerID, err)
	}
	return e.view(rec, e.now()), nil
}

// Consume atomically grants one unit of today's quota, or reports current
// usage when the caller is already exhausted. A denial on an unchanged day
// writes nothing; in particular the stored resetAt is not bumped. A store
// failure means "quota indeterminate" and is returned as an error, never as
// a denial.
func (e *Engine) Consume(ctx context.Context, callerID, email string) (Decision, error) {
	d, err := e.store.Update(ctx, callerID, func(cur *Record) (*Record, Decision) {
		now := e.now()
		v := e.view(cur, now)

		if v.Used >= v.Total {
			return nil, Decision{Allowed: false, Quota: View{
				Used:      v.Used,
				Total:     v.Total,
				Remaining: 0,
				ResetAt:   v.ResetAt,
			}}
		}

		usedAfter := v.Used + 1
		resetAt := NextReset(now)
		next := &Record{
			CallerID:      callerID,
			Email:         email,
			UsedToday:     usedAfter,
			TotalQuota:    v.Total,
			LastUsageDate: DayKey(now),
			ResetAt:       resetAt,
		}
		return next, Decision{Allowed: true, Quota: View{
			Used:      usedAfter,
			Total:     v.Total,
			Remaining: max(0, v.Total-usedAfter),
			ResetAt:   resetAt,
		}}
	})
	if err != nil {
		return Decision{}, fmt.Errorf("consuming quota for %s: %w", callerID, err)
	}
	return d, nil
}

// view derives the effective quota state from a stored record (possibly nil)
// at the given instant. A record from a previous day counts as unused; its
// stale resetAt is replaced by a freshly computed one that is reported but
// never persisted here.
func (e *Engine) view(rec *Record, now time.Time) View {
	today := DayKey(now)

	used := 0
	total := e.defaultQuota
	resetAt := NextReset(now)

	if rec != nil {
		if rec.TotalQuota > 0 {
			total = rec.TotalQuota
		}
		if rec.LastUsageDate == today {
			used = rec.UsedToday
			if !rec.ResetAt.IsZero() {
				resetAt = rec.ResetAt
			}
		}
	}

	return View{
		Used:      used,
		Total:     total,
		Remaining: max(0, total-used),
		ResetAt:   resetAt,
	}
}
