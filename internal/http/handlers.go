package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/engine"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/views"
)

type stateResponse struct {
	State   core.State `json:"state"`
	Loading bool       `json:"loading"`
	Version uint64     `json:"version"`
}

type dispatchResponse struct {
	State   core.State `json:"state"`
	Version uint64     `json:"version"`
}

type expensesResponse struct {
	Expenses []core.Expense `json:"expenses"`
	Count    int            `json:"count"`
	Total    float64        `json:"total"`
	Version  uint64         `json:"version"`
}

type seriesResponse struct {
	Buckets     []views.Bucket `json:"buckets"`
	HasSpending bool           `json:"hasSpending"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 until the persisted document has been hydrated.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	if snap.Loading {
		ErrorResponse(http.StatusServiceUnavailable, "state is still loading").
			Header("Retry-After", "1").Write(w)
		return
	}
	NewResponse().JSON(map[string]any{
		"status":  "ready",
		"version": snap.Version,
	}).Write(w)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	NewResponse().JSON(stateResponse{
		State:   snap.State,
		Loading: snap.Loading,
		Version: snap.Version,
	}).Write(w)
}

// handleDispatch decodes an action envelope, assigns ids to new records and
// applies it to the store.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	body, err := ReadBody(w, r, maxActionBody)
	if err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w)
			return
		}
		BadRequestError("could not read request body").Write(w)
		return
	}

	action, err := engine.DecodeAction(body)
	if err != nil {
		logger.Warn("Malformed action", log.FieldError, err.Error(), log.FieldErrorType, log.ErrorTypeValidation)
		BadRequestError(err.Error()).Write(w)
		return
	}
	action = fillIDs(action, s.newID)
	if err := validateAction(action); err != nil {
		BadRequestError(fmt.Sprintf("%s: %v", action.Type(), err)).Write(w)
		return
	}

	snap, err := s.store.DispatchSnapshot(ctx, action)
	if err != nil {
		var (
			refErr *engine.ReferenceError
			dupErr *engine.DuplicateError
		)
		switch {
		case errors.Is(err, store.ErrLoading):
			ServiceUnavailableError(err.Error()).Write(w)
		case errors.As(err, &dupErr):
			ConflictError(dupErr.Error()).Write(w)
		case errors.As(err, &refErr):
			UnprocessableEntityError(refErr.Error()).Write(w)
		default:
			logger.LogError(ctx, "Dispatch failed", err, log.OpDispatch,
				log.NewFields().With(log.FieldActionType, string(action.Type())).WithErrorType(log.ErrorTypeInternal))
			InternalServerError("dispatch failed").Write(w)
		}
		return
	}

	NewResponse().JSON(dispatchResponse{State: snap.State, Version: snap.Version}).Write(w)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := ParseExpenseQuery(r.URL.Query(), s.loc)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	snap := s.store.Snapshot()
	list := lookup(s, s.expenseCache, "expenses", queryKey(q), snap.Version, func() []core.Expense {
		return views.Filter(snap.State.Expenses, q)
	})
	NewResponse().JSON(expensesResponse{
		Expenses: list,
		Count:    len(list),
		Total:    core.SumExpenses(list),
		Version:  snap.Version,
	}).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	summary := lookup(s, s.summaryCache, "summary", "summary", snap.Version, func() views.Summary {
		return views.Summarize(snap.State)
	})
	NewResponse().JSON(summary).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	n, err := ParseMonths(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	now := s.now().In(s.loc)
	key := fmt.Sprintf("monthly:%d:%04d-%02d", n, now.Year(), now.Month())

	snap := s.store.Snapshot()
	buckets := lookup(s, s.seriesCache, "monthly", key, snap.Version, func() []views.Bucket {
		return views.MonthlyTrend(snap.State.Expenses, now, n, s.loc)
	})
	NewResponse().JSON(seriesResponse{Buckets: buckets, HasSpending: views.HasSpending(buckets)}).Write(w)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	key := fmt.Sprintf("daily:%04d-%02d", params.Year, params.Month)

	snap := s.store.Snapshot()
	buckets := lookup(s, s.seriesCache, "daily", key, snap.Version, func() []views.Bucket {
		return views.DailySpending(snap.State.Expenses, params.Year, params.Month, s.loc)
	})
	NewResponse().JSON(seriesResponse{Buckets: buckets, HasSpending: views.HasSpending(buckets)}).Write(w)
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	entries := lookup(s, s.distCache, "distribution", "distribution", snap.Version, func() []views.DistributionEntry {
		return views.Distribution(snap.State)
	})
	NewResponse().JSON(entries).Write(w)
}

// lookup serves a derived view from c when it was computed at version and
// records the outcome.
func lookup[T any](s *Server, c *cache.Versioned[T], view, key string, version uint64, compute func() T) T {
	if v, ok := c.Get(key, version); ok {
		if s.metrics != nil {
			s.metrics.ViewLookup(view, true)
		}
		return v
	}
	v := compute()
	c.Set(key, version, v)
	if s.metrics != nil {
		s.metrics.ViewLookup(view, false)
	}
	return v
}
