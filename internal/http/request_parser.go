// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request data.

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/views"
)

const (
	maxActionBody   = 1 << 20
	defaultMonths   = 6
	maxMonths       = 36
	queryDateLayout = "2006-01-02"
)

// ErrBodyTooLarge is returned by ReadBody when the limit is exceeded.
var ErrBodyTooLarge = errors.New("request body too large")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams extracts year and month from query parameters, taking
// missing values from now.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: now.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return params, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return params, fmt.Errorf("invalid month %q: must be 1-12", v)
		}
		params.Month = time.Month(m)
	}
	return params, nil
}

// ParseMonths reads the months parameter of the trend endpoint.
func ParseMonths(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return defaultMonths, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxMonths {
		return 0, fmt.Errorf("invalid months %q: must be 1-%d", v, maxMonths)
	}
	return n, nil
}

// ParseExpenseQuery builds a views.Query from q, from, to, category and sort.
// Dates are calendar days (YYYY-MM-DD) in loc.
func ParseExpenseQuery(query url.Values, loc *time.Location) (views.Query, error) {
	q := views.Query{
		Text:       sanitizeInput(query.Get("q")),
		CategoryID: sanitizeInput(query.Get("category")),
		Location:   loc,
	}

	var err error
	if q.From, err = parseQueryDate(query.Get("from"), loc); err != nil {
		return q, fmt.Errorf("invalid from: %w", err)
	}
	if q.To, err = parseQueryDate(query.Get("to"), loc); err != nil {
		return q, fmt.Errorf("invalid to: %w", err)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, errors.New("invalid range: to is before from")
	}
	if q.Sort, err = views.ParseSortOrder(strings.TrimSpace(query.Get("sort"))); err != nil {
		return q, err
	}
	return q, nil
}

func parseQueryDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(queryDateLayout, s, loc)
}

// ReadBody reads at most limit bytes of the request body.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}
