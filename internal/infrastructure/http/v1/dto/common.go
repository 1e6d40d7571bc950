// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain"
	"pgcledger/internal/domain/posting"
)

// Date is a calendar day. It reads "2006-01-02" or RFC 3339 and writes
// "2006-01-02".
type Date struct {
	time.Time
}

// ParseDate reads s as a day, dropping any time of day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
		}
	}
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// Ptr returns nil for the zero date.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// --- List ---

// ListRequest holds the common list query parameters.
type ListRequest struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=0,max=1000"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
}

func (r ListRequest) Filter() domain.ListFilter {
	return domain.ListFilter{
		Search:  r.Search,
		OrderBy: r.OrderBy,
		Limit:   r.Limit,
		Offset:  r.Offset,
	}.Normalize()
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

func FromListResult[T any](r domain.ListResult[T]) ListResponse {
	items := any(r.Items)
	if r.Items == nil {
		items = []T{}
	}
	return ListResponse{
		Items:      items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Posting ---

// PostingResponse describes what a transition posted. Warning is set when
// the posting was skipped; the transition itself was kept.
type PostingResponse struct {
	Status      posting.Status `json:"status"`
	EntryID     string         `json:"entryId,omitempty"`
	EntryNumber string         `json:"entryNumber,omitempty"`
	Warning     string         `json:"warning,omitempty"`
}

func FromResult(r posting.Result) PostingResponse {
	out := PostingResponse{Status: r.Status}
	if r.Entry != nil {
		out.EntryID = r.Entry.ID.String()
		out.EntryNumber = r.Entry.Number
	}
	if r.IsSkipped() {
		out.Warning = r.Reason
	}
	return out
}

// ResultResponse pairs a document with its posting outcome.
type ResultResponse struct {
	Data    any             `json:"data"`
	Posting PostingResponse `json:"posting"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Period ---

// PeriodRequest bounds a report. Either side may be empty.
type PeriodRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// MonthRequest names one month.
type MonthRequest struct {
	Month int `form:"month" json:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" json:"year" binding:"required,min=1900,max=9999"`
}

// YearRequest names one exercise.
type YearRequest struct {
	Year int `form:"year" json:"year" binding:"required,min=1900,max=9999"`
}

// DateRequest carries the day of a transition.
type DateRequest struct {
	Date Date `json:"date"`
}

// Or returns the requested day, or today.
func (r DateRequest) Or(now time.Time) time.Time {
	if r.Date.IsZero() {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return r.Date.Time
}
