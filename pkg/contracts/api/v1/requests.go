// Package api contains API contract definitions for the order metrics service.
// Version v1 represents the current stable API version.
package api

import (
	"orderpulse/pkg/contracts/domain"
)

// DateRangeRequest carries the optional dashboard window from query parameters.
// Empty values fall back to the dataset bounds.
type DateRangeRequest struct {
	Start string `json:"start" query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" query:"end" validate:"omitempty,datetime=2006-01-02"`
}

// Window resolves the request against the default window.
// It assumes the request already passed validation.
func (r DateRangeRequest) Window(defaults domain.DateWindow) (domain.DateWindow, error) {
	window := defaults
	if r.Start != "" {
		start, err := domain.ParseDate(r.Start)
		if err != nil {
			return domain.DateWindow{}, err
		}
		window.Start = start
	}
	if r.End != "" {
		end, err := domain.ParseDate(r.End)
		if err != nil {
			return domain.DateWindow{}, err
		}
		window.End = end
	}
	return window, nil
}

// ReportRequest describes a one-shot export
type ReportRequest struct {
	DateRangeRequest
	Format    string `json:"format" validate:"required,oneof=csv json xlsx"`
	OutputDir string `json:"output_dir" validate:"required"`
}
