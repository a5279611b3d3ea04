// Package types provides type definitions for the job records and API envelopes used throughout jobsearch.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// JobItem is a single job listing as returned by the job API.
// Search results carry the summary fields only; the single-item endpoint fills in the rest.
type JobItem struct {
	ID             int     `json:"id" validate:"required,gt=0"`
	BadgeLetters   string  `json:"badgeLetters"`
	Title          string  `json:"title" validate:"required"`
	Company        string  `json:"company"`
	Date           string  `json:"date,omitempty"`
	RelevanceScore float64 `json:"relevanceScore" validate:"gte=0"`
	DaysAgo        int     `json:"daysAgo" validate:"gte=0"`

	// Detail fields
	Description    string   `json:"description,omitempty"`
	Qualifications []string `json:"qualifications,omitempty"`
	Reviews        []string `json:"reviews,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Salary         string   `json:"salary,omitempty"`
	Location       string   `json:"location,omitempty"`
	CoverImgURL    string   `json:"coverImgURL,omitempty"`
	CompanyURL     string   `json:"companyURL,omitempty"`
}

// Validate checks the fields every job item must carry.
func (j *JobItem) Validate() error {
	validate := validator.New()
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("invalid job item %d: %w", j.ID, err)
	}
	return nil
}

// JobItemResponse is the envelope returned by GET {base}/{id}.
type JobItemResponse struct {
	Public  bool    `json:"public"`
	JobItem JobItem `json:"jobItem"`
}

// JobItemsResponse is the envelope returned by GET {base}?search={text}.
type JobItemsResponse struct {
	Public   bool      `json:"public"`
	Sorted   bool      `json:"sorted"`
	JobItems []JobItem `json:"jobItems"`
}

// ErrorResponse is the body the API sends with a non-2xx status.
type ErrorResponse struct {
	Description string `json:"description"`
}
