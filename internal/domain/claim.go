package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Claim represents a filed insurance claim.
type Claim struct {
	ID              string    `json:"id"`
	PolicyReference string    `json:"policyReference"`
	Description     string    `json:"description"`
	FilingDate      time.Time `json:"filingDate"`
	UserID          string    `json:"userId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SubmitClaimRequest is the body of POST /claims. Field presence is checked
// by the command handler, not by binding tags.
type SubmitClaimRequest struct {
	PolicyReference string `json:"policyReference"`
	Description     string `json:"description"`
	FilingDate      *Date  `json:"filingDate,omitempty"`
}

// SubmissionState tracks a single submission through the orchestrator.
type SubmissionState string

const (
	SubmissionPending   SubmissionState = "pending"
	SubmissionCompleted SubmissionState = "completed"
)

// ClaimUpdatedEvent is the event name pushed to realtime sessions.
const ClaimUpdatedEvent = "ClaimUpdated"

// NewClaimMessage is the broadcast payload for a created claim.
func NewClaimMessage(policyReference string) string {
	return "New claim created: " + policyReference
}

// DocumentUploadedMessage is the broadcast payload for an uploaded document.
func DocumentUploadedMessage(claimID string) string {
	return "Document uploaded for claim " + claimID
}

// dateLayouts are tried in order when decoding a Date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date is a timestamp that also accepts a bare calendar date on input.
// Calendar dates are interpreted as midnight UTC.
type Date struct {
	time.Time
}

// ParseDate parses s with the accepted layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", s)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
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
	return json.Marshal(d.Time.Format(time.RFC3339Nano))
}
