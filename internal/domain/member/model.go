package member

import (
	"strings"
	"time"
)

// Status constants as reported by the membership API.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusBanned   = "BANNED"
)

// Plan constants as reported by the membership API.
const (
	PlanRegular    = "Regular Member"
	PlanPermanent  = "Permanent Member"
	PlanDeveloping = "Developing Countries"
	PlanStudent    = "Student Member"
)

// Statuses lists the selectable status filter values in display order.
var Statuses = []string{StatusActive, StatusInactive, StatusBanned}

// Plans lists the selectable plan values in display order.
var Plans = []string{PlanRegular, PlanPermanent, PlanDeveloping, PlanStudent}

// Member is the console's projection of a membership record. Records are
// created and destroyed upstream; the console only patches fields it already
// holds. Field names and the 0/1 is_admin encoding are the wire contract.
type Member struct {
	ID               string `json:"id"`
	MemberID         string `json:"member_id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	MiddleName       string `json:"middle_name,omitempty"`
	Status           string `json:"status"`
	Plan             string `json:"plan"`
	Role             string `json:"role"`
	IsAdmin          int    `json:"is_admin"`
	PersonalWebpage  string `json:"personal_webpage,omitempty"`
	Phone            string `json:"phone,omitempty"`
	PhoneCountryCode string `json:"phone_country_code,omitempty"`
	Country          string `json:"country,omitempty"`
	CountryCode      string `json:"country_code,omitempty"`
	Affiliation      string `json:"affiliation,omitempty"`
	Title            string `json:"title,omitempty"`
	RenewDate        string `json:"renew_date,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// FullName joins first, middle and last name, skipping an empty middle name.
// INVARIANT: Member fields are not mutated
func (m Member) FullName() string {
	parts := []string{m.FirstName}
	if m.MiddleName != "" {
		parts = append(parts, m.MiddleName)
	}
	parts = append(parts, m.LastName)
	return strings.Join(parts, " ")
}

// Admin reports whether the member holds the admin flag.
// INVARIANT: Member fields are not mutated
func (m Member) Admin() bool {
	return m.IsAdmin != 0
}

// HasKnownPlan reports whether Plan is one of the selectable plan values.
// Unrecognised plans still render, with a blank plan selection.
func (m Member) HasKnownPlan() bool {
	return ValidPlan(m.Plan)
}

// Created parses the created_at timestamp for display. The zero time is
// returned when the upstream value does not parse.
func (m Member) Created() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, m.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ValidStatus reports whether s is a recognised status filter value.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPlan reports whether p is a recognised plan value.
func ValidPlan(p string) bool {
	for _, v := range Plans {
		if v == p {
			return true
		}
	}
	return false
}
