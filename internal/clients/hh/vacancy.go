package hh

import (
	"encoding/json"
	"fmt"
)

// SearchPage is one page of /vacancies search results. Items are kept undecoded so
// that a malformed item fails on its own, see DecodeVacancy.
type SearchPage struct {
	Found int               `json:"found"`
	Pages int               `json:"pages"`
	Items []json.RawMessage `json:"items"`
}

// DecodeVacancy decodes a single search item. On failure the returned vacancy still
// carries whatever fields were decoded, usually the id.
func DecodeVacancy(data json.RawMessage) (RawVacancy, error) {
	var vacancy RawVacancy
	if err := json.Unmarshal(data, &vacancy); err != nil {
		return vacancy, fmt.Errorf("malformed vacancy %q: %w", vacancy.ID, err)
	}
	return vacancy, nil
}

// RawVacancy is a vacancy as hh.ru returns it. Search results carry a subset of the
// fields, /vacancies/{id} carries all of them.
type RawVacancy struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Salary       *Salary    `json:"salary"`
	Employer     *namedRef  `json:"employer"`
	Experience   *namedRef  `json:"experience"`
	Schedule     *namedRef  `json:"schedule"`
	Employment   *namedRef  `json:"employment"`
	Area         *namedRef  `json:"area"`
	Description  *string    `json:"description"`
	KeySkills    []KeySkill `json:"key_skills"`
	AlternateURL string     `json:"alternate_url"`
	PublishedAt  string     `json:"published_at"`
}

type Salary struct {
	From     *int    `json:"from"`
	To       *int    `json:"to"`
	Currency *string `json:"currency"`
	Gross    *bool   `json:"gross"`
}

func (s *Salary) isEmpty() bool {
	return s == nil || (s.From == nil && s.To == nil && s.Currency == nil)
}

type KeySkill struct {
	Name string `json:"name"`
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r *namedRef) name() *string {
	if r == nil || r.Name == "" {
		return nil
	}
	return &r.Name
}

// NeedsDetails reports whether the search preview lacks data that only the detail
// endpoint provides.
func (v RawVacancy) NeedsDetails() bool {
	return v.Salary.isEmpty() || v.Description == nil || *v.Description == ""
}

// Merge returns v with every field that detail carries overriding the preview value.
func (v RawVacancy) Merge(detail RawVacancy) RawVacancy {
	if detail.ID != "" {
		v.ID = detail.ID
	}
	if detail.Name != "" {
		v.Name = detail.Name
	}
	if detail.Salary != nil {
		v.Salary = detail.Salary
	}
	if detail.Employer != nil {
		v.Employer = detail.Employer
	}
	if detail.Experience != nil {
		v.Experience = detail.Experience
	}
	if detail.Schedule != nil {
		v.Schedule = detail.Schedule
	}
	if detail.Employment != nil {
		v.Employment = detail.Employment
	}
	if detail.Area != nil {
		v.Area = detail.Area
	}
	if detail.Description != nil {
		v.Description = detail.Description
	}
	if detail.KeySkills != nil {
		v.KeySkills = detail.KeySkills
	}
	if detail.AlternateURL != "" {
		v.AlternateURL = detail.AlternateURL
	}
	if detail.PublishedAt != "" {
		v.PublishedAt = detail.PublishedAt
	}
	return v
}
