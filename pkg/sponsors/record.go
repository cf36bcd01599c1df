package sponsors

import (
	"math"
	"net/url"
	"strings"
)

// Record is a single sponsor as supplied by the sponsorship data provider.
// ProfileURL is the identity key; two records with the same ProfileURL in
// one run are an input error.
type Record struct {
	Name       string  `json:"name" yaml:"name" toml:"name"`
	ProfileURL string  `json:"profile_url" yaml:"profile_url" toml:"profile_url"`
	AvatarURL  string  `json:"avatar_url" yaml:"avatar_url" toml:"avatar_url"`
	Weight     float64 `json:"weight" yaml:"weight" toml:"weight"`
}

// Validate checks the record in isolation. It does not detect duplicate
// identities; that requires the whole record set and is done by ValidateAll
// and Classify.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{ProfileURL: r.ProfileURL, Field: "name", Reason: "must not be empty"}
	}
	if reason := checkAbsoluteURL(r.ProfileURL); reason != "" {
		return &ValidationError{ProfileURL: r.ProfileURL, Field: "profile_url", Reason: reason}
	}
	if reason := checkAbsoluteURL(r.AvatarURL); reason != "" {
		return &ValidationError{ProfileURL: r.ProfileURL, Field: "avatar_url", Reason: reason}
	}
	if math.IsNaN(r.Weight) {
		return &ValidationError{ProfileURL: r.ProfileURL, Field: "weight", Reason: "must be a number"}
	}
	if r.Weight < 0 {
		return &ValidationError{ProfileURL: r.ProfileURL, Field: "weight", Reason: "must not be negative"}
	}
	return nil
}

// checkAbsoluteURL returns an empty string for an absolute http(s) URL and a
// short reason otherwise.
func checkAbsoluteURL(raw string) string {
	if raw == "" {
		return "must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "is not a valid URL"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "must be an absolute http or https URL"
	}
	if u.Host == "" {
		return "must include a host"
	}
	return ""
}

// ValidateAll validates every record and reports duplicate profile URLs.
// Unlike Classify it does not stop at the first problem, which lets callers
// decide to skip bad records instead of aborting the run.
func ValidateAll(records []Record) []error {
	var errs []error
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[r.ProfileURL]; dup {
			errs = append(errs, &ValidationError{ProfileURL: r.ProfileURL, Field: "profile_url", Reason: "is duplicated"})
			continue
		}
		seen[r.ProfileURL] = struct{}{}
	}
	return errs
}
