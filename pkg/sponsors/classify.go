package sponsors

import (
	"slices"
	"strings"
)

// Group is the ordered list of sponsors that share a tier.
type Group struct {
	Tier     Tier
	Sponsors []Record
}

// Classify validates records, assigns each to a tier and returns one Group per
// non-empty tier. Within a group sponsors are sorted by descending weight and
// then by ascending name.
//
// Invalid thresholds fail with a *ConfigError before any record is examined.
// The first invalid or duplicated record fails with a *ValidationError.
func Classify(records []Record, th Thresholds) (map[Tier]Group, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(records))
	buckets := make(map[Tier][]Record, 3)
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ProfileURL]; dup {
			return nil, &ValidationError{ProfileURL: r.ProfileURL, Field: "profile_url", Reason: "is duplicated"}
		}
		seen[r.ProfileURL] = struct{}{}

		tier := th.Assign(r.Weight)
		buckets[tier] = append(buckets[tier], r)
	}

	groups := make(map[Tier]Group, len(buckets))
	for tier, members := range buckets {
		slices.SortStableFunc(members, compareRecords)
		groups[tier] = Group{Tier: tier, Sponsors: members}
	}
	return groups, nil
}

func compareRecords(a, b Record) int {
	switch {
	case a.Weight > b.Weight:
		return -1
	case a.Weight < b.Weight:
		return 1
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	// Names can collide; profile URLs are unique, so this keeps order total.
	return strings.Compare(a.ProfileURL, b.ProfileURL)
}
