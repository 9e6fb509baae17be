package domain

import "github.com/couchcryptid/ili-nowcast-eval/internal/epiweek"

// ExclusionRule drops every nowcast for Location on epiweeks strictly before Before.
type ExclusionRule struct {
	Location string          `yaml:"location"`
	Before   epiweek.Epiweek `yaml:"before"`
}

// ExclusionRules is the declarative exclusion table consulted by the extractor.
type ExclusionRules []ExclusionRule

// DefaultExclusionRules covers the territories whose early nowcasts had no
// local sensor: Virgin Islands before 2013w27 and Puerto Rico before 2014w53.
func DefaultExclusionRules() ExclusionRules {
	return ExclusionRules{
		{Location: "vi", Before: 201327},
		{Location: "pr", Before: 201453},
	}
}

// Excludes reports whether any rule drops the (location, week) pair.
func (r ExclusionRules) Excludes(location string, week epiweek.Epiweek) bool {
	for _, rule := range r {
		if rule.Location == location && week < rule.Before {
			return true
		}
	}
	return false
}
