// Package traits aggregates PID-5 item ratings into per-domain scores
// aligned with the ICD-11 trait qualifiers.
package traits

import (
	"fmt"
	"math"

	"github.com/mdx/mdx/internal/catalog"
)

// Ratings maps a trait domain id to its item scores, each 0-3.
type Ratings map[string][]int

// Profile holds the six PID-5 domain scores, each in [0, 3]. A domain with
// no ratings scores 0.
type Profile struct {
	NegativeAffectivity float64 `json:"negative_affectivity"`
	Detachment          float64 `json:"detachment"`
	Antagonism          float64 `json:"antagonism"`
	Disinhibition       float64 `json:"disinhibition"`
	Psychoticism        float64 `json:"psychoticism"`
	Anankastia          float64 `json:"anankastia"`
}

// DomainScore returns the arithmetic mean of the item ratings rounded to
// two decimal places. Empty input scores 0.
func DomainScore(items []int) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0
	for _, v := range items {
		sum += v
	}
	mean := float64(sum) / float64(len(items))
	return math.Round(mean*100) / 100
}

// ComputeProfile scores each domain independently. Domains absent from the
// ratings keep their zero default.
func ComputeProfile(ratings Ratings) Profile {
	return Profile{
		NegativeAffectivity: DomainScore(ratings["negative_affectivity"]),
		Detachment:          DomainScore(ratings["detachment"]),
		Antagonism:          DomainScore(ratings["antagonism"]),
		Disinhibition:       DomainScore(ratings["disinhibition"]),
		Psychoticism:        DomainScore(ratings["psychoticism"]),
		Anankastia:          DomainScore(ratings["anankastia"]),
	}
}

// ValidateRatings rejects unknown domains, ratings outside 0-3, and more
// items than the instrument defines for a domain.
func ValidateRatings(domains []catalog.TraitDomain, ratings Ratings) error {
	counts := make(map[string]int, len(domains))
	for _, d := range domains {
		counts[d.ID] = len(d.Items)
	}

	for id, items := range ratings {
		count, ok := counts[id]
		if !ok {
			return fmt.Errorf("unknown trait domain %q", id)
		}
		if len(items) > count {
			return fmt.Errorf("domain %s: %d ratings exceed %d items", id, len(items), count)
		}
		for i, v := range items {
			if v < 0 || v > 3 {
				return fmt.Errorf("domain %s item %d: rating %d out of range 0-3", id, i, v)
			}
		}
	}
	return nil
}
