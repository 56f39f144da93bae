// Package screening evaluates Level 1 cross-cutting symptom responses
// against the domain thresholds and derives the HiTOP spectrum profile.
// All functions are pure; callers own persistence.
package screening

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mdx/mdx/internal/catalog"
)

// Responses maps an item key "<domainID>_<itemIndex>" to its 0-4 rating.
// Missing items read as 0.
type Responses map[string]int

// DomainResult is the evaluation outcome for one screening domain. Critical
// marks safety domains (threshold 1) with any positive rating.
type DomainResult struct {
	DomainID  string `json:"domain"`
	Label     string `json:"label"`
	MaxScore  int    `json:"max_score"`
	Threshold int    `json:"threshold"`
	Triggered bool   `json:"triggered"`
	Critical  bool   `json:"critical"`
	Level2    string `json:"level2"`
}

// Profile holds the six HiTOP spectrum scores, each in [0, 4].
type Profile struct {
	Internalizing             float64 `json:"internalizing"`
	ThoughtDisorder           float64 `json:"thought_disorder"`
	DisinhibitedExternalizing float64 `json:"disinhibited_externalizing"`
	AntagonisticExternalizing float64 `json:"antagonistic_externalizing"`
	Detachment                float64 `json:"detachment"`
	Somatoform                float64 `json:"somatoform"`
}

// DomainMax returns the highest rating across a domain's items. Unanswered
// items count as 0; a domain with no items scores 0.
func DomainMax(domainID string, itemCount int, responses Responses) int {
	max := 0
	for i := 0; i < itemCount; i++ {
		if v := responses[fmt.Sprintf("%s_%d", domainID, i)]; v > max {
			max = v
		}
	}
	return max
}

// Evaluate scores one domain. Triggered is boundary-inclusive: a max score
// equal to the threshold triggers the domain.
func Evaluate(domain catalog.ScreeningDomain, responses Responses) DomainResult {
	max := DomainMax(domain.ID, len(domain.Items), responses)
	return DomainResult{
		DomainID:  domain.ID,
		Label:     domain.Label,
		MaxScore:  max,
		Threshold: domain.Threshold,
		Triggered: max >= domain.Threshold,
		Critical:  domain.Threshold == 1 && max >= 1,
		Level2:    domain.Level2,
	}
}

// EvaluateAll returns the triggered domains in catalog order. The result is
// recomputed wholesale; callers replace any previous list.
func EvaluateAll(domains []catalog.ScreeningDomain, responses Responses) []DomainResult {
	var triggered []DomainResult
	for _, d := range domains {
		if r := Evaluate(d, responses); r.Triggered {
			triggered = append(triggered, r)
		}
	}
	return triggered
}

// ComputeProfile derives the HiTOP spectra from the screening responses
// (mapping after Kotov et al., 2017):
//
//	internalizing              = max(depression, anxiety, somatic, sleep)
//	thought_disorder           = max(psychosis, dissociation)
//	disinhibited_externalizing = max(substance, mania)
//	antagonistic_externalizing = anger
//	detachment                 = memory (proxy; no withdrawal domain in Level 1)
//	somatoform                 = somatic
func ComputeProfile(domains []catalog.ScreeningDomain, responses Responses) Profile {
	counts := make(map[string]int, len(domains))
	for _, d := range domains {
		counts[d.ID] = len(d.Items)
	}
	dm := func(id string) float64 {
		return float64(DomainMax(id, counts[id], responses))
	}

	return Profile{
		Internalizing:             max4(dm("depression"), dm("anxiety"), dm("somatic"), dm("sleep")),
		ThoughtDisorder:           max2(dm("psychosis"), dm("dissociation")),
		DisinhibitedExternalizing: max2(dm("substance"), dm("mania")),
		AntagonisticExternalizing: dm("anger"),
		Detachment:                dm("memory"),
		Somatoform:                dm("somatic"),
	}
}

// ValidateResponses rejects unknown item keys and ratings outside 0-4.
// Partial response sets are fine; missing items default to 0 downstream.
func ValidateResponses(domains []catalog.ScreeningDomain, responses Responses) error {
	counts := make(map[string]int, len(domains))
	for _, d := range domains {
		counts[d.ID] = len(d.Items)
	}

	for key, rating := range responses {
		if rating < 0 || rating > 4 {
			return fmt.Errorf("item %s: rating %d out of range 0-4", key, rating)
		}
		sep := strings.LastIndex(key, "_")
		if sep <= 0 || sep == len(key)-1 {
			return fmt.Errorf("item %s: malformed key", key)
		}
		domainID := key[:sep]
		idx, err := strconv.Atoi(key[sep+1:])
		if err != nil {
			return fmt.Errorf("item %s: malformed item index", key)
		}
		count, ok := counts[domainID]
		if !ok {
			return fmt.Errorf("item %s: unknown domain %q", key, domainID)
		}
		if idx < 0 || idx >= count {
			return fmt.Errorf("item %s: domain %q has %d items", key, domainID, count)
		}
	}
	return nil
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func max4(a, b, c, d float64) float64 {
	return max2(max2(a, b), max2(c, d))
}
