// Package catalog holds the static clinical instrument catalogs: the DSM-5
// Level 1 cross-cutting screening domains, the PID-5 trait domains, the
// WHODAS 2.0 item set, the gatekeeper step descriptions, and the fixed
// answer lists used across the workflow. Catalogs are fixed at process start
// and never mutated.
package catalog

// ScreeningDomain is one symptom domain of the Level 1 cross-cutting
// measure. Ratings at or above Threshold trigger the Level2 follow-up
// instrument.
type ScreeningDomain struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Items     []string `json:"items"`
	Threshold int      `json:"threshold"`
	Level2    string   `json:"level2_instrument"`
}

// TraitDomain is one PID-5 personality trait domain with its ICD-11 trait
// qualifier equivalent.
type TraitDomain struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	ICD11Trait string   `json:"icd11_trait"`
	Items      []string `json:"items"`
}

// WHODASItem is one item of the WHODAS 2.0 12-item functioning interview.
type WHODASItem struct {
	Domain string `json:"domain"`
	Text   string `json:"text"`
}

// GateInfo describes one step of the gatekeeper workflow.
type GateInfo struct {
	Step        int    `json:"step"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Screening returns the cross-cutting screening domains in canonical order.
func Screening() []ScreeningDomain {
	out := make([]ScreeningDomain, len(screeningDomains))
	copy(out, screeningDomains)
	return out
}

// ScreeningByID looks up a screening domain by its id.
func ScreeningByID(id string) (ScreeningDomain, bool) {
	for _, d := range screeningDomains {
		if d.ID == id {
			return d, true
		}
	}
	return ScreeningDomain{}, false
}

// Traits returns the PID-5 trait domains in canonical order.
func Traits() []TraitDomain {
	out := make([]TraitDomain, len(traitDomains))
	copy(out, traitDomains)
	return out
}

// TraitByID looks up a trait domain by its id.
func TraitByID(id string) (TraitDomain, bool) {
	for _, d := range traitDomains {
		if d.ID == id {
			return d, true
		}
	}
	return TraitDomain{}, false
}

// WHODAS returns the 12 WHODAS 2.0 items.
func WHODAS() []WHODASItem {
	out := make([]WHODASItem, len(whodasItems))
	copy(out, whodasItems)
	return out
}

// Gates returns the eight gatekeeper step descriptions.
func Gates() []GateInfo {
	out := make([]GateInfo, len(gateInfos))
	copy(out, gateInfos)
	return out
}

// SeverityLabels returns the Likert anchor labels for ratings 0 through 4.
func SeverityLabels() []string {
	out := make([]string, len(severityLabels))
	copy(out, severityLabels)
	return out
}

// TraitLabels returns the anchor labels for PID-5 ratings 0 through 3.
func TraitLabels() []string {
	out := make([]string, len(traitLabels))
	copy(out, traitLabels)
	return out
}

// WHODASScale returns the anchor labels for WHODAS ratings 0 through 4.
func WHODASScale() []string {
	out := make([]string, len(whodasScale))
	copy(out, whodasScale)
	return out
}

// Stressors returns the psychosocial stressor checklist.
func Stressors() []string {
	out := make([]string, len(stressors))
	copy(out, stressors)
	return out
}

// Substances returns the substance checklist for the exclusion gate.
func Substances() []string {
	out := make([]string, len(substances))
	copy(out, substances)
	return out
}

// RemissionFactors returns the remission factor checklist.
func RemissionFactors() []string {
	out := make([]string, len(remissionFactors))
	copy(out, remissionFactors)
	return out
}

// CaveCategories returns the CAVE alert category ids.
func CaveCategories() []string {
	out := make([]string, len(caveCategories))
	copy(out, caveCategories)
	return out
}

// InvestigationPriorities returns the investigation plan priority ids.
func InvestigationPriorities() []string {
	out := make([]string, len(investigationPriorities))
	copy(out, investigationPriorities)
	return out
}
