package chart

import (
	"time"

	"github.com/google/uuid"
)

// Diagnosis statuses. Status is mutable over a diagnosis' lifetime;
// status-partitioned views are derived by filtering, never by moving
// entries between lists.
const (
	StatusAcute     = "acute"
	StatusChronic   = "chronic"
	StatusRemitted  = "remitted"
	StatusSuspected = "suspected"
	StatusExcluded  = "excluded"
)

// Diagnosis severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityVeryHigh = "very_high"
)

// Medical condition causality ratings.
const (
	CausalityFull         = "full"
	CausalityContributing = "contributing"
	CausalityIndependent  = "independent"
)

// Medical synopsis subaxis tags.
const (
	SubaxisAcute        = "IIIa"
	SubaxisChronic      = "IIIb"
	SubaxisContributing = "IIIc"
	SubaxisRemitted     = "IIId"
	SubaxisSuspected    = "IIIh"
)

// Investigation plan states.
const (
	InvestigationOpen = "open"
	InvestigationDone = "done"
)

// Intake captures patient identity and the reason for referral at step 0.
type Intake struct {
	PatientName string `json:"patient_name"`
	DateOfBirth string `json:"date_of_birth"`
	Reason      string `json:"reason"`
}

// Diagnosis is one axis I entry with pro/contra evidence weighting.
type Diagnosis struct {
	ID               uuid.UUID `json:"id"`
	ICD11Code        string    `json:"code_icd11"`
	DSM5Code         string    `json:"code_dsm5"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	Evidence         string    `json:"evidence"`
	EvidencePro      string    `json:"evidence_pro"`
	EvidenceContra   string    `json:"evidence_contra"`
	ConfidencePct    int       `json:"confidence_pct"`
	Severity         string    `json:"severity"`
	DateOnset        string    `json:"date_onset"`
	DateRemission    string    `json:"date_remission"`
	RemissionFactors []string  `json:"remission_factors"`
	CreatedAt        time.Time `json:"created_at"`
}

// MedicalCondition is one axis III entry, tagged with its subaxis.
type MedicalCondition struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ICD11Code        string    `json:"icd11_code"`
	DSM5Code         string    `json:"dsm5_code"`
	Status           string    `json:"status"`
	Causality        string    `json:"causality"`
	Evidence         string    `json:"evidence"`
	DateOnset        string    `json:"date_onset"`
	DateRemission    string    `json:"date_remission"`
	RemissionFactors []string  `json:"remission_factors"`
	Subaxis          string    `json:"subaxis"`
}

// MedicationEntry is one axis IIIm medication with its rated effect.
type MedicationEntry struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Dose         string    `json:"dose"`
	Unit         string    `json:"unit"`
	Purpose      string    `json:"purpose"`
	Since        string    `json:"since"`
	Schedule     string    `json:"schedule"`
	Effect       string    `json:"effect"`
	EffectRating int       `json:"effect_rating"`
	SideEffects  string    `json:"side_effects"`
	Interactions string    `json:"interactions"`
}

// TreatmentEntry is one treatment episode with self- and externally-rated
// compliance.
type TreatmentEntry struct {
	ID                 uuid.UUID `json:"id"`
	Type               string    `json:"type"`
	Name               string    `json:"name"`
	StartDate          string    `json:"start_date"`
	EndDate            string    `json:"end_date"`
	Effect             string    `json:"effect"`
	SideEffects        string    `json:"side_effects"`
	ComplianceSelf     int       `json:"compliance_self"`
	ComplianceExternal int       `json:"compliance_external"`
}

// CaveAlert is a prominent warning pinned to an axis.
type CaveAlert struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	AxisRef   string    `json:"axis_ref"`
	CreatedAt time.Time `json:"created_at"`
}

// CoverageEntry states how far the recorded diagnoses explain one symptom.
type CoverageEntry struct {
	ID                  uuid.UUID `json:"id"`
	Symptom             string    `json:"symptom"`
	ExplainingDiagnoses string    `json:"explaining_diagnoses"`
	CoveragePct         int       `json:"coverage_pct"`
}

// InvestigationPlan is one prioritized open investigation.
type InvestigationPlan struct {
	ID            uuid.UUID `json:"id"`
	Investigation string    `json:"investigation"`
	Specialty     string    `json:"specialty"`
	Priority      string    `json:"priority"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
}

// TimelineEvent is one entry of the longitudinal symptom course.
type TimelineEvent struct {
	ID              uuid.UUID `json:"id"`
	Symptom         string    `json:"symptom"`
	Onset           string    `json:"onset"`
	CurrentStatus   string    `json:"current_status"`
	TherapyResponse string    `json:"therapy_response"`
}

// EvidenceEntry is one axis VI source document reference.
type EvidenceEntry struct {
	ID           uuid.UUID `json:"id"`
	Axis         string    `json:"axis"`
	DocumentType string    `json:"document_type"`
	Description  string    `json:"description"`
	Date         string    `json:"date"`
	Source       string    `json:"source"`
}

// ConditionModel is the axis V four-field formulation.
type ConditionModel struct {
	Predisposing  []string `json:"predisposing"`
	Precipitating []string `json:"precipitating"`
	Perpetuating  []string `json:"perpetuating"`
	Protective    []string `json:"protective"`
	Narrative     string   `json:"narrative"`
}

// Functioning is the axis IV assessment: GAF, the 12 WHODAS 2.0 item
// ratings, degree of disability, and psychosocial stressors.
type Functioning struct {
	GAFScore     int      `json:"gaf_score"`
	WHODASScores []int    `json:"whodas_scores"`
	GdBScore     int      `json:"gdb_score"`
	Stressors    []string `json:"stressors"`
}

// WHODASTotal derives the summary score: item total, scale maximum, and
// percentage. Derived on demand, never stored.
func (f Functioning) WHODASTotal() (total, max int, pct float64) {
	for _, v := range f.WHODASScores {
		total += v
	}
	max = len(f.WHODASScores) * 4
	if max > 0 {
		pct = float64(total) / float64(max) * 100
	}
	return total, max, pct
}

// Biography holds the axis II background fields.
type Biography struct {
	Education            string `json:"education"`
	IQEstimate           string `json:"iq_estimate"`
	DevelopmentalHistory string `json:"developmental_history"`
}

// Compliance holds the axis I adherence sliders, each 0-10.
type Compliance struct {
	MedSelf     int `json:"med_self"`
	MedExternal int `json:"med_ext"`
	Therapy     int `json:"therapy"`
}

// MedCompliance holds the axis IIIg adherence sliders, each 0-10.
type MedCompliance struct {
	Self     int `json:"self"`
	External int `json:"external"`
}
