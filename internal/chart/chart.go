// Package chart holds the multiaxial patient chart: one aggregate per
// session carrying the six documentation axes, the screening state, and the
// gatekeeper progress. The chart is plain state; computation lives in the
// screening, traits, and coverage packages, orchestration in the session
// service.
package chart

import (
	"time"

	"github.com/mdx/mdx/internal/gates"
	"github.com/mdx/mdx/internal/screening"
	"github.com/mdx/mdx/internal/traits"
)

const defaultCompliance = 5

// Chart is the session-scoped patient chart. All fields round-trip through
// JSON losslessly.
type Chart struct {
	Intake Intake `json:"intake"`

	// Axis I: psychiatric profile
	Diagnoses             []Diagnosis         `json:"diagnoses"`
	Compliance            Compliance          `json:"compliance"`
	CoverageEntries       []CoverageEntry     `json:"symptom_coverage"`
	InvestigationPlans    []InvestigationPlan `json:"investigation_plans"`
	CoverageAnalysis      string              `json:"coverage_analysis"`
	InvestigationPlanNote string              `json:"investigation_plan_note"`

	// Axis II: biography and personality traits
	Biography    Biography      `json:"biography"`
	TraitRatings traits.Ratings `json:"trait_ratings"`
	PID5         traits.Profile `json:"pid5_profile"`

	// Axis III: medical synopsis
	MedicalConditions    []MedicalCondition `json:"medical_conditions"`
	Medications          []MedicationEntry  `json:"medications"`
	Treatments           []TreatmentEntry   `json:"treatments"`
	MedCompliance        MedCompliance      `json:"med_compliance"`
	MedCoverageAnalysis  string             `json:"med_coverage_analysis"`
	MedInvestigationPlan string             `json:"med_investigation_plan"`
	TreatmentCurrent     string             `json:"treatment_current"`
	TreatmentPast        string             `json:"treatment_past"`
	GeneticFactors       string             `json:"genetic_factors"`
	FamilyHistory        string             `json:"family_history"`

	// Axis IV: environment and functioning
	Functioning Functioning `json:"functioning"`

	// Axis V: condition model
	ConditionModel ConditionModel `json:"condition_model"`

	// Axis VI: evidence collection
	Evidence []EvidenceEntry `json:"evidence_entries"`

	CaveAlerts []CaveAlert     `json:"cave_alerts"`
	Timeline   []TimelineEvent `json:"symptom_timeline"`

	// Screening state, recomputed wholesale on each submission
	ScreeningResponses screening.Responses      `json:"crosscutting_level1"`
	Triggered          []screening.DomainResult `json:"triggered_domains"`
	HiTOP              screening.Profile        `json:"hitop_profile"`

	Gates gates.Progress `json:"gatekeeper"`
}

// New returns a fully-initialized empty chart: every list present, every
// profile defined with zero scores, compliance sliders at their midpoint,
// the gate sequence at intake.
func New() *Chart {
	return &Chart{
		Diagnoses:          []Diagnosis{},
		Compliance:         Compliance{MedSelf: defaultCompliance, MedExternal: defaultCompliance, Therapy: defaultCompliance},
		CoverageEntries:    []CoverageEntry{},
		InvestigationPlans: []InvestigationPlan{},
		TraitRatings:       traits.Ratings{},
		MedicalConditions:  []MedicalCondition{},
		Medications:        []MedicationEntry{},
		Treatments:         []TreatmentEntry{},
		MedCompliance:      MedCompliance{Self: defaultCompliance, External: defaultCompliance},
		Functioning: Functioning{
			WHODASScores: make([]int, 12),
			Stressors:    []string{},
		},
		ConditionModel: ConditionModel{
			Predisposing:  []string{},
			Precipitating: []string{},
			Perpetuating:  []string{},
			Protective:    []string{},
		},
		Evidence:           []EvidenceEntry{},
		CaveAlerts:         []CaveAlert{},
		Timeline:           []TimelineEvent{},
		ScreeningResponses: screening.Responses{},
		Gates:              gates.NewProgress(),
	}
}

// DiagnosesByStatus returns the axis I entries currently in the given
// status, preserving insertion order.
func (c *Chart) DiagnosesByStatus(status string) []Diagnosis {
	out := []Diagnosis{}
	for _, d := range c.Diagnoses {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

// MedicalBySubaxis returns the axis III entries tagged with the given
// subaxis, preserving insertion order.
func (c *Chart) MedicalBySubaxis(subaxis string) []MedicalCondition {
	out := []MedicalCondition{}
	for _, m := range c.MedicalConditions {
		if m.Subaxis == subaxis {
			out = append(out, m)
		}
	}
	return out
}

// Export is the canonical chart export document. Identity fields from the
// intake are deliberately absent.
type Export struct {
	ExportDate    time.Time       `json:"export_date"`
	SystemVersion string          `json:"system_version"`
	Axes          ExportAxes      `json:"axes"`
	Screening     ExportScreening `json:"screening"`
	Gatekeeper    gates.Progress  `json:"gatekeeper"`

	CaveAlerts         []CaveAlert         `json:"cave_alerts"`
	SymptomCoverage    []CoverageEntry     `json:"symptom_coverage"`
	InvestigationPlans []InvestigationPlan `json:"investigation_plans"`
	SymptomTimeline    []TimelineEvent     `json:"symptom_timeline"`
}

// ExportAxes groups the six documentation axes.
type ExportAxes struct {
	I   ExportAxisI     `json:"I_psychiatric_profile"`
	II  ExportAxisII    `json:"II_biography"`
	III ExportAxisIII   `json:"III_medical"`
	IV  ExportAxisIV    `json:"IV_environment_functioning"`
	V   ConditionModel  `json:"V_condition_model"`
	VI  []EvidenceEntry `json:"VI_evidence_collection"`
}

type ExportAxisI struct {
	Acute             []Diagnosis `json:"acute"`
	Chronic           []Diagnosis `json:"chronic"`
	Remitted          []Diagnosis `json:"remitted"`
	Suspected         []Diagnosis `json:"suspected"`
	Excluded          []Diagnosis `json:"excluded"`
	Compliance        Compliance  `json:"compliance"`
	InvestigationPlan string      `json:"investigation_plan"`
	CoverageAnalysis  string      `json:"coverage_analysis"`
}

type ExportAxisII struct {
	Education            string         `json:"education"`
	IQEstimate           string         `json:"iq"`
	DevelopmentalHistory string         `json:"developmental_history"`
	PID5                 traits.Profile `json:"pid5_profile"`
}

type ExportAxisIII struct {
	Acute            []MedicalCondition `json:"IIIa_acute"`
	Chronic          []MedicalCondition `json:"IIIb_chronic"`
	Contributing     []MedicalCondition `json:"IIIc_contributing"`
	Remitted         []MedicalCondition `json:"IIId_remitted"`
	TreatmentCurrent string             `json:"IIIf_treatment_current"`
	TreatmentPast    string             `json:"IIIf_treatment_past"`
	Compliance       MedCompliance      `json:"IIIg_compliance"`
	Suspected        []MedicalCondition `json:"IIIh_suspected"`
	Coverage         string             `json:"IIIi_coverage"`
	Plan             string             `json:"IIIj_plan"`
	GeneticFactors   string             `json:"IIIl_genetic_factors"`
	FamilyHistory    string             `json:"IIIl_family_history"`
	Medications      []MedicationEntry  `json:"IIIm_medications"`
	Treatments       []TreatmentEntry   `json:"IIIn_treatments"`
}

type ExportAxisIV struct {
	GAF          int      `json:"gaf"`
	WHODASScores []int    `json:"whodas_scores"`
	WHODASTotal  int      `json:"whodas_total"`
	WHODASPct    float64  `json:"whodas_pct"`
	GdB          int      `json:"gdb"`
	Stressors    []string `json:"stressors"`
}

type ExportScreening struct {
	Responses screening.Responses      `json:"crosscutting_level1"`
	Triggered []screening.DomainResult `json:"triggered_domains"`
	HiTOP     screening.Profile        `json:"hitop_profile"`
}

// BuildExport assembles the export document from the chart state. The
// caller stamps ExportDate and SystemVersion.
func (c *Chart) BuildExport() Export {
	total, _, pct := c.Functioning.WHODASTotal()
	return Export{
		Axes: ExportAxes{
			I: ExportAxisI{
				Acute:             c.DiagnosesByStatus(StatusAcute),
				Chronic:           c.DiagnosesByStatus(StatusChronic),
				Remitted:          c.DiagnosesByStatus(StatusRemitted),
				Suspected:         c.DiagnosesByStatus(StatusSuspected),
				Excluded:          c.DiagnosesByStatus(StatusExcluded),
				Compliance:        c.Compliance,
				InvestigationPlan: c.InvestigationPlanNote,
				CoverageAnalysis:  c.CoverageAnalysis,
			},
			II: ExportAxisII{
				Education:            c.Biography.Education,
				IQEstimate:           c.Biography.IQEstimate,
				DevelopmentalHistory: c.Biography.DevelopmentalHistory,
				PID5:                 c.PID5,
			},
			III: ExportAxisIII{
				Acute:            c.MedicalBySubaxis(SubaxisAcute),
				Chronic:          c.MedicalBySubaxis(SubaxisChronic),
				Contributing:     c.MedicalBySubaxis(SubaxisContributing),
				Remitted:         c.MedicalBySubaxis(SubaxisRemitted),
				TreatmentCurrent: c.TreatmentCurrent,
				TreatmentPast:    c.TreatmentPast,
				Compliance:       c.MedCompliance,
				Suspected:        c.MedicalBySubaxis(SubaxisSuspected),
				Coverage:         c.MedCoverageAnalysis,
				Plan:             c.MedInvestigationPlan,
				GeneticFactors:   c.GeneticFactors,
				FamilyHistory:    c.FamilyHistory,
				Medications:      c.Medications,
				Treatments:       c.Treatments,
			},
			IV: ExportAxisIV{
				GAF:          c.Functioning.GAFScore,
				WHODASScores: c.Functioning.WHODASScores,
				WHODASTotal:  total,
				WHODASPct:    pct,
				GdB:          c.Functioning.GdBScore,
				Stressors:    c.Functioning.Stressors,
			},
			V:  c.ConditionModel,
			VI: c.Evidence,
		},
		Screening: ExportScreening{
			Responses: c.ScreeningResponses,
			Triggered: c.Triggered,
			HiTOP:     c.HiTOP,
		},
		Gatekeeper:         c.Gates,
		CaveAlerts:         c.CaveAlerts,
		SymptomCoverage:    c.CoverageEntries,
		InvestigationPlans: c.InvestigationPlans,
		SymptomTimeline:    c.Timeline,
	}
}
