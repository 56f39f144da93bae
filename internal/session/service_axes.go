package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mdx/mdx/internal/catalog"
	"github.com/mdx/mdx/internal/chart"
	"github.com/mdx/mdx/internal/coverage"
	"github.com/mdx/mdx/internal/gates"
	"github.com/mdx/mdx/internal/platform/middleware"
	"github.com/mdx/mdx/internal/platform/report"
	"github.com/mdx/mdx/internal/screening"
	"github.com/mdx/mdx/internal/traits"
)

// ErrEntryNotFound is returned when a chart entry referenced by id does not
// exist on the session.
var ErrEntryNotFound = errors.New("chart entry not found")

var validStatuses = map[string]bool{
	chart.StatusAcute:     true,
	chart.StatusChronic:   true,
	chart.StatusRemitted:  true,
	chart.StatusSuspected: true,
	chart.StatusExcluded:  true,
}

var validSeverities = map[string]bool{
	chart.SeverityLow:      true,
	chart.SeverityMedium:   true,
	chart.SeverityHigh:     true,
	chart.SeverityVeryHigh: true,
}

var validSubaxes = map[string]bool{
	chart.SubaxisAcute:        true,
	chart.SubaxisChronic:      true,
	chart.SubaxisContributing: true,
	chart.SubaxisRemitted:     true,
	chart.SubaxisSuspected:    true,
}

var validCausalities = map[string]bool{
	chart.CausalityFull:         true,
	chart.CausalityContributing: true,
	chart.CausalityIndependent:  true,
}

var validAxisRefs = map[string]bool{
	"I": true, "II": true, "III": true, "IV": true, "V": true, "VI": true,
}

// Evidence entries document axes I through V.
var validEvidenceAxes = map[string]bool{
	"I": true, "II": true, "III": true, "IV": true, "V": true,
}

var (
	validCaveCategories = buildSet(catalog.CaveCategories())
	validPriorities     = buildSet(catalog.InvestigationPriorities())
)

func buildSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// -- Axis I: psychiatric profile --

func (s *Service) AddDiagnosis(ctx context.Context, id uuid.UUID, d chart.Diagnosis) (*chart.Diagnosis, error) {
	sanitizeAll(&d.Name, &d.ICD11Code, &d.DSM5Code, &d.Evidence, &d.EvidencePro,
		&d.EvidenceContra, &d.DateOnset, &d.DateRemission)
	d.RemissionFactors = sanitizeSlice(d.RemissionFactors)
	if d.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if d.Status == "" {
		d.Status = chart.StatusAcute
	}
	if !validStatuses[d.Status] {
		return nil, fmt.Errorf("invalid status: %s", d.Status)
	}
	if d.Severity != "" && !validSeverities[d.Severity] {
		return nil, fmt.Errorf("invalid severity: %s", d.Severity)
	}
	if d.ConfidencePct < 0 || d.ConfidencePct > 100 {
		return nil, fmt.Errorf("confidence_pct must be between 0 and 100")
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Diagnoses = append(sess.Chart.Diagnoses, d)
		return nil
	}); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) UpdateDiagnosisStatus(ctx context.Context, id, diagID uuid.UUID, status string) (*chart.Diagnosis, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	var updated chart.Diagnosis
	if _, err := s.update(ctx, id, func(sess *Session) error {
		for i := range sess.Chart.Diagnoses {
			if sess.Chart.Diagnoses[i].ID == diagID {
				sess.Chart.Diagnoses[i].Status = status
				updated = sess.Chart.Diagnoses[i]
				return nil
			}
		}
		return fmt.Errorf("diagnosis %s: %w", diagID, ErrEntryNotFound)
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Diagnoses returns the axis I entries, filtered by status when one is
// given.
func (s *Service) Diagnoses(ctx context.Context, id uuid.UUID, status string) ([]chart.Diagnosis, error) {
	if status != "" && !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return sess.Chart.Diagnoses, nil
	}
	return sess.Chart.DiagnosesByStatus(status), nil
}

func (s *Service) SetCompliance(ctx context.Context, id uuid.UUID, comp chart.Compliance) (*Session, error) {
	for _, v := range []int{comp.MedSelf, comp.MedExternal, comp.Therapy} {
		if v < 0 || v > 10 {
			return nil, fmt.Errorf("compliance ratings must be between 0 and 10")
		}
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Compliance = comp
		return nil
	})
}

func (s *Service) AddCoverageEntry(ctx context.Context, id uuid.UUID, e chart.CoverageEntry) (*chart.CoverageEntry, error) {
	sanitizeAll(&e.Symptom, &e.ExplainingDiagnoses)
	if e.Symptom == "" {
		return nil, fmt.Errorf("symptom is required")
	}
	if e.CoveragePct < 0 || e.CoveragePct > 100 {
		return nil, fmt.Errorf("coverage_pct must be between 0 and 100")
	}
	e.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.CoverageEntries = append(sess.Chart.CoverageEntries, e)
		return nil
	}); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) CoverageSummary(ctx context.Context, id uuid.UUID) (coverage.Summary, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return coverage.Summary{}, err
	}
	return coverage.Summarize(sess.Chart.CoverageEntries), nil
}

func (s *Service) AddInvestigationPlan(ctx context.Context, id uuid.UUID, p chart.InvestigationPlan) (*chart.InvestigationPlan, error) {
	sanitizeAll(&p.Investigation, &p.Specialty, &p.Reason)
	if p.Investigation == "" {
		return nil, fmt.Errorf("investigation is required")
	}
	if p.Priority == "" {
		p.Priority = "follow_up"
	}
	if !validPriorities[p.Priority] {
		return nil, fmt.Errorf("invalid priority: %s", p.Priority)
	}
	if p.Status == "" {
		p.Status = chart.InvestigationOpen
	}
	if p.Status != chart.InvestigationOpen && p.Status != chart.InvestigationDone {
		return nil, fmt.Errorf("invalid status: %s", p.Status)
	}
	p.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.InvestigationPlans = append(sess.Chart.InvestigationPlans, p)
		return nil
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// Notes carries the free-text analysis fields of axes I and III. Nil
// fields are left untouched so partial updates work.
type Notes struct {
	CoverageAnalysis      *string `json:"coverage_analysis,omitempty"`
	InvestigationPlanNote *string `json:"investigation_plan_note,omitempty"`
	MedCoverageAnalysis   *string `json:"med_coverage_analysis,omitempty"`
	MedInvestigationPlan  *string `json:"med_investigation_plan,omitempty"`
	TreatmentCurrent      *string `json:"treatment_current,omitempty"`
	TreatmentPast         *string `json:"treatment_past,omitempty"`
	GeneticFactors        *string `json:"genetic_factors,omitempty"`
	FamilyHistory         *string `json:"family_history,omitempty"`
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, n Notes) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		c := sess.Chart
		apply := func(dst *string, src *string) {
			if src != nil {
				*dst = middleware.SanitizeString(*src)
			}
		}
		apply(&c.CoverageAnalysis, n.CoverageAnalysis)
		apply(&c.InvestigationPlanNote, n.InvestigationPlanNote)
		apply(&c.MedCoverageAnalysis, n.MedCoverageAnalysis)
		apply(&c.MedInvestigationPlan, n.MedInvestigationPlan)
		apply(&c.TreatmentCurrent, n.TreatmentCurrent)
		apply(&c.TreatmentPast, n.TreatmentPast)
		apply(&c.GeneticFactors, n.GeneticFactors)
		apply(&c.FamilyHistory, n.FamilyHistory)
		return nil
	})
}

// -- Axis II: biography and traits --

func (s *Service) SetBiography(ctx context.Context, id uuid.UUID, b chart.Biography) (*Session, error) {
	sanitizeAll(&b.Education, &b.IQEstimate, &b.DevelopmentalHistory)
	return s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Biography = b
		return nil
	})
}

// SubmitTraitRatings stores the PID-5 item ratings and recomputes the trait
// profile wholesale.
func (s *Service) SubmitTraitRatings(ctx context.Context, id uuid.UUID, ratings traits.Ratings) (*Session, error) {
	if err := traits.ValidateRatings(catalog.Traits(), ratings); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Chart.TraitRatings = ratings
		sess.Chart.PID5 = traits.ComputeProfile(ratings)
		return nil
	})
}

// -- Axis III: medical synopsis --

func (s *Service) AddMedicalCondition(ctx context.Context, id uuid.UUID, m chart.MedicalCondition) (*chart.MedicalCondition, error) {
	sanitizeAll(&m.Name, &m.ICD11Code, &m.DSM5Code, &m.Status, &m.Evidence,
		&m.DateOnset, &m.DateRemission)
	m.RemissionFactors = sanitizeSlice(m.RemissionFactors)
	if m.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !validSubaxes[m.Subaxis] {
		return nil, fmt.Errorf("invalid subaxis: %s", m.Subaxis)
	}
	if m.Causality != "" && !validCausalities[m.Causality] {
		return nil, fmt.Errorf("invalid causality: %s", m.Causality)
	}
	m.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.MedicalConditions = append(sess.Chart.MedicalConditions, m)
		return nil
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// MedicalConditions returns the axis III entries, filtered by subaxis when
// one is given.
func (s *Service) MedicalConditions(ctx context.Context, id uuid.UUID, subaxis string) ([]chart.MedicalCondition, error) {
	if subaxis != "" && !validSubaxes[subaxis] {
		return nil, fmt.Errorf("invalid subaxis: %s", subaxis)
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if subaxis == "" {
		return sess.Chart.MedicalConditions, nil
	}
	return sess.Chart.MedicalBySubaxis(subaxis), nil
}

func (s *Service) AddMedication(ctx context.Context, id uuid.UUID, m chart.MedicationEntry) (*chart.MedicationEntry, error) {
	sanitizeAll(&m.Name, &m.Dose, &m.Unit, &m.Purpose, &m.Since, &m.Schedule,
		&m.Effect, &m.SideEffects, &m.Interactions)
	if m.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if m.EffectRating < 0 || m.EffectRating > 10 {
		return nil, fmt.Errorf("effect_rating must be between 0 and 10")
	}
	m.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Medications = append(sess.Chart.Medications, m)
		return nil
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) AddTreatment(ctx context.Context, id uuid.UUID, t chart.TreatmentEntry) (*chart.TreatmentEntry, error) {
	sanitizeAll(&t.Type, &t.Name, &t.StartDate, &t.EndDate, &t.Effect, &t.SideEffects)
	if t.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if t.ComplianceSelf < 0 || t.ComplianceSelf > 10 || t.ComplianceExternal < 0 || t.ComplianceExternal > 10 {
		return nil, fmt.Errorf("compliance ratings must be between 0 and 10")
	}
	t.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Treatments = append(sess.Chart.Treatments, t)
		return nil
	}); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) SetMedCompliance(ctx context.Context, id uuid.UUID, comp chart.MedCompliance) (*Session, error) {
	if comp.Self < 0 || comp.Self > 10 || comp.External < 0 || comp.External > 10 {
		return nil, fmt.Errorf("compliance ratings must be between 0 and 10")
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Chart.MedCompliance = comp
		return nil
	})
}

// -- Axis IV: environment and functioning --

// FunctioningResult is returned from a functioning submission: the stored
// assessment plus the derived WHODAS summary and the severe-impairment
// advisory.
type FunctioningResult struct {
	Functioning      chart.Functioning `json:"functioning"`
	WHODASTotal      int               `json:"whodas_total"`
	WHODASMax        int               `json:"whodas_max"`
	WHODASPct        float64           `json:"whodas_pct"`
	SevereImpairment bool              `json:"severe_impairment"`
}

// SubmitFunctioning stores the axis IV assessment and completes the
// functioning gate. GdB scores of 50 and above carry the severe-impairment
// advisory.
func (s *Service) SubmitFunctioning(ctx context.Context, id uuid.UUID, f chart.Functioning) (*FunctioningResult, error) {
	if f.GAFScore < 0 || f.GAFScore > 100 {
		return nil, fmt.Errorf("gaf_score must be between 0 and 100")
	}
	if want := len(catalog.WHODAS()); len(f.WHODASScores) != want {
		return nil, fmt.Errorf("whodas_scores must have %d items", want)
	}
	for i, v := range f.WHODASScores {
		if v < 0 || v > 4 {
			return nil, fmt.Errorf("whodas item %d out of range: %d", i+1, v)
		}
	}
	if f.GdBScore < 0 || f.GdBScore > 100 || f.GdBScore%10 != 0 {
		return nil, fmt.Errorf("gdb_score must be a multiple of 10 between 0 and 100")
	}
	f.Stressors = sanitizeSlice(f.Stressors)

	if _, err := s.update(ctx, id, func(sess *Session) error {
		if err := sess.Chart.Gates.Complete(gates.StepFunctioning, gates.Record{}); err != nil {
			return err
		}
		sess.Chart.Functioning = f
		return nil
	}); err != nil {
		return nil, err
	}

	total, maxScore, pct := f.WHODASTotal()
	return &FunctioningResult{
		Functioning:      f,
		WHODASTotal:      total,
		WHODASMax:        maxScore,
		WHODASPct:        pct,
		SevereImpairment: f.GdBScore >= 50,
	}, nil
}

// -- Axis V: condition model --

func (s *Service) SetConditionModel(ctx context.Context, id uuid.UUID, m chart.ConditionModel) (*Session, error) {
	m.Narrative = middleware.SanitizeString(m.Narrative)
	m.Predisposing = sanitizeSlice(m.Predisposing)
	m.Precipitating = sanitizeSlice(m.Precipitating)
	m.Perpetuating = sanitizeSlice(m.Perpetuating)
	m.Protective = sanitizeSlice(m.Protective)
	return s.update(ctx, id, func(sess *Session) error {
		sess.Chart.ConditionModel = m
		return nil
	})
}

// -- Axis VI and cross-axis records --

func (s *Service) AddEvidence(ctx context.Context, id uuid.UUID, e chart.EvidenceEntry) (*chart.EvidenceEntry, error) {
	sanitizeAll(&e.DocumentType, &e.Description, &e.Date, &e.Source)
	if e.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if !validEvidenceAxes[e.Axis] {
		return nil, fmt.Errorf("invalid axis: %s", e.Axis)
	}
	e.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Evidence = append(sess.Chart.Evidence, e)
		return nil
	}); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) AddCaveAlert(ctx context.Context, id uuid.UUID, a chart.CaveAlert) (*chart.CaveAlert, error) {
	a.Text = middleware.SanitizeString(a.Text)
	if a.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if a.Category == "" {
		a.Category = "other"
	}
	if !validCaveCategories[a.Category] {
		return nil, fmt.Errorf("invalid category: %s", a.Category)
	}
	if a.AxisRef != "" && !validAxisRefs[a.AxisRef] {
		return nil, fmt.Errorf("invalid axis_ref: %s", a.AxisRef)
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.CaveAlerts = append(sess.Chart.CaveAlerts, a)
		return nil
	}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) AddTimelineEvent(ctx context.Context, id uuid.UUID, ev chart.TimelineEvent) (*chart.TimelineEvent, error) {
	sanitizeAll(&ev.Symptom, &ev.Onset, &ev.CurrentStatus, &ev.TherapyResponse)
	if ev.Symptom == "" {
		return nil, fmt.Errorf("symptom is required")
	}
	ev.ID = uuid.New()

	if _, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Timeline = append(sess.Chart.Timeline, ev)
		return nil
	}); err != nil {
		return nil, err
	}
	return &ev, nil
}

// -- Export and synopsis --

func (s *Service) Export(ctx context.Context, id uuid.UUID) (*chart.Export, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exp := sess.Chart.BuildExport()
	exp.ExportDate = time.Now().UTC()
	exp.SystemVersion = s.version
	return &exp, nil
}

// Synopsis is the condensed cross-axis summary. The XLSX rendering in
// platform/report carries the same content for handoff outside the system.
type Synopsis struct {
	SessionID   uuid.UUID                           `json:"session_id"`
	GeneratedAt time.Time                           `json:"generated_at"`
	Step        string                              `json:"step"`
	Diagnoses   map[string][]chart.Diagnosis        `json:"diagnoses_by_status"`
	Medical     map[string][]chart.MedicalCondition `json:"medical_by_subaxis"`
	HiTOP       screening.Profile                   `json:"hitop_profile"`
	PID5        traits.Profile                      `json:"pid5_profile"`
	Functioning FunctioningSummary                  `json:"functioning"`
	Coverage    coverage.Summary                    `json:"symptom_coverage"`
	CaveAlerts  []chart.CaveAlert                   `json:"cave_alerts"`
}

// FunctioningSummary is the axis IV block of the synopsis.
type FunctioningSummary struct {
	GAF         int      `json:"gaf"`
	WHODASTotal int      `json:"whodas_total"`
	WHODASMax   int      `json:"whodas_max"`
	WHODASPct   float64  `json:"whodas_pct"`
	GdB         int      `json:"gdb"`
	Stressors   []string `json:"stressors"`
}

func (s *Service) Synopsis(ctx context.Context, id uuid.UUID) (*Synopsis, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := sess.Chart
	total, maxScore, pct := c.Functioning.WHODASTotal()
	return &Synopsis{
		SessionID:   sess.ID,
		GeneratedAt: time.Now().UTC(),
		Step:        c.Gates.Current.String(),
		Diagnoses: map[string][]chart.Diagnosis{
			chart.StatusAcute:     c.DiagnosesByStatus(chart.StatusAcute),
			chart.StatusChronic:   c.DiagnosesByStatus(chart.StatusChronic),
			chart.StatusRemitted:  c.DiagnosesByStatus(chart.StatusRemitted),
			chart.StatusSuspected: c.DiagnosesByStatus(chart.StatusSuspected),
			chart.StatusExcluded:  c.DiagnosesByStatus(chart.StatusExcluded),
		},
		Medical: map[string][]chart.MedicalCondition{
			chart.SubaxisAcute:        c.MedicalBySubaxis(chart.SubaxisAcute),
			chart.SubaxisChronic:      c.MedicalBySubaxis(chart.SubaxisChronic),
			chart.SubaxisContributing: c.MedicalBySubaxis(chart.SubaxisContributing),
			chart.SubaxisRemitted:     c.MedicalBySubaxis(chart.SubaxisRemitted),
			chart.SubaxisSuspected:    c.MedicalBySubaxis(chart.SubaxisSuspected),
		},
		HiTOP: c.HiTOP,
		PID5:  c.PID5,
		Functioning: FunctioningSummary{
			GAF:         c.Functioning.GAFScore,
			WHODASTotal: total,
			WHODASMax:   maxScore,
			WHODASPct:   pct,
			GdB:         c.Functioning.GdBScore,
			Stressors:   c.Functioning.Stressors,
		},
		Coverage:   coverage.Summarize(c.CoverageEntries),
		CaveAlerts: c.CaveAlerts,
	}, nil
}

func (s *Service) SynopsisWorkbook(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return report.SynopsisWorkbook(sess.Chart, coverage.Summarize(sess.Chart.CoverageEntries), time.Now().UTC())
}
