// Package gates implements the strictly-forward gatekeeper sequence that
// orders a diagnostic workup: intake, validity check, substance exclusion,
// medical exclusion, cross-cutting screening, disorder modules, functioning,
// synopsis. Steps unlock one at a time; finished steps may be revised, and
// every completion is recorded in an append-only event log.
package gates

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrStepNotReached   = errors.New("step not reached")
	ErrStepNotCompleted = errors.New("step not completed")
	ErrSessionComplete  = errors.New("session complete")
)

// Step identifies one gatekeeper stage.
type Step int

const (
	StepIntake Step = iota
	StepConsistency
	StepSubstance
	StepMedical
	StepScreening
	StepDisorder
	StepFunctioning
	StepComplete
)

var stepNames = [...]string{
	"intake",
	"consistency",
	"substance",
	"medical",
	"screening",
	"disorder",
	"functioning",
	"complete",
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func (s Step) Valid() bool {
	return s >= StepIntake && s <= StepComplete
}

// InconsistencyLevel rates how inconsistent the presentation is. The
// highest level marks deliberate symptom exaggeration.
type InconsistencyLevel int

const (
	InconsistencyNone InconsistencyLevel = iota
	InconsistencyMild
	InconsistencyMarked
	InconsistencyDeliberate
)

// IncentiveLevel rates external incentive for symptom reporting. The
// highest level marks a confirmed external incentive.
type IncentiveLevel int

const (
	IncentiveNone IncentiveLevel = iota
	IncentivePossible
	IncentiveProbable
	IncentiveConfirmed
)

// CooperationLevel rates patient cooperation during the examination.
type CooperationLevel int

const (
	CooperationFull CooperationLevel = iota
	CooperationLimited
	CooperationRefused
)

// TemporalRelation rates how symptom onset relates to substance use. The
// highest level means symptoms occur only under substance effect.
type TemporalRelation int

const (
	TemporalNone TemporalRelation = iota
	TemporalPrecedes
	TemporalOverlaps
	TemporalOnlyDuringUse
)

// Causality rates how far recorded somatic findings explain the
// presentation.
type Causality int

const (
	CausalityIndependent Causality = iota
	CausalityContributing
	CausalityFull
)

// ConsistencyAnswers is the validity-check capture for step 1.
type ConsistencyAnswers struct {
	Inconsistency InconsistencyLevel `json:"inconsistency"`
	Incentive     IncentiveLevel     `json:"incentive"`
	Cooperation   CooperationLevel   `json:"cooperation"`
	Notes         string             `json:"notes"`
}

func (a ConsistencyAnswers) Validate() error {
	if a.Inconsistency < InconsistencyNone || a.Inconsistency > InconsistencyDeliberate {
		return fmt.Errorf("inconsistency level %d out of range", a.Inconsistency)
	}
	if a.Incentive < IncentiveNone || a.Incentive > IncentiveConfirmed {
		return fmt.Errorf("incentive level %d out of range", a.Incentive)
	}
	if a.Cooperation < CooperationFull || a.Cooperation > CooperationRefused {
		return fmt.Errorf("cooperation level %d out of range", a.Cooperation)
	}
	return nil
}

// SubstanceAnswers is the substance-exclusion capture for step 2.
type SubstanceAnswers struct {
	Substances []string         `json:"substances"`
	Temporal   TemporalRelation `json:"temporal"`
	History    string           `json:"history"`
}

func (a SubstanceAnswers) Validate() error {
	if a.Temporal < TemporalNone || a.Temporal > TemporalOnlyDuringUse {
		return fmt.Errorf("temporal relation %d out of range", a.Temporal)
	}
	return nil
}

// MedicalAnswers is the medical-exclusion capture for step 3.
type MedicalAnswers struct {
	Conditions string    `json:"conditions"`
	Causality  Causality `json:"causality"`
	Labs       string    `json:"labs"`
}

func (a MedicalAnswers) Validate() error {
	if a.Causality < CausalityIndependent || a.Causality > CausalityFull {
		return fmt.Errorf("causality %d out of range", a.Causality)
	}
	return nil
}

// ScreeningSummary condenses a screening run for the gate record; the full
// responses and triggered list live on the chart.
type ScreeningSummary struct {
	Triggered int `json:"triggered"`
	Critical  int `json:"critical"`
}

// Record is the stored outcome of one completed step. The answer fields are
// populated for the step they belong to and zero otherwise; outcome pointers
// stay nil for steps without a derived outcome.
type Record struct {
	Step        Step                `json:"step"`
	Consistency *ConsistencyAnswers `json:"consistency,omitempty"`
	Substance   *SubstanceAnswers   `json:"substance,omitempty"`
	Medical     *MedicalAnswers     `json:"medical,omitempty"`
	Screening   *ScreeningSummary   `json:"screening,omitempty"`

	Passed           *bool `json:"passed,omitempty"`
	SubstanceInduced *bool `json:"substance_induced,omitempty"`
	FullyExplained   *bool `json:"fully_explained,omitempty"`

	CompletedAt time.Time `json:"completed_at"`
	Revision    int       `json:"revision"`
}

// Event is one entry of the append-only completion log.
type Event struct {
	Step     Step      `json:"step"`
	Revision int       `json:"revision"`
	At       time.Time `json:"at"`
}

// Progress tracks the position in the gatekeeper sequence together with the
// per-step records and the audit log.
type Progress struct {
	Current Step            `json:"current"`
	Records map[Step]Record `json:"records"`
	Events  []Event         `json:"events"`
}

// NewProgress returns a progress tracker positioned at intake.
func NewProgress() Progress {
	return Progress{Current: StepIntake, Records: make(map[Step]Record)}
}

// Complete records the given step. Completing the current step advances the
// sequence for steps 0-4; steps 5 and 6 store their record and wait for an
// explicit Advance. Re-completing a finished step overwrites its record and
// increments the revision without moving the sequence. Future steps return
// ErrStepNotReached; once the sequence is complete, ErrSessionComplete.
func (p *Progress) Complete(step Step, rec Record) error {
	if !step.Valid() || step == StepComplete {
		return fmt.Errorf("step %d not completable", int(step))
	}
	if p.Current == StepComplete {
		return ErrSessionComplete
	}
	if step > p.Current {
		return ErrStepNotReached
	}
	if p.Records == nil {
		p.Records = make(map[Step]Record)
	}

	rec.Step = step
	rec.Revision = 1
	if prev, ok := p.Records[step]; ok {
		rec.Revision = prev.Revision + 1
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	p.Records[step] = rec
	p.Events = append(p.Events, Event{Step: step, Revision: rec.Revision, At: rec.CompletedAt})

	if step == p.Current && step < StepDisorder {
		p.Current++
	}
	return nil
}

// Advance moves from the disorder or functioning step to the next one. The
// disorder step may advance without a record (no triggered modules); the
// functioning step requires its record first. On leaving the disorder step
// without a record an implicit completion is logged.
func (p *Progress) Advance() error {
	switch p.Current {
	case StepDisorder:
		if _, ok := p.Records[StepDisorder]; !ok {
			if err := p.Complete(StepDisorder, Record{}); err != nil {
				return err
			}
		}
		p.Current = StepFunctioning
		return nil
	case StepFunctioning:
		if _, ok := p.Records[StepFunctioning]; !ok {
			return ErrStepNotCompleted
		}
		p.Current = StepComplete
		return nil
	case StepComplete:
		return ErrSessionComplete
	default:
		return fmt.Errorf("cannot advance from step %s", p.Current)
	}
}

// Outcome returns the stored record for a step.
func (p *Progress) Outcome(step Step) (Record, error) {
	rec, ok := p.Records[step]
	if !ok {
		return Record{}, ErrStepNotCompleted
	}
	return rec, nil
}

// Reset returns the sequence to intake and clears all records and events.
func (p *Progress) Reset() {
	p.Current = StepIntake
	p.Records = make(map[Step]Record)
	p.Events = nil
}

// EvaluateConsistency derives the validity-check record. The screen fails
// when inconsistency or incentive sits at its most severe level; a failed
// screen is advisory and never blocks the sequence.
func EvaluateConsistency(a ConsistencyAnswers) Record {
	passed := a.Inconsistency != InconsistencyDeliberate && a.Incentive != IncentiveConfirmed
	return Record{Step: StepConsistency, Consistency: &a, Passed: &passed}
}

// EvaluateSubstance derives the substance-exclusion record.
func EvaluateSubstance(a SubstanceAnswers) Record {
	induced := a.Temporal == TemporalOnlyDuringUse
	return Record{Step: StepSubstance, Substance: &a, SubstanceInduced: &induced}
}

// EvaluateMedical derives the medical-exclusion record.
func EvaluateMedical(a MedicalAnswers) Record {
	full := a.Causality == CausalityFull
	return Record{Step: StepMedical, Medical: &a, FullyExplained: &full}
}
