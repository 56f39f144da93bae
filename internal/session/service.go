package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mdx/mdx/internal/catalog"
	"github.com/mdx/mdx/internal/chart"
	"github.com/mdx/mdx/internal/coverage"
	"github.com/mdx/mdx/internal/gates"
	"github.com/mdx/mdx/internal/platform/middleware"
	"github.com/mdx/mdx/internal/screening"
)

// SystemVersion is stamped into chart exports.
const SystemVersion = "1.0.0"

// CompletionNotifier receives the event fired when a session reaches the
// final step. Delivery is best-effort: failures are logged, never returned
// to the clinician.
type CompletionNotifier interface {
	SessionCompleted(ctx context.Context, sessionID, clinician string, payload json.RawMessage) error
}

// completionEvent is the payload sent with the completion notification. It
// carries workload counts only, no patient identity.
type completionEvent struct {
	Diagnoses         int     `json:"diagnoses"`
	MedicalConditions int     `json:"medical_conditions"`
	TriggeredDomains  int     `json:"triggered_domains"`
	MeanCoveragePct   float64 `json:"mean_coverage_pct"`
	GAF               int     `json:"gaf"`
}

// Service orchestrates the diagnostic workflow: it validates input at the
// boundary, drives the gatekeeper sequence, recomputes derived profiles
// wholesale, and persists the session after every change.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	notifier CompletionNotifier
	version  string
}

type Option func(*Service)

// WithNotifier attaches a completion notifier.
func WithNotifier(n CompletionNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithVersion overrides the version stamped into exports.
func WithVersion(v string) Option {
	return func(s *Service) { s.version = v }
}

func NewService(repo Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger, version: SystemVersion}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// update loads a session, applies fn, and persists the result.
func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// -- Lifecycle --

func (s *Service) Create(ctx context.Context, clinician string) (*Session, error) {
	clinician = middleware.SanitizeString(clinician)
	if clinician == "" {
		return nil, fmt.Errorf("clinician is required")
	}
	sess := &Session{Clinician: clinician, Chart: chart.New()}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info().Str("session_id", sess.ID.String()).Str("clinician", clinician).Msg("session created")
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Session, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Reset rebuilds an empty chart, clearing every axis, both profiles, and
// the gate records. It is the only way to leave the final step.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		sess.Chart = chart.New()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("session_id", id.String()).Msg("session reset")
	return sess, nil
}

// -- Gatekeeper sequence --

func (s *Service) SubmitIntake(ctx context.Context, id uuid.UUID, in chart.Intake) (*Session, error) {
	sanitizeAll(&in.PatientName, &in.DateOfBirth, &in.Reason)
	if in.PatientName == "" {
		return nil, fmt.Errorf("patient_name is required")
	}
	return s.update(ctx, id, func(sess *Session) error {
		sess.Chart.Intake = in
		return sess.Chart.Gates.Complete(gates.StepIntake, gates.Record{})
	})
}

// SubmitConsistency records the validity check. A failed screen is
// advisory: it is stored and logged but never blocks the sequence.
func (s *Service) SubmitConsistency(ctx context.Context, id uuid.UUID, a gates.ConsistencyAnswers) (*gates.Record, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.Notes = middleware.SanitizeString(a.Notes)

	var rec gates.Record
	if _, err := s.update(ctx, id, func(sess *Session) error {
		if err := sess.Chart.Gates.Complete(gates.StepConsistency, gates.EvaluateConsistency(a)); err != nil {
			return err
		}
		rec, _ = sess.Chart.Gates.Outcome(gates.StepConsistency)
		return nil
	}); err != nil {
		return nil, err
	}

	if rec.Passed != nil && !*rec.Passed {
		s.logger.Warn().
			Str("session_id", id.String()).
			Int("inconsistency", int(a.Inconsistency)).
			Int("incentive", int(a.Incentive)).
			Msg("consistency screen failed, clinical review advised")
	}
	return &rec, nil
}

func (s *Service) SubmitSubstance(ctx context.Context, id uuid.UUID, a gates.SubstanceAnswers) (*gates.Record, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.History = middleware.SanitizeString(a.History)
	a.Substances = sanitizeSlice(a.Substances)

	var rec gates.Record
	if _, err := s.update(ctx, id, func(sess *Session) error {
		if err := sess.Chart.Gates.Complete(gates.StepSubstance, gates.EvaluateSubstance(a)); err != nil {
			return err
		}
		rec, _ = sess.Chart.Gates.Outcome(gates.StepSubstance)
		return nil
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) SubmitMedical(ctx context.Context, id uuid.UUID, a gates.MedicalAnswers) (*gates.Record, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	sanitizeAll(&a.Conditions, &a.Labs)

	var rec gates.Record
	if _, err := s.update(ctx, id, func(sess *Session) error {
		if err := sess.Chart.Gates.Complete(gates.StepMedical, gates.EvaluateMedical(a)); err != nil {
			return err
		}
		rec, _ = sess.Chart.Gates.Outcome(gates.StepMedical)
		return nil
	}); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ScreeningResult is returned from a screening submission: the triggered
// domains in catalog order, the recomputed HiTOP profile, and the counts
// stored on the gate record.
type ScreeningResult struct {
	Triggered []screening.DomainResult `json:"triggered"`
	HiTOP     screening.Profile        `json:"hitop_profile"`
	Summary   gates.ScreeningSummary   `json:"summary"`
}

// SubmitScreening stores the cross-cutting responses and recomputes the
// triggered list and the HiTOP profile wholesale, so re-submissions never
// leave stale derived state behind.
func (s *Service) SubmitScreening(ctx context.Context, id uuid.UUID, responses screening.Responses) (*ScreeningResult, error) {
	domains := catalog.Screening()
	if err := screening.ValidateResponses(domains, responses); err != nil {
		return nil, err
	}

	var result ScreeningResult
	if _, err := s.update(ctx, id, func(sess *Session) error {
		triggered := screening.EvaluateAll(domains, responses)
		critical := 0
		for _, r := range triggered {
			if r.Critical {
				critical++
			}
		}
		summary := gates.ScreeningSummary{Triggered: len(triggered), Critical: critical}

		if err := sess.Chart.Gates.Complete(gates.StepScreening, gates.Record{Screening: &summary}); err != nil {
			return err
		}
		sess.Chart.ScreeningResponses = responses
		sess.Chart.Triggered = triggered
		sess.Chart.HiTOP = screening.ComputeProfile(domains, responses)

		result = ScreeningResult{Triggered: triggered, HiTOP: sess.Chart.HiTOP, Summary: summary}
		return nil
	}); err != nil {
		return nil, err
	}

	if result.Summary.Critical > 0 {
		s.logger.Warn().
			Str("session_id", id.String()).
			Int("critical", result.Summary.Critical).
			Msg("critical screening domains triggered")
	}
	return &result, nil
}

// AdvanceGate moves past the disorder or functioning step. Reaching the
// final step fires the completion notifier.
func (s *Service) AdvanceGate(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.update(ctx, id, func(sess *Session) error {
		return sess.Chart.Gates.Advance()
	})
	if err != nil {
		return nil, err
	}
	if sess.Chart.Gates.Current == gates.StepComplete {
		s.notifyCompletion(ctx, sess)
	}
	return sess, nil
}

func (s *Service) GateOutcome(ctx context.Context, id uuid.UUID, step gates.Step) (*gates.Record, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("invalid step %d", int(step))
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec, err := sess.Chart.Gates.Outcome(step)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) notifyCompletion(ctx context.Context, sess *Session) {
	s.logger.Info().Str("session_id", sess.ID.String()).Msg("diagnostic workflow complete")
	if s.notifier == nil {
		return
	}

	cov := coverage.Summarize(sess.Chart.CoverageEntries)
	payload, err := json.Marshal(completionEvent{
		Diagnoses:         len(sess.Chart.Diagnoses),
		MedicalConditions: len(sess.Chart.MedicalConditions),
		TriggeredDomains:  len(sess.Chart.Triggered),
		MeanCoveragePct:   cov.Mean,
		GAF:               sess.Chart.Functioning.GAFScore,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("completion payload encode failed")
		return
	}
	if err := s.notifier.SessionCompleted(ctx, sess.ID.String(), sess.Clinician, payload); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("completion notification failed")
	}
}

func sanitizeAll(fields ...*string) {
	for _, f := range fields {
		*f = middleware.SanitizeString(*f)
	}
}

func sanitizeSlice(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = middleware.SanitizeString(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
