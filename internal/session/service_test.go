package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mdx/mdx/internal/chart"
	"github.com/mdx/mdx/internal/gates"
	"github.com/mdx/mdx/internal/screening"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo(), zerolog.Nop())
}

// walkToDisorder completes steps 0-4, leaving the session at the disorder
// step.
func walkToDisorder(t *testing.T, svc *Service) *Session {
	t.Helper()
	ctx := context.Background()

	sess, err := svc.Create(ctx, "dr-weaver")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SubmitIntake(ctx, sess.ID, chart.Intake{
		PatientName: "Jane Doe",
		DateOfBirth: "1990-04-12",
		Reason:      "referral after inpatient stay",
	}); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if _, err := svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{}); err != nil {
		t.Fatalf("consistency: %v", err)
	}
	if _, err := svc.SubmitSubstance(ctx, sess.ID, gates.SubstanceAnswers{}); err != nil {
		t.Fatalf("substance: %v", err)
	}
	if _, err := svc.SubmitMedical(ctx, sess.ID, gates.MedicalAnswers{}); err != nil {
		t.Fatalf("medical: %v", err)
	}
	if _, err := svc.SubmitScreening(ctx, sess.ID, screening.Responses{"depression_0": 3}); err != nil {
		t.Fatalf("screening: %v", err)
	}
	return sess
}

func walkToFunctioning(t *testing.T, svc *Service) *Session {
	t.Helper()
	sess := walkToDisorder(t, svc)
	if _, err := svc.AdvanceGate(context.Background(), sess.ID); err != nil {
		t.Fatalf("advance past disorder: %v", err)
	}
	return sess
}

func walkToComplete(t *testing.T, svc *Service) *Session {
	t.Helper()
	sess := walkToFunctioning(t, svc)
	ctx := context.Background()
	if _, err := svc.SubmitFunctioning(ctx, sess.ID, validFunctioning()); err != nil {
		t.Fatalf("functioning: %v", err)
	}
	if _, err := svc.AdvanceGate(ctx, sess.ID); err != nil {
		t.Fatalf("final advance: %v", err)
	}
	return sess
}

func validFunctioning() chart.Functioning {
	return chart.Functioning{
		GAFScore:     55,
		WHODASScores: []int{2, 1, 0, 3, 2, 1, 2, 0, 0, 1, 2, 3},
		GdBScore:     30,
		Stressors:    []string{"Occupational problems"},
	}
}

// -- Lifecycle --

func TestCreateSession(t *testing.T) {
	svc := newTestService()

	sess, err := svc.Create(context.Background(), "  dr-weaver ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if sess.Clinician != "dr-weaver" {
		t.Errorf("expected sanitized clinician, got %q", sess.Clinician)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if sess.Chart == nil {
		t.Fatal("expected chart to be initialized")
	}
	if sess.Chart.Gates.Current != gates.StepIntake {
		t.Errorf("expected new session at intake, got %s", sess.Chart.Gates.Current)
	}
	if sess.Chart.Diagnoses == nil {
		t.Error("expected diagnoses list to be initialized")
	}
}

func TestCreateSession_ClinicianRequired(t *testing.T) {
	svc := newTestService()

	if _, err := svc.Create(context.Background(), "   "); err == nil {
		t.Error("expected error for missing clinician")
	}
}

func TestGetSession_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, "dr-weaver"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	sessions, total, err := svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 results, got %d", len(sessions))
	}

	sessions, _, err = svc.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 result at offset 2, got %d", len(sessions))
	}
}

func TestDeleteSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	if err := svc.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	svc := newTestService()

	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -- Gatekeeper sequence --

func TestSubmitIntake(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	updated, err := svc.SubmitIntake(ctx, sess.ID, chart.Intake{
		PatientName: "  Jane\x00 Doe  ",
		DateOfBirth: "1990-04-12",
		Reason:      "referral",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Chart.Intake.PatientName != "Jane Doe" {
		t.Errorf("expected sanitized name, got %q", updated.Chart.Intake.PatientName)
	}
	if updated.Chart.Gates.Current != gates.StepConsistency {
		t.Errorf("expected sequence at consistency, got %s", updated.Chart.Gates.Current)
	}
	if _, err := svc.GateOutcome(ctx, sess.ID, gates.StepIntake); err != nil {
		t.Errorf("expected intake record, got %v", err)
	}
}

func TestSubmitIntake_NameRequired(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	if _, err := svc.SubmitIntake(ctx, sess.ID, chart.Intake{Reason: "referral"}); err == nil {
		t.Error("expected error for missing patient_name")
	}
}

func TestSubmitIntake_RevisionIncrements(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})
	updated, err := svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane M. Doe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := svc.GateOutcome(ctx, sess.ID, gates.StepIntake)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Revision != 2 {
		t.Errorf("expected revision 2, got %d", rec.Revision)
	}
	// Revising a finished step never moves the sequence.
	if updated.Chart.Gates.Current != gates.StepConsistency {
		t.Errorf("expected sequence still at consistency, got %s", updated.Chart.Gates.Current)
	}
}

func TestSubmitConsistency_StepNotReached(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	_, err := svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{})
	if !errors.Is(err, gates.ErrStepNotReached) {
		t.Errorf("expected ErrStepNotReached, got %v", err)
	}
}

func TestSubmitConsistency_Passes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})

	rec, err := svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{
		Inconsistency: gates.InconsistencyMild,
		Incentive:     gates.IncentivePossible,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Passed == nil || !*rec.Passed {
		t.Error("expected screen to pass")
	}
	if rec.CompletedAt.IsZero() {
		t.Error("expected completed_at to be set")
	}
}

func TestSubmitConsistency_FailureIsAdvisory(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})

	rec, err := svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{
		Inconsistency: gates.InconsistencyDeliberate,
	})
	if err != nil {
		t.Fatalf("a failed screen must not block: %v", err)
	}
	if rec.Passed == nil || *rec.Passed {
		t.Error("expected screen to fail")
	}

	// The sequence moves on regardless.
	got, _ := svc.Get(ctx, sess.ID)
	if got.Chart.Gates.Current != gates.StepSubstance {
		t.Errorf("expected sequence at substance, got %s", got.Chart.Gates.Current)
	}
}

func TestSubmitConsistency_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})

	_, err := svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{Inconsistency: 9})
	if err == nil {
		t.Error("expected error for out-of-range level")
	}
}

func TestSubmitSubstance_Induced(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})
	svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{})

	rec, err := svc.SubmitSubstance(ctx, sess.ID, gates.SubstanceAnswers{
		Substances: []string{"Alcohol"},
		Temporal:   gates.TemporalOnlyDuringUse,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.SubstanceInduced == nil || !*rec.SubstanceInduced {
		t.Error("expected substance-induced flag")
	}
}

func TestSubmitMedical_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})
	svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{})
	svc.SubmitSubstance(ctx, sess.ID, gates.SubstanceAnswers{})

	if _, err := svc.SubmitMedical(ctx, sess.ID, gates.MedicalAnswers{Causality: 5}); err == nil {
		t.Error("expected error for out-of-range causality")
	}
}

func TestSubmitScreening(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})
	svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{})
	svc.SubmitSubstance(ctx, sess.ID, gates.SubstanceAnswers{})
	svc.SubmitMedical(ctx, sess.ID, gates.MedicalAnswers{})

	result, err := svc.SubmitScreening(ctx, sess.ID, screening.Responses{
		"depression_0":  3,
		"depression_1":  1,
		"suicidality_0": 1,
		"anger_0":       1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.Triggered != 2 {
		t.Errorf("expected 2 triggered domains, got %d", result.Summary.Triggered)
	}
	if result.Summary.Critical != 1 {
		t.Errorf("expected 1 critical domain, got %d", result.Summary.Critical)
	}
	if len(result.Triggered) != 2 {
		t.Fatalf("expected 2 triggered results, got %d", len(result.Triggered))
	}
	if result.Triggered[0].DomainID != "depression" || result.Triggered[1].DomainID != "suicidality" {
		t.Errorf("expected catalog order depression, suicidality, got %s, %s",
			result.Triggered[0].DomainID, result.Triggered[1].DomainID)
	}
	if !result.Triggered[1].Critical {
		t.Error("expected suicidality to be critical")
	}
	if result.HiTOP.Internalizing != 3 {
		t.Errorf("expected internalizing 3, got %v", result.HiTOP.Internalizing)
	}
	if result.HiTOP.AntagonisticExternalizing != 1 {
		t.Errorf("expected antagonistic externalizing 1, got %v", result.HiTOP.AntagonisticExternalizing)
	}

	got, _ := svc.Get(ctx, sess.ID)
	if got.Chart.Gates.Current != gates.StepDisorder {
		t.Errorf("expected sequence at disorder, got %s", got.Chart.Gates.Current)
	}
	if got.Chart.ScreeningResponses["depression_0"] != 3 {
		t.Error("expected responses stored on the chart")
	}
}

func TestSubmitScreening_Recomputes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess := walkToDisorder(t, svc)

	result, err := svc.SubmitScreening(ctx, sess.ID, screening.Responses{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Triggered) != 0 {
		t.Errorf("expected no triggered domains after revision, got %d", len(result.Triggered))
	}

	got, _ := svc.Get(ctx, sess.ID)
	if len(got.Chart.Triggered) != 0 {
		t.Error("expected triggered list replaced wholesale")
	}
	rec, _ := svc.GateOutcome(ctx, sess.ID, gates.StepScreening)
	if rec.Revision != 2 {
		t.Errorf("expected screening revision 2, got %d", rec.Revision)
	}
}

func TestSubmitScreening_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"})
	svc.SubmitConsistency(ctx, sess.ID, gates.ConsistencyAnswers{})
	svc.SubmitSubstance(ctx, sess.ID, gates.SubstanceAnswers{})
	svc.SubmitMedical(ctx, sess.ID, gates.MedicalAnswers{})

	if _, err := svc.SubmitScreening(ctx, sess.ID, screening.Responses{"bogus_0": 1}); err == nil {
		t.Error("expected error for unknown domain")
	}
	if _, err := svc.SubmitScreening(ctx, sess.ID, screening.Responses{"depression_0": 5}); err == nil {
		t.Error("expected error for out-of-range rating")
	}
}

func TestAdvanceGate_DisorderWithoutRecord(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess := walkToDisorder(t, svc)
	updated, err := svc.AdvanceGate(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Chart.Gates.Current != gates.StepFunctioning {
		t.Errorf("expected sequence at functioning, got %s", updated.Chart.Gates.Current)
	}

	// Leaving the disorder step logs an implicit completion.
	rec, err := svc.GateOutcome(ctx, sess.ID, gates.StepDisorder)
	if err != nil {
		t.Fatalf("expected disorder record, got %v", err)
	}
	if rec.Revision != 1 {
		t.Errorf("expected revision 1, got %d", rec.Revision)
	}
}

func TestAdvanceGate_FunctioningRequiresRecord(t *testing.T) {
	svc := newTestService()

	sess := walkToFunctioning(t, svc)
	_, err := svc.AdvanceGate(context.Background(), sess.ID)
	if !errors.Is(err, gates.ErrStepNotCompleted) {
		t.Errorf("expected ErrStepNotCompleted, got %v", err)
	}
}

func TestAdvanceGate_EarlySteps(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	if _, err := svc.AdvanceGate(ctx, sess.ID); err == nil {
		t.Error("expected error advancing from intake")
	}
}

func TestFullWalkthrough(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess := walkToComplete(t, svc)

	got, _ := svc.Get(ctx, sess.ID)
	if got.Chart.Gates.Current != gates.StepComplete {
		t.Fatalf("expected complete, got %s", got.Chart.Gates.Current)
	}
	if len(got.Chart.Gates.Records) != 7 {
		t.Errorf("expected 7 step records, got %d", len(got.Chart.Gates.Records))
	}
	if len(got.Chart.Gates.Events) != 7 {
		t.Errorf("expected 7 audit events, got %d", len(got.Chart.Gates.Events))
	}

	// A complete session rejects further submissions and advances.
	if _, err := svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"}); !errors.Is(err, gates.ErrSessionComplete) {
		t.Errorf("expected ErrSessionComplete, got %v", err)
	}
	if _, err := svc.AdvanceGate(ctx, sess.ID); !errors.Is(err, gates.ErrSessionComplete) {
		t.Errorf("expected ErrSessionComplete, got %v", err)
	}
}

func TestGateOutcome(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")

	if _, err := svc.GateOutcome(ctx, sess.ID, gates.Step(42)); err == nil {
		t.Error("expected error for invalid step")
	}
	if _, err := svc.GateOutcome(ctx, sess.ID, gates.StepFunctioning); !errors.Is(err, gates.ErrStepNotCompleted) {
		t.Errorf("expected ErrStepNotCompleted, got %v", err)
	}
}

func TestResetSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess := walkToDisorder(t, svc)
	updated, err := svc.Reset(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Chart.Gates.Current != gates.StepIntake {
		t.Errorf("expected sequence back at intake, got %s", updated.Chart.Gates.Current)
	}
	if len(updated.Chart.Gates.Records) != 0 {
		t.Errorf("expected no records after reset, got %d", len(updated.Chart.Gates.Records))
	}
	if updated.Chart.Intake.PatientName != "" {
		t.Error("expected intake cleared")
	}
	if updated.Clinician != "dr-weaver" {
		t.Error("expected clinician preserved")
	}
}

func TestResetSession_LeavesCompleteState(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sess := walkToComplete(t, svc)
	updated, err := svc.Reset(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Chart.Gates.Current != gates.StepIntake {
		t.Errorf("expected reset to reopen the sequence, got %s", updated.Chart.Gates.Current)
	}
	if _, err := svc.SubmitIntake(ctx, sess.ID, chart.Intake{PatientName: "Jane Doe"}); err != nil {
		t.Errorf("expected intake to work again after reset: %v", err)
	}
}

// -- Completion notification --

type fakeNotifier struct {
	calls     int
	sessionID string
	clinician string
	payload   json.RawMessage
	err       error
}

func (f *fakeNotifier) SessionCompleted(_ context.Context, sessionID, clinician string, payload json.RawMessage) error {
	f.calls++
	f.sessionID = sessionID
	f.clinician = clinician
	f.payload = payload
	return f.err
}

func TestCompletionNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewService(NewMemoryRepo(), zerolog.Nop(), WithNotifier(notifier))

	sess := walkToComplete(t, svc)

	if notifier.calls != 1 {
		t.Fatalf("expected 1 notification, got %d", notifier.calls)
	}
	if notifier.sessionID != sess.ID.String() {
		t.Errorf("expected session id %s, got %s", sess.ID, notifier.sessionID)
	}
	if notifier.clinician != "dr-weaver" {
		t.Errorf("expected clinician dr-weaver, got %s", notifier.clinician)
	}

	var event map[string]any
	if err := json.Unmarshal(notifier.payload, &event); err != nil {
		t.Fatalf("payload should be JSON: %v", err)
	}
	if event["gaf"] != float64(55) {
		t.Errorf("expected gaf 55, got %v", event["gaf"])
	}
	if event["triggered_domains"] != float64(1) {
		t.Errorf("expected 1 triggered domain, got %v", event["triggered_domains"])
	}
	// Workload counts only; the payload must never carry identity.
	if _, ok := event["patient_name"]; ok {
		t.Error("payload must not carry patient identity")
	}
}

func TestCompletionNotification_FailureDoesNotBlock(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("endpoint down")}
	svc := NewService(NewMemoryRepo(), zerolog.Nop(), WithNotifier(notifier))

	sess := walkToComplete(t, svc)

	got, _ := svc.Get(context.Background(), sess.ID)
	if got.Chart.Gates.Current != gates.StepComplete {
		t.Error("notification failure must not roll back completion")
	}
}

func TestWithVersion(t *testing.T) {
	svc := NewService(NewMemoryRepo(), zerolog.Nop(), WithVersion("2.3.1"))
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "dr-weaver")
	exp, err := svc.Export(ctx, sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.SystemVersion != "2.3.1" {
		t.Errorf("expected version 2.3.1, got %s", exp.SystemVersion)
	}
}
