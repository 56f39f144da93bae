package chart

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mdx/mdx/internal/gates"
)

func TestNew_FullyInitialized(t *testing.T) {
	c := New()

	if c.Gates.Current != gates.StepIntake {
		t.Errorf("expected gates at intake, got %s", c.Gates.Current)
	}
	if len(c.Functioning.WHODASScores) != 12 {
		t.Errorf("expected 12 WHODAS slots, got %d", len(c.Functioning.WHODASScores))
	}
	for i, v := range c.Functioning.WHODASScores {
		if v != 0 {
			t.Errorf("WHODAS item %d: expected 0, got %d", i, v)
		}
	}
	if c.Compliance.MedSelf != 5 || c.Compliance.MedExternal != 5 || c.Compliance.Therapy != 5 {
		t.Errorf("expected compliance midpoints, got %+v", c.Compliance)
	}
	if c.MedCompliance.Self != 5 || c.MedCompliance.External != 5 {
		t.Errorf("expected med compliance midpoints, got %+v", c.MedCompliance)
	}
	if c.Diagnoses == nil || c.CaveAlerts == nil || c.Evidence == nil {
		t.Error("expected list fields initialized")
	}
	if len(c.Diagnoses) != 0 {
		t.Errorf("expected no diagnoses, got %d", len(c.Diagnoses))
	}
}

func TestDiagnosesByStatus(t *testing.T) {
	c := New()
	c.Diagnoses = append(c.Diagnoses,
		Diagnosis{ID: uuid.New(), Name: "a", Status: StatusAcute},
		Diagnosis{ID: uuid.New(), Name: "b", Status: StatusSuspected},
		Diagnosis{ID: uuid.New(), Name: "c", Status: StatusAcute},
	)

	acute := c.DiagnosesByStatus(StatusAcute)
	if len(acute) != 2 {
		t.Fatalf("expected 2 acute diagnoses, got %d", len(acute))
	}
	if acute[0].Name != "a" || acute[1].Name != "c" {
		t.Errorf("expected insertion order preserved, got %s, %s", acute[0].Name, acute[1].Name)
	}
	if len(c.DiagnosesByStatus(StatusExcluded)) != 0 {
		t.Error("expected no excluded diagnoses")
	}
}

func TestMedicalBySubaxis(t *testing.T) {
	c := New()
	c.MedicalConditions = append(c.MedicalConditions,
		MedicalCondition{Name: "x", Subaxis: SubaxisAcute},
		MedicalCondition{Name: "y", Subaxis: SubaxisSuspected},
	)

	if got := c.MedicalBySubaxis(SubaxisAcute); len(got) != 1 || got[0].Name != "x" {
		t.Errorf("unexpected IIIa entries: %+v", got)
	}
	if got := c.MedicalBySubaxis(SubaxisRemitted); len(got) != 0 {
		t.Errorf("expected no IIId entries, got %+v", got)
	}
}

func TestFunctioning_WHODASTotal(t *testing.T) {
	f := Functioning{WHODASScores: []int{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4}}
	total, max, pct := f.WHODASTotal()
	if total != 48 || max != 48 || pct != 100 {
		t.Errorf("expected 48/48 (100%%), got %d/%d (%.0f%%)", total, max, pct)
	}

	f = Functioning{WHODASScores: []int{2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}}
	total, max, pct = f.WHODASTotal()
	if total != 4 || max != 48 {
		t.Errorf("expected 4/48, got %d/%d", total, max)
	}
	if pct < 8.3 || pct > 8.4 {
		t.Errorf("expected pct around 8.33, got %f", pct)
	}

	f = Functioning{}
	total, max, pct = f.WHODASTotal()
	if total != 0 || max != 0 || pct != 0 {
		t.Errorf("expected zeros for empty scores, got %d/%d (%f)", total, max, pct)
	}
}

func TestBuildExport_StatusPartitioning(t *testing.T) {
	c := New()
	c.Diagnoses = append(c.Diagnoses,
		Diagnosis{ID: uuid.New(), Name: "dep", Status: StatusAcute},
		Diagnosis{ID: uuid.New(), Name: "gad", Status: StatusRemitted},
	)
	c.Functioning.GAFScore = 61
	c.Functioning.WHODASScores[0] = 3

	exp := c.BuildExport()
	if len(exp.Axes.I.Acute) != 1 || exp.Axes.I.Acute[0].Name != "dep" {
		t.Errorf("unexpected acute view: %+v", exp.Axes.I.Acute)
	}
	if len(exp.Axes.I.Remitted) != 1 || exp.Axes.I.Remitted[0].Name != "gad" {
		t.Errorf("unexpected remitted view: %+v", exp.Axes.I.Remitted)
	}
	if len(exp.Axes.I.Chronic) != 0 {
		t.Errorf("expected empty chronic view, got %+v", exp.Axes.I.Chronic)
	}
	if exp.Axes.IV.GAF != 61 {
		t.Errorf("expected GAF 61, got %d", exp.Axes.IV.GAF)
	}
	if exp.Axes.IV.WHODASTotal != 3 {
		t.Errorf("expected WHODAS total 3, got %d", exp.Axes.IV.WHODASTotal)
	}
}

func TestBuildExport_OmitsIdentity(t *testing.T) {
	c := New()
	c.Intake = Intake{PatientName: "Jane Doe", DateOfBirth: "1990-01-01", Reason: "referral"}

	raw, err := json.Marshal(c.BuildExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := doc["intake"]; ok {
		t.Error("export must not carry the intake identity")
	}
	if _, ok := doc["axes"]; !ok {
		t.Error("expected axes in the export document")
	}
}

func TestChart_JSONRoundTrip(t *testing.T) {
	c := New()
	c.Intake = Intake{PatientName: "Jane Doe", DateOfBirth: "1990-01-01", Reason: "low mood"}
	c.Diagnoses = append(c.Diagnoses, Diagnosis{
		ID:            uuid.New(),
		Name:          "Major depressive disorder",
		ICD11Code:     "6A70",
		Status:        StatusAcute,
		ConfidencePct: 70,
		Severity:      SeverityHigh,
	})
	c.ScreeningResponses["depression_0"] = 3
	c.HiTOP.Internalizing = 3
	c.Gates.Complete(gates.StepIntake, gates.Record{})

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var restored Chart
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(*c, restored); diff != "" {
		t.Errorf("round trip mismatch (-orig +restored):\n%s", diff)
	}
}
