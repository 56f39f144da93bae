package catalog

import "testing"

func TestScreening_DomainCounts(t *testing.T) {
	domains := Screening()
	if len(domains) != 13 {
		t.Fatalf("expected 13 screening domains, got %d", len(domains))
	}

	total := 0
	for _, d := range domains {
		total += len(d.Items)
	}
	if total != 23 {
		t.Errorf("expected 23 items total, got %d", total)
	}
}

func TestScreening_Thresholds(t *testing.T) {
	safety := map[string]bool{"suicidality": true, "psychosis": true, "substance": true}
	for _, d := range Screening() {
		if d.Threshold < 1 {
			t.Errorf("domain %s: threshold %d below 1", d.ID, d.Threshold)
		}
		want := 2
		if safety[d.ID] {
			want = 1
		}
		if d.Threshold != want {
			t.Errorf("domain %s: expected threshold %d, got %d", d.ID, want, d.Threshold)
		}
		if d.Level2 == "" {
			t.Errorf("domain %s: missing level 2 instrument", d.ID)
		}
	}
}

func TestScreeningByID(t *testing.T) {
	d, ok := ScreeningByID("anxiety")
	if !ok {
		t.Fatal("expected anxiety domain to exist")
	}
	if len(d.Items) != 3 {
		t.Errorf("expected 3 anxiety items, got %d", len(d.Items))
	}

	if _, ok := ScreeningByID("nope"); ok {
		t.Error("expected lookup miss for unknown domain")
	}
}

func TestTraits_DomainCounts(t *testing.T) {
	domains := Traits()
	if len(domains) != 6 {
		t.Fatalf("expected 6 trait domains, got %d", len(domains))
	}
	for _, d := range domains {
		if len(d.Items) != 6 {
			t.Errorf("domain %s: expected 6 items, got %d", d.ID, len(d.Items))
		}
	}
}

func TestTraitByID(t *testing.T) {
	d, ok := TraitByID("anankastia")
	if !ok {
		t.Fatal("expected anankastia domain to exist")
	}
	if d.ICD11Trait != "Anankastia" {
		t.Errorf("unexpected ICD-11 trait %q", d.ICD11Trait)
	}

	if _, ok := TraitByID("nope"); ok {
		t.Error("expected lookup miss for unknown domain")
	}
}

func TestWHODAS_ItemCount(t *testing.T) {
	items := WHODAS()
	if len(items) != 12 {
		t.Fatalf("expected 12 WHODAS items, got %d", len(items))
	}
	if len(WHODASScale()) != 5 {
		t.Errorf("expected 5 WHODAS scale labels, got %d", len(WHODASScale()))
	}
}

func TestGates_StepOrder(t *testing.T) {
	gates := Gates()
	if len(gates) != 8 {
		t.Fatalf("expected 8 gate steps, got %d", len(gates))
	}
	for i, g := range gates {
		if g.Step != i {
			t.Errorf("gate %d: step field is %d", i, g.Step)
		}
	}
	if gates[0].Name != "intake" || gates[7].Name != "complete" {
		t.Errorf("unexpected boundary gate names %q, %q", gates[0].Name, gates[7].Name)
	}
}

func TestFixedLists(t *testing.T) {
	if len(SeverityLabels()) != 5 {
		t.Errorf("expected 5 severity labels, got %d", len(SeverityLabels()))
	}
	if len(TraitLabels()) != 4 {
		t.Errorf("expected 4 trait labels, got %d", len(TraitLabels()))
	}
	if len(Stressors()) != 12 {
		t.Errorf("expected 12 stressors, got %d", len(Stressors()))
	}
	if len(Substances()) != 11 {
		t.Errorf("expected 11 substances, got %d", len(Substances()))
	}
	if len(RemissionFactors()) != 8 {
		t.Errorf("expected 8 remission factors, got %d", len(RemissionFactors()))
	}
	if len(CaveCategories()) != 6 {
		t.Errorf("expected 6 CAVE categories, got %d", len(CaveCategories()))
	}
	if len(InvestigationPriorities()) != 3 {
		t.Errorf("expected 3 investigation priorities, got %d", len(InvestigationPriorities()))
	}
}

func TestScreening_ReturnsCopy(t *testing.T) {
	first := Screening()
	first[0].Threshold = 99

	again := Screening()
	if again[0].Threshold == 99 {
		t.Error("mutating the returned slice must not affect the catalog")
	}
}
