// Package report renders the chart synopsis as an XLSX workbook for handoff
// to systems outside the diagnostic workflow.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mdx/mdx/internal/catalog"
	"github.com/mdx/mdx/internal/chart"
	"github.com/mdx/mdx/internal/coverage"
)

// Sheet names of the synopsis workbook.
const (
	SheetSummary     = "Summary"
	SheetDiagnoses   = "Diagnoses"
	SheetHiTOP       = "HiTOP Profile"
	SheetPID5        = "PID-5 Profile"
	SheetFunctioning = "Functioning"
)

var diagnosisHeader = []string{
	"Axis",
	"Name",
	"ICD-11",
	"DSM-5",
	"Status",
	"Severity / Causality",
	"Confidence %",
	"Onset",
}

var whodasHeader = []string{"Item", "Domain", "Question", "Rating"}

var alertHeader = []string{"Category", "Alert", "Axis"}

// SynopsisWorkbook renders the chart into a five-sheet XLSX workbook: the
// session summary with coverage statistics and CAVE alerts, the diagnoses
// across axes I and III, the two dimensional profiles, and the functioning
// assessment. Identity fields from the intake are deliberately absent.
func SynopsisWorkbook(c *chart.Chart, cov coverage.Summary, generatedAt time.Time) ([]byte, error) {
	b, err := newSynopsisBuilder()
	if err != nil {
		return nil, err
	}
	defer b.f.Close()

	if err := b.summarySheet(c, cov, generatedAt); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if err := b.diagnosesSheet(c); err != nil {
		return nil, fmt.Errorf("diagnoses sheet: %w", err)
	}
	if err := b.hitopSheet(c); err != nil {
		return nil, fmt.Errorf("hitop sheet: %w", err)
	}
	if err := b.pid5Sheet(c); err != nil {
		return nil, fmt.Errorf("pid5 sheet: %w", err)
	}
	if err := b.functioningSheet(c); err != nil {
		return nil, fmt.Errorf("functioning sheet: %w", err)
	}

	var buf bytes.Buffer
	if _, err := b.f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type synopsisBuilder struct {
	f           *excelize.File
	headerStyle int
}

func newSynopsisBuilder() (*synopsisBuilder, error) {
	f := excelize.NewFile()

	for _, name := range []string{SheetSummary, SheetDiagnoses, SheetHiTOP, SheetPID5, SheetFunctioning} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	f.DeleteSheet("Sheet1")

	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locate summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	return &synopsisBuilder{f: f, headerStyle: headerStyle}, nil
}

// setCell writes one value at 1-based coordinates.
func (b *synopsisBuilder) setCell(sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return b.f.SetCellValue(sheet, cell, value)
}

// headerRow writes a styled header row starting at column A.
func (b *synopsisBuilder) headerRow(sheet string, row int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := b.f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := b.f.SetCellStyle(sheet, cell, cell, b.headerStyle); err != nil {
			return err
		}
	}
	return nil
}

func (b *synopsisBuilder) colWidths(sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := b.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func (b *synopsisBuilder) freezeHeader(sheet string) error {
	return b.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (b *synopsisBuilder) summarySheet(c *chart.Chart, cov coverage.Summary, generatedAt time.Time) error {
	if err := b.colWidths(SheetSummary, []float64{34, 52, 16}); err != nil {
		return err
	}

	row := 1
	if err := b.headerRow(SheetSummary, row, []string{"Session"}); err != nil {
		return err
	}
	row++

	kv := []struct {
		key   string
		value interface{}
	}{
		{"Generated At", generatedAt.Format("2006-01-02 15:04:05")},
		{"Workflow Step", c.Gates.Current.String()},
		{"Diagnoses", len(c.Diagnoses)},
		{"Medical Conditions", len(c.MedicalConditions)},
		{"Medications", len(c.Medications)},
		{"Triggered Screening Domains", len(c.Triggered)},
	}
	for _, e := range kv {
		if err := b.setCell(SheetSummary, 1, row, e.key); err != nil {
			return err
		}
		if err := b.setCell(SheetSummary, 2, row, e.value); err != nil {
			return err
		}
		row++
	}

	row++
	if err := b.headerRow(SheetSummary, row, []string{"Symptom Coverage"}); err != nil {
		return err
	}
	row++
	if !cov.HasData {
		if err := b.setCell(SheetSummary, 1, row, "no entries recorded"); err != nil {
			return err
		}
		row++
	} else {
		covRows := []struct {
			key   string
			value interface{}
		}{
			{"Mean Coverage %", cov.Mean},
			{"Fully Explained (>= 85%)", cov.Full},
			{"Partially Explained (60-84%)", cov.Partial},
			{"Insufficiently Explained (< 60%)", cov.Insufficient},
			{"Symptoms Assessed", cov.Total},
		}
		for _, e := range covRows {
			if err := b.setCell(SheetSummary, 1, row, e.key); err != nil {
				return err
			}
			if err := b.setCell(SheetSummary, 2, row, e.value); err != nil {
				return err
			}
			row++
		}
	}

	row++
	if err := b.headerRow(SheetSummary, row, []string{"CAVE Alerts"}); err != nil {
		return err
	}
	row++
	if len(c.CaveAlerts) == 0 {
		return b.setCell(SheetSummary, 1, row, "none recorded")
	}
	if err := b.headerRow(SheetSummary, row, alertHeader); err != nil {
		return err
	}
	row++
	for _, a := range c.CaveAlerts {
		if err := b.setCell(SheetSummary, 1, row, a.Category); err != nil {
			return err
		}
		if err := b.setCell(SheetSummary, 2, row, a.Text); err != nil {
			return err
		}
		if err := b.setCell(SheetSummary, 3, row, a.AxisRef); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (b *synopsisBuilder) diagnosesSheet(c *chart.Chart) error {
	if err := b.colWidths(SheetDiagnoses, []float64{10, 42, 12, 12, 14, 20, 14, 14}); err != nil {
		return err
	}
	if err := b.headerRow(SheetDiagnoses, 1, diagnosisHeader); err != nil {
		return err
	}

	row := 2
	for _, d := range c.Diagnoses {
		cells := []interface{}{"I", d.Name, d.ICD11Code, d.DSM5Code, d.Status, d.Severity, d.ConfidencePct, d.DateOnset}
		for col, v := range cells {
			if v == nil || v == "" {
				continue
			}
			if err := b.setCell(SheetDiagnoses, col+1, row, v); err != nil {
				return err
			}
		}
		row++
	}
	for _, m := range c.MedicalConditions {
		cells := []interface{}{m.Subaxis, m.Name, m.ICD11Code, m.DSM5Code, m.Status, m.Causality, nil, m.DateOnset}
		for col, v := range cells {
			if v == nil || v == "" {
				continue
			}
			if err := b.setCell(SheetDiagnoses, col+1, row, v); err != nil {
				return err
			}
		}
		row++
	}

	return b.freezeHeader(SheetDiagnoses)
}

func (b *synopsisBuilder) hitopSheet(c *chart.Chart) error {
	if err := b.colWidths(SheetHiTOP, []float64{32, 14}); err != nil {
		return err
	}
	if err := b.headerRow(SheetHiTOP, 1, []string{"Spectrum", "Score (0-4)"}); err != nil {
		return err
	}

	spectra := []struct {
		label string
		score float64
	}{
		{"Internalizing", c.HiTOP.Internalizing},
		{"Thought Disorder", c.HiTOP.ThoughtDisorder},
		{"Disinhibited Externalizing", c.HiTOP.DisinhibitedExternalizing},
		{"Antagonistic Externalizing", c.HiTOP.AntagonisticExternalizing},
		{"Detachment", c.HiTOP.Detachment},
		{"Somatoform", c.HiTOP.Somatoform},
	}
	for i, s := range spectra {
		if err := b.setCell(SheetHiTOP, 1, i+2, s.label); err != nil {
			return err
		}
		if err := b.setCell(SheetHiTOP, 2, i+2, s.score); err != nil {
			return err
		}
	}
	return b.freezeHeader(SheetHiTOP)
}

func (b *synopsisBuilder) pid5Sheet(c *chart.Chart) error {
	if err := b.colWidths(SheetPID5, []float64{32, 14}); err != nil {
		return err
	}
	if err := b.headerRow(SheetPID5, 1, []string{"Trait Domain", "Score (0-3)"}); err != nil {
		return err
	}

	domains := []struct {
		label string
		score float64
	}{
		{"Negative Affectivity", c.PID5.NegativeAffectivity},
		{"Detachment", c.PID5.Detachment},
		{"Antagonism", c.PID5.Antagonism},
		{"Disinhibition", c.PID5.Disinhibition},
		{"Psychoticism", c.PID5.Psychoticism},
		{"Anankastia", c.PID5.Anankastia},
	}
	for i, d := range domains {
		if err := b.setCell(SheetPID5, 1, i+2, d.label); err != nil {
			return err
		}
		if err := b.setCell(SheetPID5, 2, i+2, d.score); err != nil {
			return err
		}
	}
	return b.freezeHeader(SheetPID5)
}

func (b *synopsisBuilder) functioningSheet(c *chart.Chart) error {
	if err := b.colWidths(SheetFunctioning, []float64{30, 26, 56, 12}); err != nil {
		return err
	}

	total, max, pct := c.Functioning.WHODASTotal()

	row := 1
	if err := b.headerRow(SheetFunctioning, row, []string{"Global Scores"}); err != nil {
		return err
	}
	row++
	kv := []struct {
		key   string
		value interface{}
	}{
		{"GAF Score", fmt.Sprintf("%d/100", c.Functioning.GAFScore)},
		{"Degree of Disability (GdB)", c.Functioning.GdBScore},
		{"WHODAS 2.0 Total", fmt.Sprintf("%d/%d", total, max)},
		{"WHODAS 2.0 %", pct},
		{"Psychosocial Stressors", strings.Join(c.Functioning.Stressors, ", ")},
	}
	for _, e := range kv {
		if err := b.setCell(SheetFunctioning, 1, row, e.key); err != nil {
			return err
		}
		if err := b.setCell(SheetFunctioning, 2, row, e.value); err != nil {
			return err
		}
		row++
	}

	row++
	if err := b.headerRow(SheetFunctioning, row, whodasHeader); err != nil {
		return err
	}
	row++
	for i, item := range catalog.WHODAS() {
		rating := 0
		if i < len(c.Functioning.WHODASScores) {
			rating = c.Functioning.WHODASScores[i]
		}
		cells := []interface{}{fmt.Sprintf("S%d", i+1), item.Domain, item.Text, rating}
		for col, v := range cells {
			if err := b.setCell(SheetFunctioning, col+1, row, v); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}
