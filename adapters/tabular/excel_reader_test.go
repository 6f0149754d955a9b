package tabular

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"lvilc/domain/probe"
)

// writeWorkbook builds an .xlsx fixture with one sheet per probe class.
func writeWorkbook(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet: %v", err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "obs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestExcelReader_ReadsSheetsPerProbe(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"supernova": {
			{"z", "value", "sigma", "syst"},
			{0.1, 38.3, 0.2, 0.1},
			{0.5, 42.3, 0.2, nil},
		},
		"BAO": { // sheet matching is case-insensitive
			{"z", "value", "sigma"},
			{0.5, 12.5, 0.3},
		},
	})
	table, err := NewExcelReader().Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("Len = %d, want 3", table.Len())
	}
	sn := table.Series(probe.Supernova)
	if len(sn) != 2 {
		t.Fatalf("supernova records = %d, want 2", len(sn))
	}
	if sn[0].Syst != 0.1 {
		t.Errorf("syst = %v, want 0.1", sn[0].Syst)
	}
	if len(table.Series(probe.BAO)) != 1 {
		t.Errorf("bao records = %d, want 1", len(table.Series(probe.BAO)))
	}
}

func TestExcelReader_NoProbeSheets(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"notes": {{"irrelevant"}},
	})
	if _, err := NewExcelReader().Read(path); err == nil {
		t.Error("Read accepted a workbook without probe sheets")
	}
}

func TestExcelReader_BadCell(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"cmb": {
			{"z", "value", "sigma"},
			{"not-a-number", 1.04, 0.0003},
		},
	})
	if _, err := NewExcelReader().Read(path); err == nil {
		t.Error("Read accepted a non-numeric cell")
	}
}
