package tabular

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"lvilc/domain/probe"
	"lvilc/internal/errors"
	"lvilc/ports"
)

// ExcelReader reads observation tables from .xlsx workbooks with one sheet
// per probe class (supernova, bao, cmb) and a header row of
// z,value,sigma[,syst]. Sheets for absent probe classes may be omitted.
type ExcelReader struct{}

// NewExcelReader returns an Excel observation reader.
func NewExcelReader() *ExcelReader { return &ExcelReader{} }

// Read implements ports.TableReader.
func (r *ExcelReader) Read(path string) (probe.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return probe.Table{}, errors.IOError(path, err)
	}
	defer f.Close()

	series := map[probe.Kind]probe.Series{}
	for _, kind := range probe.Kinds() {
		sheet := sheetForKind(f, kind)
		if sheet == "" {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return probe.Table{}, errors.InvalidInput("%s sheet %s: %v", path, sheet, err)
		}
		recs, err := parseSheet(rows)
		if err != nil {
			return probe.Table{}, errors.Wrapf(err, "%s sheet %s", path, sheet)
		}
		if len(recs) > 0 {
			series[kind] = recs
		}
	}
	if len(series) == 0 {
		return probe.Table{}, errors.InvalidInput("%s: no probe sheets found (expected supernova, bao or cmb)", path)
	}

	table, err := probe.NewTable(series)
	if err != nil {
		return probe.Table{}, errors.InvalidInput("%s: %v", path, err)
	}
	return table, nil
}

// sheetForKind matches sheet names case-insensitively.
func sheetForKind(f *excelize.File, kind probe.Kind) string {
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(name), string(kind)) {
			return name
		}
	}
	return ""
}

func parseSheet(rows [][]string) (probe.Series, error) {
	if len(rows) < 2 {
		return nil, nil // header only or empty: contributes nothing
	}
	zi, vi, si, yi := -1, -1, -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "z", "redshift":
			zi = i
		case "value", "mu", "measurement":
			vi = i
		case "sigma", "err", "uncertainty":
			si = i
		case "syst", "sys_err":
			yi = i
		}
	}
	if zi < 0 || vi < 0 || si < 0 {
		return nil, errors.InvalidInput("header must contain z, value and sigma columns, got %v", rows[0])
	}

	var out probe.Series
	for n, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		rec := probe.Record{}
		var err error
		if rec.Z, err = cellFloat(row, zi, "z"); err != nil {
			return nil, errors.Wrapf(err, "row %d", n+2)
		}
		if rec.Value, err = cellFloat(row, vi, "value"); err != nil {
			return nil, errors.Wrapf(err, "row %d", n+2)
		}
		if rec.Sigma, err = cellFloat(row, si, "sigma"); err != nil {
			return nil, errors.Wrapf(err, "row %d", n+2)
		}
		if yi >= 0 && yi < len(row) && strings.TrimSpace(row[yi]) != "" {
			if rec.Syst, err = cellFloat(row, yi, "syst"); err != nil {
				return nil, errors.Wrapf(err, "row %d", n+2)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellFloat(row []string, i int, name string) (float64, error) {
	if i >= len(row) {
		return 0, errors.InvalidInput("missing %s cell", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, errors.InvalidInput("%s cell %q is not a number", name, row[i])
	}
	return v, nil
}

// NewReader picks a reader by file extension: .csv or .xlsx.
func NewReader(path string) (ports.TableReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVReader(), nil
	case ".xlsx":
		return NewExcelReader(), nil
	}
	return nil, errors.InvalidInput("unsupported observation file type %q (expected .csv or .xlsx)", filepath.Ext(path))
}

// AutoReader dispatches to the CSV or Excel reader by file extension.
type AutoReader struct{}

// NewAutoReader returns an extension-dispatching observation reader.
func NewAutoReader() *AutoReader { return &AutoReader{} }

// Read implements ports.TableReader.
func (AutoReader) Read(path string) (probe.Table, error) {
	r, err := NewReader(path)
	if err != nil {
		return probe.Table{}, err
	}
	return r.Read(path)
}
