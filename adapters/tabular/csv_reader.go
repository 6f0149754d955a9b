// Package tabular loads observation tables from user-supplied files. Both
// readers produce the same immutable probe.Table the likelihood consumes.
package tabular

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"lvilc/domain/probe"
	"lvilc/internal/errors"
)

// CSVReader reads observation tables from CSV files with a header row of
// probe,z,value,sigma[,syst]. Rows are grouped into series by probe class.
type CSVReader struct{}

// NewCSVReader returns a CSV observation reader.
func NewCSVReader() *CSVReader { return &CSVReader{} }

// Read implements ports.TableReader.
func (r *CSVReader) Read(path string) (probe.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return probe.Table{}, errors.IOError(path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return probe.Table{}, errors.InvalidInput("%s: missing header row: %v", path, err)
	}
	cols, err := headerIndex(header)
	if err != nil {
		return probe.Table{}, errors.Wrapf(err, "%s", path)
	}

	series := map[probe.Kind]probe.Series{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return probe.Table{}, errors.InvalidInput("%s line %d: %v", path, line, err)
		}
		kind, rec, err := parseRow(row, cols)
		if err != nil {
			return probe.Table{}, errors.InvalidInput("%s line %d: %v", path, line, err)
		}
		series[kind] = append(series[kind], rec)
	}

	table, err := probe.NewTable(series)
	if err != nil {
		return probe.Table{}, errors.InvalidInput("%s: %v", path, err)
	}
	return table, nil
}

// columnIndex maps the required and optional column positions.
type columnIndex struct {
	kind, z, value, sigma int
	syst                  int // -1 when absent
}

func headerIndex(header []string) (columnIndex, error) {
	idx := columnIndex{kind: -1, z: -1, value: -1, sigma: -1, syst: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "probe", "kind":
			idx.kind = i
		case "z", "redshift":
			idx.z = i
		case "value", "mu", "measurement":
			idx.value = i
		case "sigma", "err", "uncertainty":
			idx.sigma = i
		case "syst", "sys_err":
			idx.syst = i
		}
	}
	if idx.kind < 0 || idx.z < 0 || idx.value < 0 || idx.sigma < 0 {
		return idx, errors.InvalidInput("header must contain probe, z, value and sigma columns, got %v", header)
	}
	return idx, nil
}

func parseRow(row []string, cols columnIndex) (probe.Kind, probe.Record, error) {
	kind, err := probe.ParseKind(strings.TrimSpace(row[cols.kind]))
	if err != nil {
		return "", probe.Record{}, err
	}
	rec := probe.Record{}
	if rec.Z, err = parseField(row, cols.z, "z"); err != nil {
		return "", probe.Record{}, err
	}
	if rec.Value, err = parseField(row, cols.value, "value"); err != nil {
		return "", probe.Record{}, err
	}
	if rec.Sigma, err = parseField(row, cols.sigma, "sigma"); err != nil {
		return "", probe.Record{}, err
	}
	if cols.syst >= 0 && cols.syst < len(row) && strings.TrimSpace(row[cols.syst]) != "" {
		if rec.Syst, err = parseField(row, cols.syst, "syst"); err != nil {
			return "", probe.Record{}, err
		}
	}
	return kind, rec, nil
}

func parseField(row []string, i int, name string) (float64, error) {
	if i >= len(row) {
		return 0, errors.InvalidInput("missing %s column", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, errors.InvalidInput("%s value %q is not a number", name, row[i])
	}
	return v, nil
}
