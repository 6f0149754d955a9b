package probe

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind identifies the observational probe class a record belongs to.
type Kind string

const (
	Supernova Kind = "supernova" // distance moduli of type Ia supernovae
	BAO       Kind = "bao"       // D_V/r_d distance ratios
	CMB       Kind = "cmb"       // compressed distance priors (100*theta_star)
)

// Kinds lists every supported probe class in stable order.
func Kinds() []Kind {
	return []Kind{Supernova, BAO, CMB}
}

// ParseKind validates a probe-class name from user input. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Supernova, BAO, CMB:
		return k, nil
	}
	return "", fmt.Errorf("unknown probe kind %q (expected supernova, bao or cmb)", s)
}

// Record is a single observation: redshift, measured value and its
// one-sigma statistical uncertainty. Syst carries an optional systematic
// uncertainty, zero when the dataset does not provide one.
type Record struct {
	Z     float64
	Value float64
	Sigma float64
	Syst  float64
}

// TotalSigma combines statistical and systematic uncertainty in quadrature.
func (r Record) TotalSigma() float64 {
	if r.Syst == 0 {
		return r.Sigma
	}
	return math.Sqrt(r.Sigma*r.Sigma + r.Syst*r.Syst)
}

// Validate rejects records that cannot enter a chi-square term.
func (r Record) Validate() error {
	if math.IsNaN(r.Z) || r.Z < 0 {
		return fmt.Errorf("redshift must be >= 0, got %v", r.Z)
	}
	if !(r.Sigma > 0) {
		return fmt.Errorf("uncertainty must be > 0, got %v", r.Sigma)
	}
	if math.IsNaN(r.Syst) || r.Syst < 0 {
		return fmt.Errorf("systematic uncertainty must be >= 0, got %v", r.Syst)
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return fmt.Errorf("measured value must be finite, got %v", r.Value)
	}
	return nil
}

// Series is the ordered dataset of one probe class. Order is irrelevant to
// the likelihood but kept stable for reproducibility.
type Series []Record

// Redshifts returns the independent variable column.
func (s Series) Redshifts() []float64 {
	zs := make([]float64, len(s))
	for i, r := range s {
		zs[i] = r.Z
	}
	return zs
}

// Table is an immutable collection of observation series keyed by probe
// class. Construct with NewTable; the zero value is an empty table.
type Table struct {
	series map[Kind]Series
}

// NewTable copies the given series into a new table, validating every
// record. Unknown kinds are rejected.
func NewTable(series map[Kind]Series) (Table, error) {
	out := make(map[Kind]Series, len(series))
	for kind, recs := range series {
		if _, err := ParseKind(string(kind)); err != nil {
			return Table{}, err
		}
		for i, r := range recs {
			if err := r.Validate(); err != nil {
				return Table{}, fmt.Errorf("%s record %d: %w", kind, i, err)
			}
		}
		cp := make(Series, len(recs))
		copy(cp, recs)
		out[kind] = cp
	}
	return Table{series: out}, nil
}

// Series returns the dataset for one probe class; nil when absent.
// The returned slice must not be mutated.
func (t Table) Series(kind Kind) Series {
	return t.series[kind]
}

// Kinds returns the probe classes present, in stable sorted order.
func (t Table) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t.series))
	for k, s := range t.series {
		if len(s) > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len is the total number of records across all probe classes.
func (t Table) Len() int {
	n := 0
	for _, s := range t.series {
		n += len(s)
	}
	return n
}

// Restrict returns a table containing only the named probe classes. An
// empty selection keeps the table as-is.
func (t Table) Restrict(kinds []Kind) Table {
	if len(kinds) == 0 {
		return t
	}
	out := make(map[Kind]Series, len(kinds))
	for _, k := range kinds {
		if s, ok := t.series[k]; ok {
			out[k] = s
		}
	}
	return Table{series: out}
}
