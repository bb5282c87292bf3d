package models

import (
	"strconv"
)

// RawRecord is one row of the raw input file keyed by header name.
type RawRecord struct {
	Line   int               `json:"line"`
	Fields map[string]string `json:"fields"`
}

type FeatureKind string

const (
	FeatureNumeric     FeatureKind = "numeric"
	FeatureCategorical FeatureKind = "categorical"
)

// FeatureValue holds a single processed cell. Num is set for numeric
// features, Text for categorical ones.
type FeatureValue struct {
	Kind FeatureKind `json:"kind"`
	Num  float64     `json:"num,omitempty"`
	Text string      `json:"text,omitempty"`
}

func NumericValue(v float64) FeatureValue {
	return FeatureValue{Kind: FeatureNumeric, Num: v}
}

func CategoricalValue(s string) FeatureValue {
	return FeatureValue{Kind: FeatureCategorical, Text: s}
}

func (v FeatureValue) IsCategorical() bool {
	return v.Kind == FeatureCategorical
}

// String renders the value the way it is written to CSV.
func (v FeatureValue) String() string {
	if v.IsCategorical() {
		return v.Text
	}
	return strconv.FormatFloat(v.Num, 'g', -1, 64)
}

// ProcessedRecord is a raw record projected onto the feature manifest.
// Values are in manifest order.
type ProcessedRecord struct {
	ID     string         `json:"id"`
	Values []FeatureValue `json:"values"`
}

// FeatureSchema describes the processed layout: identifier column first,
// then one column per manifest feature.
type FeatureSchema struct {
	IDColumn string        `json:"id_column"`
	Features []string      `json:"features"`
	Kinds    []FeatureKind `json:"kinds"`
}

// Header returns the processed file header.
func (s FeatureSchema) Header() []string {
	header := make([]string, 0, len(s.Features)+1)
	header = append(header, s.IDColumn)
	return append(header, s.Features...)
}

func (s FeatureSchema) KindOf(i int) FeatureKind {
	if i < 0 || i >= len(s.Kinds) {
		return FeatureNumeric
	}
	return s.Kinds[i]
}
