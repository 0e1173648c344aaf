// Package projects stores project documents and summarizes their portfolios.
package projects

import (
	"errors"
	"strings"
)

// ErrInvalidDocument is returned when a document lacks an id or a name
var ErrInvalidDocument = errors.New("project document requires id and name")

// Document keys read by the store and the summary
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldStocks       = "stocks"
	FieldWeights      = "weights"
	FieldTargetReturn = "targetReturn"
)

// Document is a project as the front-end sends it. Only id and name are
// required; every other field is stored and returned untouched.
type Document map[string]interface{}

// ID returns the document id, or "" when absent or not a string
func (d Document) ID() string {
	return d.stringField(FieldID)
}

// Name returns the document name, or "" when absent or not a string
func (d Document) Name() string {
	return d.stringField(FieldName)
}

// Normalize writes the trimmed id and name back so the stored document
// matches the key it is stored under
func (d Document) Normalize() {
	if _, ok := d[FieldID].(string); ok {
		d[FieldID] = d.ID()
	}
	if _, ok := d[FieldName].(string); ok {
		d[FieldName] = d.Name()
	}
}

// Validate checks the fields the store indexes on
func (d Document) Validate() error {
	if d.ID() == "" || d.Name() == "" {
		return ErrInvalidDocument
	}
	return nil
}

func (d Document) stringField(key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

// StockScore is one scored stock of a portfolio summary
type StockScore struct {
	Symbol     string  `json:"symbol"`
	FinalScore int     `json:"finalScore"`
	BaseScore  float64 `json:"baseScore"`
	Grade      string  `json:"grade"`
}

// Summary describes the scores of every stock in a project
type Summary struct {
	ProjectID    string         `json:"project_id"`
	Name         string         `json:"name"`
	TargetReturn float64        `json:"target_return"`
	Count        int            `json:"count"`
	Mean         float64        `json:"mean"`
	StdDev       float64        `json:"stddev"`
	Min          int            `json:"min"`
	Max          int            `json:"max"`
	Grades       map[string]int `json:"grades"`
	Stocks       []StockScore   `json:"stocks"`
	Text         string         `json:"text"`
}
