// Package snapshot exports the entity store state as a JSON document and
// merges such documents back in.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/model"
)

// Export renders s as a pretty-printed document. Empty collections are
// written as [] rather than null.
func Export(s model.State) ([]byte, error) {
	data, err := json.MarshalIndent(s.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// FileName is the export file name for year.
func FileName(year int) string {
	return fmt.Sprintf("finances-%d.json", year)
}

// WriteFile exports s into dir and returns the written path.
func WriteFile(dir string, s model.State) (string, error) {
	data, err := Export(s)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(s.Year))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// document mirrors model.State with every field optional, so that an
// absent field can be told apart from an empty one.
type document struct {
	Year           *int                  `json:"year"`
	InitialBalance *decimal.Decimal      `json:"initialBalance"`
	MonthlyRules   *[]model.MonthlyRule  `json:"monthlyRules"`
	PlannedEvents  *[]model.PlannedEvent `json:"plannedEvents"`
	RealMovements  *[]model.RealMovement `json:"realMovements"`
}

// Import merges doc into a copy of base. Top-level fields absent from doc
// (or null) keep their base value; a year of 0 counts as absent. A document
// that does not decode returns a *model.ParseError and an invalid entry a
// *model.ValidationError; in both cases nothing is applied.
func Import(doc []byte, base model.State) (model.State, error) {
	return decode(doc, base, "")
}

// ReadFile imports the document at path.
func ReadFile(path string, base model.State) (model.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.State{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return decode(data, base, filepath.Base(path))
}

func decode(data []byte, base model.State, source string) (model.State, error) {
	var d document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&d); err != nil {
		return model.State{}, &model.ParseError{Source: source, Err: err}
	}
	if dec.More() {
		return model.State{}, &model.ParseError{Source: source, Err: fmt.Errorf("trailing data after document")}
	}

	out := base.Clone()
	if d.Year != nil && *d.Year != 0 {
		if err := out.SetYear(*d.Year); err != nil {
			return model.State{}, err
		}
	}
	if d.InitialBalance != nil {
		out.SetInitialBalance(*d.InitialBalance)
	}
	if d.MonthlyRules != nil {
		out.MonthlyRules = nonNil(*d.MonthlyRules)
	}
	if d.PlannedEvents != nil {
		out.PlannedEvents = nonNil(*d.PlannedEvents)
	}
	if d.RealMovements != nil {
		out.RealMovements = nonNil(*d.RealMovements)
	}

	if err := out.Validate(); err != nil {
		return model.State{}, err
	}
	return out, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
