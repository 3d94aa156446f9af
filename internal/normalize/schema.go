package normalize

import (
	"fmt"
	"slices"
	"strings"

	"covidexit/internal/table"
)

// Schema declares what a source table must contain and how its columns map
// onto the internal vocabulary.
type Schema struct {
	Source string
	// Required source columns, a missing one means the upstream format changed.
	Required []string
	// Rename maps source column -> vocabulary column. Source columns that are
	// not mentioned are dropped by Apply.
	Rename map[string]string
}

// SchemaError names every required field a source table is missing.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"%s: missing required fields: %s",
		e.Source, strings.Join(e.Missing, ", "),
	)
}

// Check verifies the raw table carries every required column.
func (s Schema) Check(raw *table.Table) error {
	var missing []string
	for _, field := range s.Required {
		if !raw.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Source: s.Source, Missing: missing}
	}
	return nil
}

// Apply checks the raw table, keeps the renamed columns in source order and
// renames them to the vocabulary.
func (s Schema) Apply(raw *table.Table) (*table.Table, error) {
	err := s.Check(raw)
	if err != nil {
		return nil, err
	}
	var keep []string
	for _, c := range raw.Columns() {
		if _, ok := s.Rename[c]; ok {
			keep = append(keep, c)
		}
	}
	projected, err := raw.Select(keep...)
	if err != nil {
		return nil, err
	}
	return projected.Rename(s.Rename)
}

// Restore renames vocabulary columns back to their source names, vocabulary
// columns without a source name are dropped.
func (s Schema) Restore(normalized *table.Table) (*table.Table, error) {
	inverse := make(map[string]string, len(s.Rename))
	for source, internal := range s.Rename {
		if _, dup := inverse[internal]; dup {
			return nil, fmt.Errorf("%s: %s is mapped from more than one source column", s.Source, internal)
		}
		inverse[internal] = source
	}
	var keep []string
	for _, c := range normalized.Columns() {
		if _, ok := inverse[c]; ok {
			keep = append(keep, c)
		}
	}
	projected, err := normalized.Select(keep...)
	if err != nil {
		return nil, err
	}
	return projected.Rename(inverse)
}

// Vocabulary returns the vocabulary columns a schema produces, sorted.
func (s Schema) Vocabulary() []string {
	out := make([]string, 0, len(s.Rename))
	for _, internal := range s.Rename {
		out = append(out, internal)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
