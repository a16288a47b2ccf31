// Package migrate moves grocery items in and out of the store as flat
// files, for hand edits, seeding, and moving lists between machines.
//
// Export supports JSONL (one item per line) and YAML. Import reads
// JSONL and creates items through the store, so imported rows get fresh
// ids; it is additive, not a restore.
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pantryhub/groceryd/internal/store"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format string from the CLI.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSONL, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (want jsonl or yaml)", s)
	}
}

// record is the file representation of an item. The id is kept on
// export for reference but ignored on import.
type record struct {
	ID       int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Quantity int64  `json:"quantity" yaml:"quantity"`
	Checked  int64  `json:"checked" yaml:"checked"`
}

// ImportResult reports what an import did.
type ImportResult struct {
	Created int
	Skipped int
	Errors  []string
}

// Export writes all items to w in the given format, newest first.
func Export(ctx context.Context, st *store.Store, w io.Writer, format Format) error {
	items, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}

	records := make([]record, len(items))
	for i, it := range items {
		records[i] = record{ID: it.ID, Name: it.Name, Quantity: it.Quantity, Checked: it.Checked}
	}

	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to encode item %d: %w", r.ID, err)
			}
		}
		return nil

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// Import reads a JSONL stream and creates one item per record.
//
// Records with an empty name are skipped and reported rather than
// aborting the whole import. When dryRun is set nothing is written.
func Import(ctx context.Context, st *store.Store, r io.Reader, dryRun bool) (*ImportResult, error) {
	result := &ImportResult{}

	dec := json.NewDecoder(r)
	lineNum := 0
	for {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid JSON at record %d: %w", lineNum+1, err)
		}
		lineNum++

		if rec.Name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: name required", lineNum))
			continue
		}

		if dryRun {
			result.Created++
			continue
		}

		it, err := st.Create(ctx, rec.Name, rec.Quantity)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", lineNum, err))
			continue
		}

		// Create has no checked argument; flag carried over separately.
		if rec.Checked != 0 {
			checked := rec.Checked
			if _, err := st.Update(ctx, it.ID, store.Fields{Checked: &checked}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("record %d: set checked: %v", lineNum, err))
			}
		}

		result.Created++
	}

	return result, nil
}
