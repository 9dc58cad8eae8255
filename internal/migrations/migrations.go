package migrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_ledger/internal/platform/logging"
)

// ErrNoChange is returned by Run when the store is already at the target version.
var ErrNoChange = errors.New("no change")

// Rule backfills one field. Derive runs only while the field is absent or null
// and sees the whole document so it can read legacy fields.
type Rule struct {
	Field  string
	Derive func(doc map[string]any) (any, bool)
}

// Rename maps deprecated values of a string field to current ones.
// Resolve, when set, handles labels Values does not know.
type Rename struct {
	Field   string
	Values  map[string]string
	Resolve func(doc map[string]any, old string) (string, bool)
}

// Step is one forward-only schema version. Rules run before renames, per collection.
type Step struct {
	Version int
	Name    string
	Rules   map[string][]Rule
	Renames map[string][]Rename
}

// Result summarizes a migration run.
type Result struct {
	From    int
	To      int
	Changed int
}

// Migrator upgrades the raw documents of a store.
type Migrator struct {
	docs  repositories.DocumentManager
	steps []Step
}

// Option customizes a Migrator.
type Option func(*Migrator)

// WithSteps replaces the built-in step table, mainly for tests.
func WithSteps(steps []Step) Option {
	return func(m *Migrator) {
		m.steps = steps
	}
}

// New returns a migrator over docs using the built-in steps.
func New(docs repositories.DocumentManager, opts ...Option) *Migrator {
	m := &Migrator{docs: docs, steps: Steps}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LatestVersion is the highest version the step table knows.
func (m *Migrator) LatestVersion() int {
	latest := 1
	for _, step := range m.steps {
		if step.Version > latest {
			latest = step.Version
		}
	}
	return latest
}

// Run migrates the store to LatestVersion.
func (m *Migrator) Run(ctx context.Context) (Result, error) {
	return m.Migrate(ctx, m.LatestVersion())
}

// Migrate applies every step above the stored version up to target in one write.
// Nothing is committed when any step fails.
func (m *Migrator) Migrate(ctx context.Context, target int) (Result, error) {
	logger := logging.GetLoggerFromCtx(ctx)
	var result Result

	err := m.docs.UpdateDocuments(ctx, func(docs repositories.DocumentStore) error {
		current, err := docs.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		result.From, result.To = current, current

		if current > m.LatestVersion() {
			return fmt.Errorf("store schema version %d is newer than supported version %d", current, m.LatestVersion())
		}
		if target < current {
			return fmt.Errorf("cannot migrate down from version %d to %d", current, target)
		}
		if target == current {
			return ErrNoChange
		}

		for _, step := range m.steps {
			if step.Version <= current || step.Version > target {
				continue
			}
			changed, err := applyStep(docs, step)
			if err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", step.Version, step.Name, err)
			}
			logger.Info("Applied schema migration",
				slog.Int("version", step.Version),
				slog.String("name", step.Name),
				slog.Int("changed_documents", changed))
			result.Changed += changed
		}

		if err := docs.Reindex(); err != nil {
			return fmt.Errorf("failed to rebuild indexes: %w", err)
		}
		if err := docs.SetSchemaVersion(target); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		result.To = target
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

func applyStep(docs repositories.DocumentStore, step Step) (int, error) {
	changed := 0
	for _, collection := range repositories.Collections {
		rules, renames := step.Rules[collection], step.Renames[collection]
		if len(rules) == 0 && len(renames) == 0 {
			continue
		}

		err := docs.ForEachDocument(collection, func(key, raw []byte) error {
			doc, err := decode(raw)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", collection, key, err)
			}
			if !migrateDocument(doc, rules, renames) {
				return nil
			}
			out, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", collection, key, err)
			}
			changed++
			return docs.PutDocument(collection, key, out)
		})
		if err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// migrateDocument applies rules then renames and reports whether doc changed.
func migrateDocument(doc map[string]any, rules []Rule, renames []Rename) bool {
	changed := false
	for _, rule := range rules {
		if !absent(doc, rule.Field) {
			continue
		}
		value, ok := rule.Derive(doc)
		if !ok {
			continue
		}
		doc[rule.Field] = value
		changed = true
	}

	for _, rename := range renames {
		old, ok := doc[rename.Field].(string)
		if !ok {
			continue
		}
		next, known := rename.Values[old]
		if !known && rename.Resolve != nil {
			next, known = rename.Resolve(doc, old)
		}
		if !known || next == old {
			continue
		}
		doc[rename.Field] = next
		changed = true
	}
	return changed
}

func absent(doc map[string]any, field string) bool {
	value, ok := doc[field]
	return !ok || value == nil
}

func decode(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is null")
	}
	return doc, nil
}
