package resolve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/poiesic/dualstore/core"
)

// ValueDomain grants the resolver query access to materialized column
// values, used to value-match candidate foreign keys against target
// primary keys. The structured store's table repository satisfies it.
type ValueDomain interface {
	// ColumnValues returns every stored value of a table column in row order.
	ColumnValues(ctx context.Context, table, column string) ([]string, error)
}

// Resolver infers primary keys, detects foreign-key relationships, and
// sweeps pending relationships as new tables arrive.
type Resolver struct {
	config *Config
	domain ValueDomain
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithConfig sets the resolver heuristics.
// Default is DefaultConfig().
func WithConfig(config *Config) Option {
	return func(r *Resolver) error {
		if config == nil {
			config = DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		r.config = config
		return nil
	}
}

// New creates a resolver backed by the given value domain.
func New(domain ValueDomain, opts ...Option) (*Resolver, error) {
	if domain == nil {
		return nil, ErrValueDomainRequired
	}

	r := &Resolver{
		config: DefaultConfig(),
		domain: domain,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.logger = r.logger.With("component", "resolver")
	return r, nil
}

// DetectRelationships scans a table's columns for foreign-key shapes and
// resolves each candidate against the known tables in state. Candidates
// whose target table is unknown, lacks a primary key, or fails the
// value-domain check become pending relationships instead.
//
// The returned slices are not yet applied to state; the caller records
// them once the table materializes successfully.
func (r *Resolver) DetectRelationships(
	ctx context.Context,
	tableName string,
	columns []string,
	rows [][]string,
	state *core.IngestionState,
) ([]core.Relationship, []core.PendingRelationship, error) {
	var resolved []core.Relationship
	var pending []core.PendingRelationship

	for col, column := range columns {
		stem := fkStem(column)
		if stem == "" {
			continue
		}
		// A table's own conventional key is not a reference to itself.
		if column == Singularize(tableName)+"_id" {
			continue
		}

		target := r.matchTable(stem, state)
		if target == nil || !target.HasPrimaryKey() {
			pending = append(pending, core.PendingRelationship{
				Table:            tableName,
				Column:           column,
				AwaitedTableHint: stem,
			})
			continue
		}

		ok, err := r.valuesCovered(ctx, columnValues(rows, col), target.Name, *target.PrimaryKey)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			r.logger.Debug("foreign key candidate failed value match",
				"table", tableName, "column", column, "target", target.Name)
			pending = append(pending, core.PendingRelationship{
				Table:            tableName,
				Column:           column,
				AwaitedTableHint: stem,
			})
			continue
		}

		resolved = append(resolved, core.Relationship{
			FromTable:  tableName,
			FromColumn: column,
			ToTable:    target.Name,
			ToColumn:   *target.PrimaryKey,
		})
	}

	return resolved, pending, nil
}

// SweepPending re-scans all pending relationships after a new table has
// materialized. Entries whose hint matches the new table are promoted to
// resolved relationships, provided the table carries a primary key whose
// value domain covers the column; promoted entries leave the pending
// list. Entries that match the hint but fail the value check stay
// pending: promoting them would break the FK invariant.
func (r *Resolver) SweepPending(ctx context.Context, newTable *core.TableSpec, state *core.IngestionState) ([]core.Relationship, error) {
	var promoted []core.Relationship

	for _, p := range append([]core.PendingRelationship(nil), state.Pending...) {
		if !r.stemMatches(p.AwaitedTableHint, newTable.Name) {
			continue
		}
		if !newTable.HasPrimaryKey() {
			continue
		}

		values, err := r.domain.ColumnValues(ctx, p.Table, p.Column)
		if err != nil {
			return nil, err
		}
		ok, err := r.valuesCovered(ctx, values, newTable.Name, *newTable.PrimaryKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		rel := core.Relationship{
			FromTable:  p.Table,
			FromColumn: p.Column,
			ToTable:    newTable.Name,
			ToColumn:   *newTable.PrimaryKey,
		}
		state.RemovePending(p.Table, p.Column)
		state.AddRelationship(rel)
		promoted = append(promoted, rel)

		r.logger.Info("promoted pending relationship",
			"from", p.Table+"."+p.Column,
			"to", newTable.Name+"."+*newTable.PrimaryKey)
	}

	return promoted, nil
}

// valuesCovered reports whether the target column's value domain is a
// superset of the candidate's non-null values.
func (r *Resolver) valuesCovered(ctx context.Context, candidate []string, targetTable, targetColumn string) (bool, error) {
	targetValues, err := r.domain.ColumnValues(ctx, targetTable, targetColumn)
	if err != nil {
		return false, err
	}

	domain := make(map[string]struct{}, len(targetValues))
	for _, v := range targetValues {
		domain[v] = struct{}{}
	}

	for _, v := range candidate {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := domain[v]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// matchTable finds the known table a foreign-key stem refers to.
func (r *Resolver) matchTable(stem string, state *core.IngestionState) *core.TableSpec {
	if spec := state.Table(stem); spec != nil {
		return spec
	}
	for _, plural := range []string{stem + "s", stem + "es", pluralizeY(stem)} {
		if spec := state.Table(plural); spec != nil {
			return spec
		}
	}

	// Fuzzy fallback absorbs irregular plurals and light misspellings.
	var best *core.TableSpec
	bestScore := r.config.StemSimilarity
	for name, spec := range state.Tables {
		score := levenshtein.Match(stem, Singularize(name), nil)
		if score >= bestScore {
			best = spec
			bestScore = score
		}
	}
	return best
}

// stemMatches reports whether a pending hint refers to a table name.
func (r *Resolver) stemMatches(stem, tableName string) bool {
	if stem == tableName || stem+"s" == tableName || stem+"es" == tableName || pluralizeY(stem) == tableName {
		return true
	}
	return levenshtein.Match(stem, Singularize(tableName), nil) >= r.config.StemSimilarity
}

func pluralizeY(stem string) string {
	if strings.HasSuffix(stem, "y") && len(stem) > 1 {
		return stem[:len(stem)-1] + "ies"
	}
	return stem + "ies"
}
