package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/strata"
	"github.com/syssam/strata/dialect"
)

// Migrate runs the DDL of a Plan against a database.
type Migrate struct {
	drv        dialect.Driver
	dropTables bool
	logger     *slog.Logger
}

// MigrateOption allows configuring Migrate using functional arguments.
type MigrateOption func(*Migrate)

// WithDropTables sets the drop-tables option. When enabled, Create drops
// the given tables before creating them.
func WithDropTables(b bool) MigrateOption {
	return func(m *Migrate) {
		m.dropTables = b
	}
}

// WithLogger sets the logger used to report applied statements.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMigrate creates a new Migrate for the given driver.
func NewMigrate(drv dialect.Driver, opts ...MigrateOption) (*Migrate, error) {
	m := &Migrate{drv: drv, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	if !dialect.Supported(drv.Dialect()) {
		return nil, fmt.Errorf("schema: unsupported dialect %q", drv.Dialect())
	}
	return m, nil
}

// Plan returns the statements Create would execute for the given tables.
func (m *Migrate) Plan(tables ...*Table) (*Plan, error) {
	p, err := PlanCreate(m.drv.Dialect(), tables)
	if err != nil {
		return nil, err
	}
	if !m.dropTables {
		return p, nil
	}
	drop, err := PlanDrop(m.drv.Dialect(), tables)
	if err != nil {
		return nil, err
	}
	p.Stmts = append(drop.Stmts, p.Stmts...)
	return p, nil
}

// Create creates the given tables in one transaction.
func (m *Migrate) Create(ctx context.Context, tables ...*Table) error {
	p, err := m.Plan(tables...)
	if err != nil {
		return err
	}
	return m.Apply(ctx, p)
}

// Drop drops the given tables in one transaction.
func (m *Migrate) Drop(ctx context.Context, tables ...*Table) error {
	p, err := PlanDrop(m.drv.Dialect(), tables)
	if err != nil {
		return err
	}
	return m.Apply(ctx, p)
}

// Apply executes the statements of the plan in one transaction. On failure,
// the transaction is rolled back and a rollback failure is reported as
// *strata.RollbackError.
func (m *Migrate) Apply(ctx context.Context, p *Plan) error {
	if p.Dialect != m.drv.Dialect() {
		return fmt.Errorf("schema: plan for %q cannot be applied to %q", p.Dialect, m.drv.Dialect())
	}
	tx, err := m.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("schema: begin transaction: %w", err)
	}
	for i, stmt := range p.Stmts {
		m.logger.DebugContext(ctx, "apply statement", "plan", p.ID, "step", i+1, "sql", stmt)
		if err := tx.Exec(ctx, stmt, []any{}, nil); err != nil {
			return rollback(tx, fmt.Errorf("schema: apply step %d: %w", i+1, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("schema: commit: %w", err)
	}
	m.logger.InfoContext(ctx, "plan applied", "plan", p.ID, "dialect", p.Dialect, "statements", len(p.Stmts))
	return nil
}

// rollback calls to tx.Rollback and wraps the given error with the rollback
// error if occurred.
func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return &strata.RollbackError{Err: fmt.Errorf("%w: %v", err, rerr)}
	}
	return err
}
