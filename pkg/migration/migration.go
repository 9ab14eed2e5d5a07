// Package migration applies versioned schema changes and records them in
// the tiffin_migrations table, grouped in batches so the latest batch can
// be rolled back.
//
//	migration.Register(migration.Migration{
//	    Name: "2026_01_10_000001_create_orders",
//	    Up:   func(tx *gorm.DB) error { return tx.AutoMigrate(&models.Order{}) },
//	    Down: func(tx *gorm.DB) error { return tx.Migrator().DropTable("orders") },
//	})
//	err := migration.New(db).Run(ctx)
package migration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"gorm.io/gorm"
)

type Migration struct {
	Name string
	Up   func(tx *gorm.DB) error
	Down func(tx *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "tiffin_migrations" }

// Status describes one known migration.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

var (
	regMu    sync.Mutex
	registry []Migration
)

// Register adds m to the global set. Names sort chronologically.
func Register(m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, m)
}

func registered() []Migration {
	regMu.Lock()
	defer regMu.Unlock()
	return append([]Migration(nil), registry...)
}

type Runner struct {
	db         *gorm.DB
	migrations []Migration
}

// New runs the globally registered migrations.
func New(db *gorm.DB) *Runner { return NewWith(db, registered()...) }

// NewWith runs exactly the given migrations.
func NewWith(db *gorm.DB, migrations ...Migration) *Runner {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Runner{db: db, migrations: sorted}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]record, error) {
	var rows []record
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read history: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var last struct{ Max int }
	err := r.db.WithContext(ctx).Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("migration: read batch: %w", err)
	}
	return last.Max, nil
}

// Run applies every pending migration in one new batch and returns their
// names. Each migration and its history row commit together.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	batch, err := r.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	batch++

	var applied []string
	for _, m := range r.migrations {
		if _, ok := done[m.Name]; ok {
			continue
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: m.Name, Batch: batch}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", m.Name, err)
		}
		logger.Info("migration: applied", "name", m.Name, "batch", batch)
		applied = append(applied, m.Name)
	}
	return applied, nil
}

// Rollback reverts the latest batch, newest first, and returns the names.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	batch, err := r.lastBatch(ctx)
	if err != nil || batch == 0 {
		return nil, err
	}

	var rows []record
	if err := r.db.WithContext(ctx).Where("batch = ?", batch).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read batch %d: %w", batch, err)
	}

	known := make(map[string]Migration, len(r.migrations))
	for _, m := range r.migrations {
		known[m.Name] = m
	}

	var reverted []string
	for _, row := range rows {
		m, ok := known[row.Name]
		if !ok || m.Down == nil {
			return reverted, fmt.Errorf("migration: %s cannot be rolled back", row.Name)
		}
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, row.ID).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		logger.Info("migration: rolled back", "name", row.Name)
		reverted = append(reverted, row.Name)
	}
	return reverted, nil
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.migrations))
	for _, m := range r.migrations {
		row, ok := done[m.Name]
		out = append(out, Status{Name: m.Name, Ran: ok, Batch: row.Batch})
	}
	return out, nil
}
