package infrastructure

import (
	"errors"
	"fmt"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// SQLiteRunRepository implements RunRepository using SQLite
type SQLiteRunRepository struct {
	db *gorm.DB
}

// NewSQLiteRunRepository creates a new SQLite repository
func NewSQLiteRunRepository(dbPath string) (*SQLiteRunRepository, error) {
	if err := EnsureDir(filepath.Dir(dbPath)); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Workers record outcomes concurrently; a single connection serialises writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Run{}, &domain.TaskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRunRepository{db: db}, nil
}

// CreateRun stores a new run
func (r *SQLiteRunRepository) CreateRun(run *domain.Run) error {
	return r.db.Create(run).Error
}

// UpdateRun saves changes to an existing run
func (r *SQLiteRunRepository) UpdateRun(run *domain.Run) error {
	return r.db.Save(run).Error
}

// AddTaskRecord appends a task outcome to a run
func (r *SQLiteRunRepository) AddTaskRecord(record *domain.TaskRecord) error {
	return r.db.Create(record).Error
}

// FindRun finds a run by ID
func (r *SQLiteRunRepository) FindRun(id string) (*domain.Run, error) {
	var run domain.Run
	err := r.db.First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
		}
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs first. A limit of 0 returns all runs.
func (r *SQLiteRunRepository) ListRuns(limit int) ([]*domain.Run, error) {
	var runs []*domain.Run
	query := r.db.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}

// ListTaskRecords returns the task outcomes of a run ordered by standard, year and kind
func (r *SQLiteRunRepository) ListTaskRecords(runID string) ([]*domain.TaskRecord, error) {
	var records []*domain.TaskRecord
	err := r.db.Where("run_id = ?", runID).
		Order("standard ASC, year ASC, kind ASC").
		Find(&records).Error
	return records, err
}

// CountByOutcome returns the number of task records per outcome for a run
func (r *SQLiteRunRepository) CountByOutcome(runID string) (map[domain.OutcomeKind]int64, error) {
	counts := []struct {
		Outcome domain.OutcomeKind
		Count   int64
	}{}

	if err := r.db.Model(&domain.TaskRecord{}).
		Select("outcome, count(*) as count").
		Where("run_id = ?", runID).
		Group("outcome").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	result := make(map[domain.OutcomeKind]int64, len(counts))
	for _, c := range counts {
		result[c.Outcome] = c.Count
	}
	return result, nil
}

// Close closes the database connection
func (r *SQLiteRunRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
