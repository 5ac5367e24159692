package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	leaveerrors "go-ems/internal/leave/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const dateRangeConstraint = "chk_leave_requests_date_range"

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, filter ListFilter) ([]Leave, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindByEmployeeStartingBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	UpdateStatus(ctx context.Context, id, fromStatus string, change StatusChange) (bool, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return mapRepositoryError(r.conn(ctx).Create(l).Error)
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Leave, error) {
	db := r.conn(ctx).Model(&Leave{})
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var leaves []Leave
	err := db.Order("applied_date DESC").Find(&leaves).Error
	return leaves, mapRepositoryError(err)
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, mapRepositoryError(err)
}

// FindByEmployeeStartingBetween returns leaves with from <= start_date < to.
func (r *repository) FindByEmployeeStartingBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("start_date >= ? AND start_date < ?", from, to).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, mapRepositoryError(err)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &l, nil
}

// UpdateStatus applies change only while the row is still in fromStatus. It
// reports false when no row matched, which callers treat as a lost race.
func (r *repository) UpdateStatus(ctx context.Context, id, fromStatus string, change StatusChange) (bool, error) {
	res := r.conn(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]any{
			"status":      change.Status,
			"approved_by": change.ApprovedBy,
			"remarks":     change.Remarks,
			"decided_at":  change.DecidedAt,
			"updated_at":  change.DecidedAt,
		})
	if res.Error != nil {
		return false, mapRepositoryError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// HasOverlappingPeriod looks for Pending or Approved leave of the employee
// sharing at least one day with [startDate, endDate].
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, mapRepositoryError(err)
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23514" && pgErr.ConstraintName == dateRangeConstraint {
			return leaveerrors.ErrInvalidDateRange
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "violates check constraint") && strings.Contains(errMsg, dateRangeConstraint) {
		return leaveerrors.ErrInvalidDateRange
	}

	return err
}
