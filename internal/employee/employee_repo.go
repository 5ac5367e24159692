package employee

import (
	"context"

	"gorm.io/gorm"
)

type SummaryRow struct {
	ID          string
	FullName    string
	Department  string
	Designation string
}

type Repository interface {
	FindSummariesByIDs(ctx context.Context, ids []string) ([]SummaryRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindSummariesByIDs(ctx context.Context, ids []string) ([]SummaryRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []SummaryRow
	err := r.db.WithContext(ctx).
		Table("employees AS e").
		Select(`e.id::text AS id,
			e.full_name AS full_name,
			COALESCE(d.name, '') AS department,
			COALESCE(p.name, '') AS designation`).
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Joins("LEFT JOIN positions p ON p.id = e.position_id").
		Where("e.id IN ?", ids).
		Where("e.deleted_at IS NULL").
		Scan(&rows).Error
	return rows, err
}
