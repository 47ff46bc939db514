package repository

import (
	"fmt"
	"time"

	"eie-registry/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusMovementData is one day of the status-movement chart
type StatusMovementData struct {
	Date         string `json:"date"`
	Supervised   int64  `json:"supervised"`
	WaitApproved int64  `json:"wait_approved"`
	Approved     int64  `json:"approved"`
	Rejected     int64  `json:"rejected"`
	Restored     int64  `json:"restored"`
}

type StatusHistoryRepository interface {
	Create(tx *gorm.DB, entries []model.ProductStatusHistory) error
	FindByProductID(productID uuid.UUID) ([]model.ProductStatusHistory, error)
	GetStatusMovement(startDate, endDate time.Time, orgID *uuid.UUID) ([]StatusMovementData, error)
}

type statusHistoryRepo struct {
	db *gorm.DB
}

func NewStatusHistoryRepo(db *gorm.DB) StatusHistoryRepository {
	return &statusHistoryRepo{db}
}

func (r *statusHistoryRepo) Create(tx *gorm.DB, entries []model.ProductStatusHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return tx.Create(&entries).Error
}

func (r *statusHistoryRepo) FindByProductID(productID uuid.UUID) ([]model.ProductStatusHistory, error) {
	var entries []model.ProductStatusHistory
	err := r.db.Where("product_id = ?", productID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *statusHistoryRepo) GetStatusMovement(startDate, endDate time.Time, orgID *uuid.UUID) ([]StatusMovementData, error) {
	q := r.db.Model(&model.ProductStatusHistory{}).
		Select(`
			DATE(product_status_history.created_at) as date,
			COALESCE(SUM(CASE WHEN action = 'supervised' THEN 1 ELSE 0 END), 0) as supervised,
			COALESCE(SUM(CASE WHEN action = 'wait-approved' THEN 1 ELSE 0 END), 0) as wait_approved,
			COALESCE(SUM(CASE WHEN action = 'approved' THEN 1 ELSE 0 END), 0) as approved,
			COALESCE(SUM(CASE WHEN action = 'rejected' THEN 1 ELSE 0 END), 0) as rejected,
			COALESCE(SUM(CASE WHEN action = 'restored' THEN 1 ELSE 0 END), 0) as restored
		`).
		Where("product_status_history.created_at BETWEEN ? AND ?", startDate, endDate)
	if orgID != nil {
		q = q.Joins("JOIN products ON products.id = product_status_history.product_id").
			Where("products.organization_id = ?", *orgID)
	}

	rows, err := q.Group("DATE(product_status_history.created_at)").Order("date ASC").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StatusMovementData
	for rows.Next() {
		var day interface{}
		var data StatusMovementData
		if err := rows.Scan(&day, &data.Supervised, &data.WaitApproved, &data.Approved, &data.Rejected, &data.Restored); err != nil {
			return nil, err
		}
		data.Date = formatDay(day)
		results = append(results, data)
	}
	return results, rows.Err()
}

// formatDay normalises DATE() results, which postgres returns as a time and
// sqlite as text.
func formatDay(v interface{}) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case []byte:
		return truncateDay(string(d))
	case string:
		return truncateDay(d)
	default:
		return fmt.Sprint(v)
	}
}

func truncateDay(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
