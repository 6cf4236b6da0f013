package repository

import (
	"context"

	"github.com/pauloheg33/SIEDE/internal/models"
	"gorm.io/gorm"
)

// AttendanceRepository defines the interface for attendance data access
type AttendanceRepository interface {
	WithTx(tx *gorm.DB) AttendanceRepository
	FindByID(ctx context.Context, eventID, id uint) (*models.Attendance, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Attendance, error)
	Create(ctx context.Context, att *models.Attendance) error
	CreateBatch(ctx context.Context, rows []models.Attendance) error
	Delete(ctx context.Context, id uint) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) WithTx(tx *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: tx}
}

func (r *attendanceRepository) FindByID(ctx context.Context, eventID, id uint) (*models.Attendance, error) {
	var att models.Attendance
	err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", id, eventID).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("person_name").
		Find(&rows).Error
	return rows, err
}

func (r *attendanceRepository) Create(ctx context.Context, att *models.Attendance) error {
	return r.db.WithContext(ctx).Create(att).Error
}

// CreateBatch inserts all rows in one statement. Callers run it inside
// a transaction so a CSV import is all-or-nothing.
func (r *attendanceRepository) CreateBatch(ctx context.Context, rows []models.Attendance) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *attendanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Attendance{}, id).Error
}
