package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

// RosterRepository reads class membership maintained by the student
// profile system. It never writes.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// GetStudentsInClass returns the roster ordered by roll number then name.
func (r *RosterRepository) GetStudentsInClass(ctx context.Context, className string) ([]models.ClassStudent, error) {
	query := r.db.Rebind(`SELECT student_id, full_name, roll_number, photo_url, class_name
FROM class_students WHERE class_name = ?
ORDER BY roll_number ASC, full_name ASC`)
	students := []models.ClassStudent{}
	if err := r.db.SelectContext(ctx, &students, query, className); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return students, nil
}
