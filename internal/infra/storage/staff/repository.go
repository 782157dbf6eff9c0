package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий сотрудников (только чтение, таблица staff ведется снаружи)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория сотрудников
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWorkload возвращает всех сотрудников с количеством записей начиная с since
// Средняя длительность считается только по завершенным записям, в часах
func (r *Repository) GetWorkload(ctx context.Context, since time.Time) ([]*domain.StaffWorkload, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildWorkloadQuery(since)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkload - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWorkload - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.StaffWorkload, 0)
	for rows.Next() {
		var w domain.StaffWorkload
		if err := rows.Scan(
			&w.StaffID,
			&w.FirstName,
			&w.LastName,
			&w.Email,
			&w.TotalAppointments,
			&w.CompletedAppointments,
			&w.AvgAppointmentDurationHours,
		); err != nil {
			return nil, fmt.Errorf("%w: GetWorkload - scan row: %v", ErrScanRow, err)
		}
		result = append(result, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWorkload - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

func buildWorkloadQuery(since time.Time) (string, []interface{}, error) {
	return psqlbuilder.Select(
		"s.id",
		"s.firstname",
		"s.lastname",
		"s.email",
		"COUNT(a.id)",
		"COUNT(CASE WHEN a.status = 'completed' THEN 1 END)",
		"AVG(CASE WHEN a.status = 'completed' THEN EXTRACT(EPOCH FROM (a.end_time - a.start_time)) / 3600 END)",
	).
		From("staff s").
		JoinClause("LEFT JOIN appointments a ON s.id = a.staff_id AND a.date >= ?", since.Format(domain.DateFormat)).
		GroupBy("s.id", "s.firstname", "s.lastname", "s.email").
		OrderBy("s.lastname ASC", "s.firstname ASC", "s.id ASC").
		ToSql()
}
