package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// SQLSTATE коды Postgres
const (
	pgExclusionViolation  = "23P01"
	pgForeignKeyViolation = "23503"
)

var appointmentColumns = []string{
	"id",
	"client_id",
	"staff_id",
	"service_id",
	"date",
	"start_time",
	"end_time",
	"status",
	"notes",
	"created_at",
	"updated_at",
}

var detailsColumns = []string{
	"a.id",
	"a.client_id",
	"a.staff_id",
	"a.service_id",
	"a.date",
	"a.start_time",
	"a.end_time",
	"a.status",
	"a.notes",
	"a.created_at",
	"a.updated_at",
	"c.firstname",
	"c.lastname",
	"c.email",
	"c.phone",
	"s.firstname",
	"s.lastname",
	"s.email",
	"serv.name",
	"serv.duration",
	"serv.price",
}

// Repository репозиторий для работы с записями на приём
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockStaffDay берет транзакционную advisory-блокировку на (сотрудник, дата)
// Все создания записей одного сотрудника на одну дату выполняются строго по очереди,
// блокировка снимается при commit/rollback. Вне транзакции вызывать бессмысленно.
func (r *Repository) LockStaffDay(ctx context.Context, staffID string, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	key := staffID + "|" + date.Format(domain.DateFormat)
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("%w: LockStaffDay - staff=%s: %v", ErrLock, staffID, err)
	}

	return nil
}

// Create создает новую запись
// id генерируется на стороне сервиса, created_at/updated_at - на стороне БД
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"id",
			"client_id",
			"staff_id",
			"service_id",
			"date",
			"start_time",
			"end_time",
			"status",
			"notes",
		).
		Values(
			appointment.ID,
			appointment.ClientID,
			appointment.StaffID,
			appointment.ServiceID,
			appointment.Date.Format(domain.DateFormat),
			appointment.StartTime,
			appointment.EndTime,
			appointment.Status,
			appointment.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, fmt.Errorf("%w: Create - %v", mapped, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return appointment, nil
}

// GetByID получает запись вместе с клиентом, сотрудником и услугой
// Внутри транзакции строка блокируется (FOR UPDATE OF a)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AppointmentDetails, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := detailsSelect().Where(squirrel.Eq{"a.id": id})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF a")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	details, err := scanDetails(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return details, nil
}

// GetActiveByStaffAndDate получает активные (не cancelled и не completed) записи сотрудника на дату
// Внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) GetActiveByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inactive := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		inactive[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		Where(squirrel.NotEq{"status": inactive}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStaffAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStaffAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(
			&a.ID,
			&a.ClientID,
			&a.StaffID,
			&a.ServiceID,
			&a.Date,
			&a.StartTime,
			&a.EndTime,
			&a.Status,
			&a.Notes,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetActiveByStaffAndDate - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveByStaffAndDate - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// List получает страницу записей по фильтру
// Сортировка: дата DESC, время начала DESC, id DESC (id делает порядок однозначным для пагинации)
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.AppointmentDetails, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.AppointmentDetails, 0)
	for rows.Next() {
		details, err := scanDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		result = append(result, details)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// Count возвращает количество записей по фильтру без учета пагинации
func (r *Repository) Count(ctx context.Context, filter domain.AppointmentsFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildCountQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: Count - scan count: %v", ErrScanRow, err)
	}

	return total, nil
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return fmt.Errorf("%w: UpdateStatus - %v", mapped, err)
		}
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

func detailsSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(detailsColumns...).
		From("appointments a").
		LeftJoin("clients c ON a.client_id = c.id").
		LeftJoin("staff s ON a.staff_id = s.id").
		LeftJoin("services serv ON a.service_id = serv.id")
}

func applyFilter(b squirrel.SelectBuilder, filter domain.AppointmentsFilter) squirrel.SelectBuilder {
	if filter.Status != nil {
		b = b.Where(squirrel.Eq{"a.status": string(*filter.Status)})
	}
	if filter.StaffID != nil {
		b = b.Where(squirrel.Eq{"a.staff_id": *filter.StaffID})
	}
	if filter.ClientID != nil {
		b = b.Where(squirrel.Eq{"a.client_id": *filter.ClientID})
	}
	if filter.Date != nil {
		b = b.Where(squirrel.Eq{"a.date": filter.Date.Format(domain.DateFormat)})
	}
	return b
}

func buildListQuery(filter domain.AppointmentsFilter) (string, []interface{}, error) {
	b := applyFilter(detailsSelect(), filter).
		OrderBy("a.date DESC", "a.start_time DESC", "a.id DESC")

	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		b = b.Offset(uint64(filter.Offset))
	}

	return b.ToSql()
}

func buildCountQuery(filter domain.AppointmentsFilter) (string, []interface{}, error) {
	return applyFilter(psqlbuilder.Select("COUNT(*)").From("appointments a"), filter).ToSql()
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDetails(row rowScanner) (*domain.AppointmentDetails, error) {
	var d domain.AppointmentDetails

	err := row.Scan(
		&d.ID,
		&d.ClientID,
		&d.StaffID,
		&d.ServiceID,
		&d.Date,
		&d.StartTime,
		&d.EndTime,
		&d.Status,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.Client.FirstName,
		&d.Client.LastName,
		&d.Client.Email,
		&d.Client.Phone,
		&d.Staff.FirstName,
		&d.Staff.LastName,
		&d.Staff.Email,
		&d.Service.Name,
		&d.Service.Duration,
		&d.Service.Price,
	)
	if err != nil {
		return nil, err
	}

	d.Client.ID = d.ClientID
	d.Staff.ID = d.StaffID
	d.Service.ID = d.ServiceID

	return &d, nil
}

// mapConstraintError переводит нарушения ограничений Postgres в ошибки репозитория
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case pgExclusionViolation:
		return ErrOverlap
	case pgForeignKeyViolation:
		return ErrReferenceNotFound
	default:
		return nil
	}
}
