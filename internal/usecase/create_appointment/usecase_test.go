package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// memoryRepo хранит записи в памяти
type memoryRepo struct {
	mu           sync.Mutex
	appointments []*domain.Appointment
	locks        []string
	createErr    error
	getErr       error
}

func (r *memoryRepo) LockStaffDay(_ context.Context, staffID string, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks = append(r.locks, staffID+"|"+date.Format(domain.DateFormat))
	return nil
}

func (r *memoryRepo) GetActiveByStaffAndDate(_ context.Context, staffID string, date time.Time) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	var result []*domain.Appointment
	for _, a := range r.appointments {
		if a.StaffID == staffID && a.Date.Equal(date) && a.IsActive() {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memoryRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.appointments = append(r.appointments, a)
	return a, nil
}

// lockingTxManager сериализует транзакции, как это делает advisory-блокировка в Postgres
type lockingTxManager struct {
	mu sync.Mutex
}

func (m *lockingTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []uuid.UUID
	err     error
}

func (p *recordingPublisher) AppointmentCreated(_ context.Context, a *domain.Appointment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, a.ID)
	return p.err
}

type countingMetrics struct {
	mu        sync.Mutex
	created   int
	conflicts int
}

func (m *countingMetrics) AppointmentCreated() {
	m.mu.Lock()
	m.created++
	m.mu.Unlock()
}

func (m *countingMetrics) AppointmentConflict() {
	m.mu.Lock()
	m.conflicts++
	m.mu.Unlock()
}

type fixture struct {
	repo      *memoryRepo
	publisher *recordingPublisher
	metrics   *countingMetrics
	uc        *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		repo:      &memoryRepo{},
		publisher: &recordingPublisher{},
		metrics:   &countingMetrics{},
	}
	f.uc = NewUseCase(f.repo, &lockingTxManager{}, f.publisher, f.metrics, logger.NewNop())
	return f
}

var jan10 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func request(staffID, start, end string) *Request {
	return &Request{
		ClientID:  "C1",
		StaffID:   staffID,
		ServiceID: "SV1",
		Date:      jan10,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
	}
}

func TestExecute_Scenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, request("S1", "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, "scheduled", first.Status)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, []string{"S1|2024-01-10"}, f.repo.locks)

	_, err = f.uc.Execute(ctx, request("S1", "10:30", "11:30"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)

	_, err = f.uc.Execute(ctx, request("S1", "11:00", "12:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request("S2", "10:30", "11:30"))
	require.NoError(t, err)

	assert.Len(t, f.repo.appointments, 3)
	assert.Equal(t, 3, f.metrics.created)
	assert.Equal(t, 1, f.metrics.conflicts)
	assert.Len(t, f.publisher.created, 3)
}

func TestExecute_ContainingIsConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, request("S1", "10:15", "10:45"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request("S1", "10:00", "11:00"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)

	_, err = f.uc.Execute(ctx, request("S1", "10:20", "10:30"))
	require.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_CancelledDoesNotBlock(t *testing.T) {
	f := newFixture()
	f.repo.appointments = append(f.repo.appointments, &domain.Appointment{
		ID:        uuid.New(),
		StaffID:   "S1",
		Date:      jan10,
		StartTime: "10:00",
		EndTime:   "11:00",
		Status:    domain.StatusCancelled,
	})

	_, err := f.uc.Execute(context.Background(), request("S1", "10:00", "11:00"))
	require.NoError(t, err)
}

func TestExecute_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	f := newFixture()
	const n = 20

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), request("S1", "09:00", "10:00"))
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrSlotNotAvailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Len(t, f.repo.appointments, 1)
}

func TestExecute_Validation(t *testing.T) {
	tooLong := strings.Repeat("a", domain.MaxNotesLength+1)

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "missing client", mutate: func(r *Request) { r.ClientID = "" }},
		{name: "blank staff", mutate: func(r *Request) { r.StaffID = "  " }},
		{name: "missing service", mutate: func(r *Request) { r.ServiceID = "" }},
		{name: "missing date", mutate: func(r *Request) { r.Date = time.Time{} }},
		{name: "missing start", mutate: func(r *Request) { r.StartTime = "" }},
		{name: "malformed end", mutate: func(r *Request) { r.EndTime = "25:00" }},
		{name: "end at midnight", mutate: func(r *Request) { r.StartTime, r.EndTime = "23:00", "24:00" }},
		{name: "end equals start", mutate: func(r *Request) { r.EndTime = r.StartTime }},
		{name: "end before start", mutate: func(r *Request) { r.StartTime, r.EndTime = "12:00", "11:00" }},
		{name: "notes too long", mutate: func(r *Request) { r.Notes = &tooLong }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := request("S1", "10:00", "11:00")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, f.repo.locks)
			assert.Empty(t, f.repo.appointments)
		})
	}
}

func TestExecute_NotesStored(t *testing.T) {
	f := newFixture()
	notes := "первый визит"
	req := request("S1", "10:00", "11:00")
	req.Notes = &notes

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, notes, resp.Notes)
}

func TestExecute_RepositoryErrors(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		getErr    error
		want      error
	}{
		{
			name:      "exclusion constraint",
			createErr: fmt.Errorf("%w: Create - pq: conflicting key value", appointmentRepo.ErrOverlap),
			want:      ErrSlotNotAvailable,
		},
		{
			name:      "unknown reference",
			createErr: fmt.Errorf("%w: Create - pq: violates foreign key", appointmentRepo.ErrReferenceNotFound),
			want:      ErrInvalidInput,
		},
		{
			name:      "storage failure on insert",
			createErr: fmt.Errorf("%w: Create - connection reset", appointmentRepo.ErrExecQuery),
			want:      ErrInternal,
		},
		{
			name:   "storage failure on read",
			getErr: fmt.Errorf("%w: connection reset", appointmentRepo.ErrExecQuery),
			want:   ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.createErr = tt.createErr
			f.repo.getErr = tt.getErr

			_, err := f.uc.Execute(context.Background(), request("S1", "10:00", "11:00"))

			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.publisher.created)
			assert.Equal(t, 0, f.metrics.created)
		})
	}
}

func TestExecute_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("kafka unavailable")

	resp, err := f.uc.Execute(context.Background(), request("S1", "10:00", "11:00"))

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{resp.ID}, f.publisher.created)
}

func TestExecute_NilMetrics(t *testing.T) {
	uc := NewUseCase(&memoryRepo{}, &lockingTxManager{}, &recordingPublisher{}, nil, logger.NewNop())

	_, err := uc.Execute(context.Background(), request("S1", "10:00", "11:00"))

	require.NoError(t, err)
}
