package leave_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go-ems/internal/domain"
	"go-ems/internal/employee"
	"go-ems/internal/events"
	"go-ems/internal/leave"
	leaveerrors "go-ems/internal/leave/errors"
	"go-ems/internal/messaging/kafka"
	"go-ems/internal/rbac"
	"go-ems/internal/rbac/infra"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLeaveRepository keeps leaves in a map. The *Err fields force failures.
type memoryLeaveRepository struct {
	mu      sync.Mutex
	records map[string]leave.Leave

	createErr   error
	findAllErr  error
	overlap     bool
	loseRace    bool
	lastFilter  leave.ListFilter
	updateCalls int
}

func newMemoryLeaveRepository(seed ...leave.Leave) *memoryLeaveRepository {
	r := &memoryLeaveRepository{records: map[string]leave.Leave{}}
	for _, l := range seed {
		r.records[l.ID.String()] = l
	}
	return r
}

func (r *memoryLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	return r
}

func (r *memoryLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[l.ID.String()] = *l
	return nil
}

func (r *memoryLeaveRepository) FindAll(ctx context.Context, filter leave.ListFilter) ([]leave.Leave, error) {
	if r.findAllErr != nil {
		return nil, r.findAllErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []leave.Leave
	for _, l := range r.records {
		if filter.EmployeeID != "" && l.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedDate.After(out[j].AppliedDate) })
	return out, nil
}

func (r *memoryLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	out, err := r.FindAll(ctx, leave.ListFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *memoryLeaveRepository) FindByEmployeeStartingBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Leave, error) {
	all, err := r.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	var out []leave.Leave
	for _, l := range all {
		if !l.StartDate.Before(from) && l.StartDate.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memoryLeaveRepository) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.records[id]
	if !ok {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	return &l, nil
}

func (r *memoryLeaveRepository) UpdateStatus(ctx context.Context, id, fromStatus string, change leave.StatusChange) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.loseRace {
		return false, nil
	}
	l, ok := r.records[id]
	if !ok || l.Status != fromStatus {
		return false, nil
	}
	decided := change.DecidedAt
	l.Status = change.Status
	l.ApprovedBy = change.ApprovedBy
	l.Remarks = change.Remarks
	l.DecidedAt = &decided
	r.records[id] = l
	return true, nil
}

func (r *memoryLeaveRepository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	return r.overlap, nil
}

func (r *memoryLeaveRepository) get(id string) leave.Leave {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id]
}

type fakeDirectory struct {
	summaries map[string]employee.Summary
	err       error
}

func (d *fakeDirectory) Resolve(ctx context.Context, ids []string) (map[string]employee.Summary, error) {
	out := map[string]employee.Summary{}
	for _, id := range ids {
		if s, ok := d.summaries[id]; ok {
			out[id] = s
		}
	}
	return out, d.err
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type countingRecorder struct {
	submitted   []string
	transitions []string
}

func (c *countingRecorder) LeaveSubmitted(leaveType string) {
	c.submitted = append(c.submitted, leaveType)
}

func (c *countingRecorder) LeaveTransitioned(from, to string) {
	c.transitions = append(c.transitions, from+"->"+to)
}

var (
	fixedNow = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)

	employeeE1 = domain.Principal{UserID: "U1", EmployeeID: "E1", Role: domain.RoleEmployee}
	employeeE2 = domain.Principal{UserID: "U2", EmployeeID: "E2", Role: domain.RoleEmployee}
	managerM1  = domain.Principal{UserID: "U3", EmployeeID: "M1", Role: domain.RoleManager}
	hrH1       = domain.Principal{UserID: "U4", EmployeeID: "H1", Role: "HR"}
)

type leaveServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   leave.Service
	repo      *memoryLeaveRepository
	directory *fakeDirectory
	outbox    *fakeOutbox
	recorder  *countingRecorder
}

func setupLeaveServiceTest(t *testing.T, opts leave.Options, seed ...leave.Leave) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	enforcer, err := infra.NewEnforcer("")
	require.NoError(t, err)
	authz, err := rbac.NewService(enforcer)
	require.NoError(t, err)

	deps := &leaveServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      newMemoryLeaveRepository(seed...),
		directory: &fakeDirectory{summaries: map[string]employee.Summary{}},
		outbox:    &fakeOutbox{},
		recorder:  &countingRecorder{},
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	opts.Recorder = deps.recorder
	deps.service = leave.NewServiceWithOutbox(db, deps.repo, deps.outbox, deps.directory, authz, opts)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingLeave(employeeID, start, end string) leave.Leave {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return leave.Leave{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		LeaveType:   leave.TypeCasual,
		StartDate:   s,
		EndDate:     e,
		Reason:      "Family event",
		Status:      leave.StatusPending,
		AppliedDate: fixedNow.Add(-24 * time.Hour),
	}
}

func strPtr(s string) *string { return &s }

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()
	validReq := leave.CreateLeaveRequest{
		EmployeeID: "E1",
		LeaveType:  leave.TypeCasual,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-12",
		Reason:     "Family event",
	}

	t.Run("success creates a pending record", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		expectTx(t, deps.sqlMock, true)

		got, err := deps.service.Submit(ctx, employeeE1, validReq)
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.Equal(t, leave.StatusPending, got.Status)
		assert.Equal(t, "E1", got.EmployeeID)
		assert.Equal(t, 3, got.TotalDays)
		assert.Equal(t, "2024-06-10", got.StartDate)
		assert.Equal(t, fixedNow.Format(time.RFC3339), got.AppliedDate)
		assert.Nil(t, got.ApprovedBy)
		assert.Equal(t, "Employee E1", got.Employee.Name)
		assert.False(t, got.Employee.Resolved)

		require.Len(t, deps.outbox.events, 1)
		assert.Equal(t, events.LeaveSubmitted, deps.outbox.events[0].EventType)
		assert.Equal(t, events.LeaveLifecycleTopic, deps.outbox.events[0].Topic)
		assert.Equal(t, []string{leave.TypeCasual}, deps.recorder.submitted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("attaches resolved employee summary", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		deps.directory.summaries["E1"] = employee.Summary{ID: "E1", Name: "Ada Lovelace", Department: "Engineering", Resolved: true}
		expectTx(t, deps.sqlMock, true)

		got, err := deps.service.Submit(ctx, employeeE1, validReq)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", got.Employee.Name)
		assert.True(t, got.Employee.Resolved)
	})

	validationCases := []struct {
		name    string
		mutate  func(r *leave.CreateLeaveRequest)
		wantErr error
	}{
		{"start after end", func(r *leave.CreateLeaveRequest) { r.StartDate, r.EndDate = "2024-06-12", "2024-06-10" }, leaveerrors.ErrInvalidDateRange},
		{"blank reason", func(r *leave.CreateLeaveRequest) { r.Reason = "   " }, leaveerrors.ErrReasonRequired},
		{"missing employee", func(r *leave.CreateLeaveRequest) { r.EmployeeID = "" }, leaveerrors.ErrEmployeeRequired},
		{"employee id longer than the column", func(r *leave.CreateLeaveRequest) {
			r.EmployeeID = strings.Repeat("E", leave.MaxEmployeeIDLen+1)
		}, leaveerrors.ErrEmployeeIDTooLong},
		{"unknown leave type", func(r *leave.CreateLeaveRequest) { r.LeaveType = "Vacation" }, leaveerrors.ErrInvalidLeaveType},
		{"bad date", func(r *leave.CreateLeaveRequest) { r.StartDate = "10/06/2024" }, leaveerrors.ErrInvalidDateFormat},
	}
	for _, tc := range validationCases {
		t.Run(tc.name+" is rejected before persistence", func(t *testing.T) {
			deps := setupLeaveServiceTest(t, leave.Options{})
			req := validReq
			tc.mutate(&req)

			_, err := deps.service.Submit(ctx, employeeE1, req)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, deps.repo.records)
			assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		})
	}

	t.Run("employee cannot submit for someone else", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		_, err := deps.service.Submit(ctx, employeeE2, validReq)
		assert.ErrorIs(t, err, leaveerrors.ErrSubmitForOtherForbidden)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("hr can submit on behalf of an employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		expectTx(t, deps.sqlMock, true)

		got, err := deps.service.Submit(ctx, hrH1, validReq)
		require.NoError(t, err)
		assert.Equal(t, "E1", got.EmployeeID)
	})

	t.Run("missing principal", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		_, err := deps.service.Submit(ctx, domain.Principal{}, validReq)
		assert.ErrorIs(t, err, leaveerrors.ErrPrincipalRequired)
	})

	t.Run("overlap is rejected when enabled", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{RejectOverlap: true})
		deps.repo.overlap = true
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Submit(ctx, employeeE1, validReq)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.Empty(t, deps.outbox.events)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("overlap is ignored by default", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		deps.repo.overlap = true
		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Submit(ctx, employeeE1, validReq)
		assert.NoError(t, err)
	})

	t.Run("persistence failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		deps.repo.createErr = errors.New("connection reset")
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Submit(ctx, employeeE1, validReq)
		assert.EqualError(t, err, "connection reset")
		assert.Empty(t, deps.outbox.events)
		assert.Empty(t, deps.recorder.submitted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("manager approves and balance drops by the day count", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		before, err := deps.service.Balance(ctx, employeeE1, "E1", 2024)
		require.NoError(t, err)

		expectTx(t, deps.sqlMock, true)
		got, err := deps.service.UpdateStatus(ctx, managerM1, l.ID.String(), leave.UpdateStatusRequest{
			Status:  leave.StatusApproved,
			Remarks: strPtr("Approved by manager"),
		})
		require.NoError(t, err)

		assert.Equal(t, leave.StatusApproved, got.Status)
		require.NotNil(t, got.ApprovedBy)
		assert.Equal(t, "M1", *got.ApprovedBy)
		require.NotNil(t, got.Remarks)
		assert.Equal(t, "Approved by manager", *got.Remarks)
		assert.NotNil(t, got.DecidedAt)

		after, err := deps.service.Balance(ctx, employeeE1, "E1", 2024)
		require.NoError(t, err)
		assert.Equal(t, before.Available-3, after.Available)
		assert.Equal(t, 1, after.ApprovedCount)
		assert.Equal(t, 0, after.PendingCount)

		require.Len(t, deps.outbox.events, 1)
		var payload events.LeaveLifecycleEvent
		require.NoError(t, json.Unmarshal(deps.outbox.events[0].Payload, &payload))
		assert.Equal(t, events.LeaveApproved, payload.EventType)
		assert.Equal(t, leave.StatusPending, payload.FromStatus)
		assert.Equal(t, "M1", payload.ActorID)
		assert.Equal(t, []string{"Pending->Approved"}, deps.recorder.transitions)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("second approve leaves the record unchanged", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		expectTx(t, deps.sqlMock, true)
		first, err := deps.service.Approve(ctx, managerM1, l.ID.String(), nil)
		require.NoError(t, err)

		expectTx(t, deps.sqlMock, false)
		_, err = deps.service.Approve(ctx, hrH1, l.ID.String(), strPtr("again"))
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)

		stored := deps.repo.get(l.ID.String())
		assert.Equal(t, leave.StatusApproved, stored.Status)
		assert.Equal(t, first.ApprovedBy, stored.ApprovedBy)
		assert.Nil(t, stored.Remarks)
		assert.Equal(t, 1, deps.repo.updateCalls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject without remarks fails before persistence", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		_, err := deps.service.UpdateStatus(ctx, managerM1, l.ID.String(), leave.UpdateStatusRequest{
			Status:  leave.StatusRejected,
			Remarks: strPtr("  "),
		})
		assert.ErrorIs(t, err, leaveerrors.ErrRemarksRequired)
		assert.Equal(t, leave.StatusPending, deps.repo.get(l.ID.String()).Status)
		assert.Zero(t, deps.repo.updateCalls)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reject with remarks", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)
		expectTx(t, deps.sqlMock, true)

		got, err := deps.service.Reject(ctx, managerM1, l.ID.String(), "Team at capacity")
		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, got.Status)
		assert.Equal(t, "M1", *got.ApprovedBy)
		assert.Equal(t, "Team at capacity", *got.Remarks)
	})

	t.Run("employee cannot approve", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		_, err := deps.service.Approve(ctx, employeeE1, l.ID.String(), nil)
		assert.ErrorIs(t, err, leaveerrors.ErrApprovalCapabilityRequired)
		assert.Equal(t, leave.StatusPending, deps.repo.get(l.ID.String()).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("approvedBy must match the approver", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		_, err := deps.service.UpdateStatus(ctx, managerM1, l.ID.String(), leave.UpdateStatusRequest{
			Status:     leave.StatusApproved,
			ApprovedBy: strPtr("SOMEONE-ELSE"),
		})
		assert.ErrorIs(t, err, leaveerrors.ErrApprovedByMismatch)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, managerM1, uuid.NewString(), nil)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed id is not found without touching the store", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		_, err := deps.service.Approve(ctx, managerM1, "not-a-uuid", nil)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("owner cancels own request", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)
		expectTx(t, deps.sqlMock, true)

		got, err := deps.service.Cancel(ctx, employeeE1, l.ID.String(), strPtr("Plans changed"))
		require.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, got.Status)
		assert.Nil(t, got.ApprovedBy)
		assert.Equal(t, "Plans changed", *got.Remarks)
	})

	t.Run("another employee cannot cancel", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Cancel(ctx, employeeE2, l.ID.String(), nil)
		assert.ErrorIs(t, err, leaveerrors.ErrCancelForbidden)
		assert.Equal(t, leave.StatusPending, deps.repo.get(l.ID.String()).Status)
	})

	t.Run("moving back to pending is invalid", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.UpdateStatus(ctx, managerM1, l.ID.String(), leave.UpdateStatusRequest{Status: leave.StatusPending})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
	})

	t.Run("concurrent decision wins the row", func(t *testing.T) {
		l := pendingLeave("E1", "2024-06-10", "2024-06-12")
		deps := setupLeaveServiceTest(t, leave.Options{}, l)
		deps.repo.loseRace = true
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Approve(ctx, managerM1, l.ID.String(), nil)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.outbox.events)
		assert.Empty(t, deps.recorder.transitions)
	})

	t.Run("unknown status", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		_, err := deps.service.UpdateStatus(ctx, managerM1, uuid.NewString(), leave.UpdateStatusRequest{Status: "Archived"})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatus)
	})
}

func TestLeaveService_ListAll(t *testing.T) {
	ctx := context.Background()

	older := pendingLeave("E1", "2024-06-10", "2024-06-12")
	newer := pendingLeave("E2", "2024-07-01", "2024-07-01")
	newer.AppliedDate = fixedNow

	t.Run("approver sees every record newest first", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, older, newer)

		got, err := deps.service.ListAll(ctx, managerM1, leave.ListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID.String(), got[0].ID)
		assert.Equal(t, older.ID.String(), got[1].ID)
	})

	t.Run("directory failure still returns every record with placeholders", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, older, newer)
		deps.directory.err = errors.New("directory down")

		got, err := deps.service.ListAll(ctx, managerM1, leave.ListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Employee E2", got[0].Employee.Name)
		assert.Equal(t, "Employee E1", got[1].Employee.Name)
	})

	t.Run("employee list is scoped to self", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, older, newer)

		got, err := deps.service.ListAll(ctx, employeeE1, leave.ListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "E1", got[0].EmployeeID)
		assert.Equal(t, "E1", deps.repo.lastFilter.EmployeeID)
	})

	t.Run("employee cannot filter on someone else", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, older, newer)

		_, err := deps.service.ListAll(ctx, employeeE1, leave.ListFilter{EmployeeID: "E2"})
		assert.ErrorIs(t, err, leaveerrors.ErrReadForbidden)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})
		deps.repo.findAllErr = errors.New("store unavailable")

		_, err := deps.service.ListAll(ctx, managerM1, leave.ListFilter{})
		assert.EqualError(t, err, "store unavailable")
	})
}

func TestLeaveService_GetByEmployee(t *testing.T) {
	ctx := context.Background()
	l := pendingLeave("E1", "2024-06-10", "2024-06-12")

	t.Run("own records", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		got, err := deps.service.GetByEmployee(ctx, employeeE1, "E1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].TotalDays)
	})

	t.Run("other employee is forbidden", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		_, err := deps.service.GetByEmployee(ctx, employeeE2, "E1")
		assert.ErrorIs(t, err, leaveerrors.ErrReadForbidden)
	})

	t.Run("manager reads anyone", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{}, l)

		got, err := deps.service.GetByEmployee(ctx, managerM1, "E1")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("newest start date first", func(t *testing.T) {
		early := pendingLeave("E1", "2024-03-04", "2024-03-05")
		early.AppliedDate = fixedNow.Add(-time.Hour)
		late := pendingLeave("E1", "2024-09-02", "2024-09-03")
		late.AppliedDate = fixedNow.Add(-48 * time.Hour)
		deps := setupLeaveServiceTest(t, leave.Options{}, early, late)

		got, err := deps.service.GetByEmployee(ctx, employeeE1, "E1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-09-02", got[0].StartDate)
		assert.Equal(t, "2024-03-04", got[1].StartDate)
	})
}

func TestLeaveService_Balance(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the current year", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		got, err := deps.service.Balance(ctx, employeeE1, "E1", 0)
		require.NoError(t, err)
		assert.Equal(t, 2024, got.Year)
		assert.Equal(t, leave.AnnualEntitlement, got.Available)
		assert.Equal(t, "Employee E1", got.Employee.Name)
	})

	t.Run("ignores leave starting in other years", func(t *testing.T) {
		approved := pendingLeave("E1", "2023-12-30", "2024-01-02")
		approved.Status = leave.StatusApproved
		deps := setupLeaveServiceTest(t, leave.Options{}, approved)

		got, err := deps.service.Balance(ctx, employeeE1, "E1", 2024)
		require.NoError(t, err)
		assert.Equal(t, 21, got.Available)
		assert.Zero(t, got.ApprovedCount)
	})

	t.Run("rejects out of range year", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		_, err := deps.service.Balance(ctx, employeeE1, "E1", 12)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidYear)
	})

	t.Run("other employee is forbidden", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, leave.Options{})

		_, err := deps.service.Balance(ctx, employeeE2, "E1", 2024)
		assert.ErrorIs(t, err, leaveerrors.ErrReadForbidden)
	})
}
