package leave

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-ems/internal/domain"
	"go-ems/internal/employee"
	"go-ems/internal/events"
	leaveerrors "go-ems/internal/leave/errors"
	"go-ems/internal/messaging/kafka"
	"go-ems/internal/rbac"
	"go-ems/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const aggregateType = "leave_request"

type Service interface {
	Submit(ctx context.Context, p domain.Principal, req CreateLeaveRequest) (LeaveResponse, error)
	ListAll(ctx context.Context, p domain.Principal, filter ListFilter) ([]LeaveResponse, error)
	GetByEmployee(ctx context.Context, p domain.Principal, employeeID string) ([]LeaveResponse, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id string, req UpdateStatusRequest) (LeaveResponse, error)
	Approve(ctx context.Context, p domain.Principal, id string, remarks *string) (LeaveResponse, error)
	Reject(ctx context.Context, p domain.Principal, id, remarks string) (LeaveResponse, error)
	Cancel(ctx context.Context, p domain.Principal, id string, remarks *string) (LeaveResponse, error)
	Balance(ctx context.Context, p domain.Principal, employeeID string, year int) (BalanceResponse, error)
}

// Recorder receives lifecycle counters. A nil Recorder is ignored.
type Recorder interface {
	LeaveSubmitted(leaveType string)
	LeaveTransitioned(from, to string)
}

type Options struct {
	// RejectOverlap refuses submissions sharing a day with the employee's
	// Pending or Approved leave.
	RejectOverlap bool
	Now           func() time.Time
	Recorder      Recorder
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafka.OutboxRepository
	directory employee.Directory
	authz     rbac.Service
	opts      Options
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	directory employee.Directory,
	authz rbac.Service,
	opts Options,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, nil, directory, authz, opts, logger...)
}

// NewServiceWithOutbox also records a lifecycle event for every submission and
// transition, inside the same transaction as the leave write.
func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	directory employee.Directory,
	authz rbac.Service,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outbox,
		directory: directory,
		authz:     authz,
		opts:      opts,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, p domain.Principal, req CreateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("submit leave requested",
		zap.String("actor_id", p.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if p.IsZero() {
		return LeaveResponse{}, leaveerrors.ErrPrincipalRequired
	}

	v, err := validateCreateRequest(req)
	if err != nil {
		log.Warn("submit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if v.employeeID != p.EmployeeID {
		allowed, err := rbac.Can(s.authz, p, rbac.ResourceLeave, rbac.ActionSubmitAny)
		if err != nil {
			return LeaveResponse{}, err
		}
		if !allowed {
			return LeaveResponse{}, leaveerrors.ErrSubmitForOtherForbidden
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if s.opts.RejectOverlap {
		overlap, err := qtx.HasOverlappingPeriod(ctx, v.employeeID, v.startDate, v.endDate)
		if err != nil {
			log.Error("submit leave overlap check failed", zap.Error(err))
			return LeaveResponse{}, err
		}
		if overlap {
			log.Warn("submit leave overlap detected",
				zap.String("employee_id", v.employeeID),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
			)
			return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
		}
	}

	now := s.opts.Now().UTC()
	l := &Leave{
		ID:          uuid.New(),
		EmployeeID:  v.employeeID,
		LeaveType:   v.leaveType,
		StartDate:   v.startDate,
		EndDate:     v.endDate,
		Reason:      v.reason,
		Status:      StatusPending,
		AppliedDate: now,
		UpdatedAt:   now,
	}

	if err := qtx.Create(ctx, l); err != nil {
		log.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.recordEvent(ctx, tx, *l, "", p.EmployeeID, now); err != nil {
		log.Error("submit leave outbox write failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if s.opts.Recorder != nil {
		s.opts.Recorder.LeaveSubmitted(l.LeaveType)
	}
	log.Info("submit leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", l.EmployeeID),
		zap.Int("total_days", DayCount(l.StartDate, l.EndDate)),
	)

	return s.enrichOne(ctx, *l), nil
}

func (s *service) ListAll(ctx context.Context, p domain.Principal, filter ListFilter) ([]LeaveResponse, error) {
	if p.IsZero() {
		return nil, leaveerrors.ErrPrincipalRequired
	}

	filter.EmployeeID = strings.TrimSpace(filter.EmployeeID)
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, leaveerrors.ErrInvalidStatus
	}

	canReadAll, err := rbac.Can(s.authz, p, rbac.ResourceLeave, rbac.ActionReadAll)
	if err != nil {
		return nil, err
	}
	if !canReadAll {
		// Without read_all the list is scoped to the caller's own requests.
		if filter.EmployeeID != "" && filter.EmployeeID != p.EmployeeID {
			return nil, leaveerrors.ErrReadForbidden
		}
		filter.EmployeeID = p.EmployeeID
	}

	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list leaves failed", zap.Error(err))
		return nil, err
	}
	return s.enrich(ctx, leaves), nil
}

func (s *service) GetByEmployee(ctx context.Context, p domain.Principal, employeeID string) ([]LeaveResponse, error) {
	employeeID = strings.TrimSpace(employeeID)
	if err := s.authorizeRead(p, employeeID); err != nil {
		return nil, err
	}

	leaves, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("list employee leaves failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}
	return s.enrich(ctx, leaves), nil
}

func (s *service) UpdateStatus(ctx context.Context, p domain.Principal, id string, req UpdateStatusRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("update leave status requested",
		zap.String("leave_id", id),
		zap.String("actor_id", p.EmployeeID),
		zap.String("status", req.Status),
	)

	if p.IsZero() {
		return LeaveResponse{}, leaveerrors.ErrPrincipalRequired
	}
	if !IsValidStatus(req.Status) {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	remarks := optionalText(req.Remarks)
	if req.Status == StatusRejected && remarks == nil {
		log.Warn("reject leave without remarks", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrRemarksRequired
	}

	canApprove, err := rbac.Can(s.authz, p, rbac.ResourceLeave, rbac.ActionApprove)
	if err != nil {
		return LeaveResponse{}, err
	}
	if requiresApproval(req.Status) {
		if !canApprove {
			log.Warn("leave decision without approval capability",
				zap.String("leave_id", id),
				zap.String("actor_id", p.EmployeeID),
				zap.String("role", p.NormalizedRole()),
			)
			return LeaveResponse{}, leaveerrors.ErrApprovalCapabilityRequired
		}
		if by := optionalText(req.ApprovedBy); by != nil && *by != p.EmployeeID {
			return LeaveResponse{}, leaveerrors.ErrApprovedByMismatch
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	current, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	if req.Status == StatusCancelled && !canApprove && current.EmployeeID != p.EmployeeID {
		return LeaveResponse{}, leaveerrors.ErrCancelForbidden
	}

	if !isAllowedStatusTransition(current.Status, req.Status) {
		log.Warn("invalid leave status transition",
			zap.String("leave_id", id),
			zap.String("from", current.Status),
			zap.String("to", req.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	now := s.opts.Now().UTC()
	change := StatusChange{
		Status:     req.Status,
		ApprovedBy: current.ApprovedBy,
		Remarks:    remarks,
		DecidedAt:  now,
	}
	if requiresApproval(req.Status) {
		actor := p.EmployeeID
		change.ApprovedBy = &actor
	}

	updated, err := qtx.UpdateStatus(ctx, id, current.Status, change)
	if err != nil {
		log.Error("update leave status persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !updated {
		// Another decision landed between the read and the write.
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	fromStatus := current.Status
	current.Status = change.Status
	current.ApprovedBy = change.ApprovedBy
	current.Remarks = change.Remarks
	current.DecidedAt = &now
	current.UpdatedAt = now

	if err := s.recordEvent(ctx, tx, *current, fromStatus, p.EmployeeID, now); err != nil {
		log.Error("update leave status outbox write failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("update leave status commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if s.opts.Recorder != nil {
		s.opts.Recorder.LeaveTransitioned(fromStatus, change.Status)
	}
	log.Info("update leave status success",
		zap.String("leave_id", id),
		zap.String("from", fromStatus),
		zap.String("to", change.Status),
		zap.String("actor_id", p.EmployeeID),
	)

	return s.enrichOne(ctx, *current), nil
}

func (s *service) Approve(ctx context.Context, p domain.Principal, id string, remarks *string) (LeaveResponse, error) {
	return s.UpdateStatus(ctx, p, id, UpdateStatusRequest{Status: StatusApproved, Remarks: remarks})
}

func (s *service) Reject(ctx context.Context, p domain.Principal, id, remarks string) (LeaveResponse, error) {
	return s.UpdateStatus(ctx, p, id, UpdateStatusRequest{Status: StatusRejected, Remarks: &remarks})
}

func (s *service) Cancel(ctx context.Context, p domain.Principal, id string, remarks *string) (LeaveResponse, error) {
	return s.UpdateStatus(ctx, p, id, UpdateStatusRequest{Status: StatusCancelled, Remarks: remarks})
}

func (s *service) Balance(ctx context.Context, p domain.Principal, employeeID string, year int) (BalanceResponse, error) {
	employeeID = strings.TrimSpace(employeeID)
	if err := s.authorizeRead(p, employeeID); err != nil {
		return BalanceResponse{}, err
	}

	if year == 0 {
		year = s.opts.Now().UTC().Year()
	}
	if year < 1970 || year > 9999 {
		return BalanceResponse{}, leaveerrors.ErrInvalidYear
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	records, err := s.repo.FindByEmployeeStartingBetween(ctx, employeeID, from, from.AddDate(1, 0, 0))
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("leave balance read failed",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Error(err),
		)
		return BalanceResponse{}, err
	}

	b := CalculateBalance(records, year)
	return BalanceResponse{
		EmployeeID:     employeeID,
		Employee:       s.resolve(ctx, []string{employeeID})[employeeID],
		Year:           b.Year,
		Entitlement:    b.Entitlement,
		UsedDays:       b.UsedDays,
		Available:      b.Available,
		PendingCount:   b.PendingCount,
		ApprovedCount:  b.ApprovedCount,
		RejectedCount:  b.RejectedCount,
		CancelledCount: b.CancelledCount,
	}, nil
}

// authorizeRead allows callers to read their own leave, and read_all holders
// to read anyone's.
func (s *service) authorizeRead(p domain.Principal, employeeID string) error {
	if p.IsZero() {
		return leaveerrors.ErrPrincipalRequired
	}
	if employeeID == "" {
		return leaveerrors.ErrEmployeeRequired
	}
	if employeeID == p.EmployeeID {
		return nil
	}
	allowed, err := rbac.Can(s.authz, p, rbac.ResourceLeave, rbac.ActionReadAll)
	if err != nil {
		return err
	}
	if !allowed {
		return leaveerrors.ErrReadForbidden
	}
	return nil
}

func (s *service) recordEvent(ctx context.Context, tx *sql.Tx, l Leave, fromStatus, actorID string, at time.Time) error {
	if s.outbox == nil {
		return nil
	}

	requestID := contextutil.GetRequestID(ctx)
	payload := events.LeaveLifecycleEvent{
		EventType:  events.LeaveEventTypeFor(l.Status),
		RequestID:  requestID,
		LeaveID:    l.ID.String(),
		EmployeeID: l.EmployeeID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format(dateLayout),
		EndDate:    l.EndDate.Format(dateLayout),
		TotalDays:  DayCount(l.StartDate, l.EndDate),
		FromStatus: fromStatus,
		ToStatus:   l.Status,
		ActorID:    actorID,
		OccurredAt: at,
	}
	if l.Remarks != nil {
		payload.Remarks = *l.Remarks
	}

	event, err := kafka.NewOutboxEvent(
		requestID,
		aggregateType,
		l.ID.String(),
		payload.EventType,
		events.LeaveLifecycleTopic,
		payload,
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func (s *service) enrichOne(ctx context.Context, l Leave) LeaveResponse {
	return s.enrich(ctx, []Leave{l})[0]
}

func (s *service) enrich(ctx context.Context, leaves []Leave) []LeaveResponse {
	ids := make([]string, 0, len(leaves))
	for _, l := range leaves {
		ids = append(ids, l.EmployeeID)
	}
	summaries := s.resolve(ctx, ids)

	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l, summaries[l.EmployeeID]))
	}
	return out
}

// resolve never fails: ids the directory cannot resolve get a placeholder.
func (s *service) resolve(ctx context.Context, ids []string) map[string]employee.Summary {
	var found map[string]employee.Summary
	if s.directory != nil && len(ids) > 0 {
		var err error
		found, err = s.directory.Resolve(ctx, ids)
		if err != nil {
			contextutil.GetLogger(ctx, s.logger).Warn("employee directory unavailable, using placeholders",
				zap.Int("ids", len(ids)),
				zap.Error(err),
			)
		}
	}

	out := make(map[string]employee.Summary, len(ids))
	for _, id := range ids {
		if summary, ok := found[id]; ok {
			out[id] = summary
			continue
		}
		out[id] = employee.Placeholder(id)
	}
	return out
}

func mapToResponse(l Leave, summary employee.Summary) LeaveResponse {
	resp := LeaveResponse{
		ID:          l.ID.String(),
		EmployeeID:  l.EmployeeID,
		Employee:    summary,
		LeaveType:   l.LeaveType,
		StartDate:   l.StartDate.Format(dateLayout),
		EndDate:     l.EndDate.Format(dateLayout),
		TotalDays:   DayCount(l.StartDate, l.EndDate),
		Reason:      l.Reason,
		Status:      l.Status,
		AppliedDate: l.AppliedDate.UTC().Format(time.RFC3339),
		ApprovedBy:  l.ApprovedBy,
		Remarks:     l.Remarks,
	}
	if l.DecidedAt != nil {
		decided := l.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}
