package consumer

import (
	"context"
	"encoding/json"

	"go-ems/internal/bootstrap"
	"go-ems/internal/events"
	"go-ems/internal/shared/contextutil"

	"go.uber.org/zap"
)

// ConsumeLeaveLifecycle records one audit entry per leave lifecycle event.
// Undecodable messages are committed and skipped.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.LeaveLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave lifecycle event failed",
				zap.String("event_type", header(msg, "event_type")),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := contextutil.WithRequestID(ctx, event.RequestID)
		audit.Log(msgCtx, bootstrap.AuditLog{
			Action:  event.EventType,
			Message: "leave " + event.LeaveID + " moved to " + event.ToStatus,
			ActorID: event.ActorID,
			Meta: map[string]any{
				"leave_id":    event.LeaveID,
				"employee_id": event.EmployeeID,
				"leave_type":  event.LeaveType,
				"from_status": event.FromStatus,
				"to_status":   event.ToStatus,
				"start_date":  event.StartDate,
				"end_date":    event.EndDate,
				"total_days":  event.TotalDays,
				"remarks":     event.Remarks,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
			continue
		}
	}
}
