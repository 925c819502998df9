package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/prospect-portal-api/internal/models"
	"github.com/noah-isme/prospect-portal-api/pkg/jobs"
)

const auditJobType = "audit.log"

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type auditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog)
}

// AuditService writes audit records through the background queue so a slow or failing
// audit table never fails the request that produced the record.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService registers the audit handler on queue. A nil queue writes inline.
func NewAuditService(repo auditRepository, queue *jobs.Queue, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{repo: repo, queue: queue, metrics: metrics, logger: logger}
	if queue != nil {
		queue.Register(auditJobType, svc.handle)
	}
	return svc
}

// Record schedules log for persistence. Errors are logged, never returned.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if s == nil || log == nil {
		return
	}
	if s.queue == nil {
		s.write(ctx, log)
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: auditJobType, Payload: log}); err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.String("action", log.Action), zap.Error(err))
		s.metrics.RecordAuditJob(err)
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		s.logger.Error("unexpected audit payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.write(ctx, log)
}

func (s *AuditService) write(ctx context.Context, log *models.AuditLog) error {
	err := s.repo.CreateAuditLog(ctx, log)
	s.metrics.RecordAuditJob(err)
	if err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", log.Action), zap.Error(err))
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func newAuditLog(actor *models.Actor, action, resource, resourceID string, oldValues, newValues interface{}) *models.AuditLog {
	log := &models.AuditLog{
		Action:   action,
		Resource: resource,
	}
	if actor != nil {
		userID := actor.UserID
		log.UserID = &userID
	}
	if resourceID != "" {
		log.ResourceID = &resourceID
	}
	if oldValues != nil {
		log.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		log.NewValues, _ = json.Marshal(newValues)
	}
	return log
}
