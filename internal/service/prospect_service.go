package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/prospect-portal-api/internal/dto"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	"github.com/noah-isme/prospect-portal-api/internal/repository"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
)

const prospectResource = "company_prospect"

type prospectRepository interface {
	Create(ctx context.Context, p *models.CompanyProspect) error
	GetByID(ctx context.Context, id string) (*models.CompanyProspect, error)
	List(ctx context.Context, filter models.ProspectFilter) ([]models.CompanyProspect, error)
	CountByStatus(ctx context.Context, filter models.ProspectFilter) (map[models.ProspectStatus]int, error)
	LatestApproved(ctx context.Context, submitterID string) (*models.CompanyProspect, error)
	UpdateStatus(ctx context.Context, params repository.UpdateStatusParams) error
	UpdateNotes(ctx context.Context, id, notes string) error
	UpdateDetails(ctx context.Context, p *models.CompanyProspect) error
}

// ProspectConfig tunes the lifecycle controller.
type ProspectConfig struct {
	// StrictReview makes Pending -> Approved/Rejected one-way.
	StrictReview bool
	DefaultLimit int
	MaxLimit     int
}

// ProspectService owns the prospect lifecycle: who may move a prospect between states and what
// each transition writes.
type ProspectService struct {
	repo      prospectRepository
	policy    *AccessPolicy
	validator *validator.Validate
	audit     auditRecorder
	feed      *ChangeFeed
	metrics   *MetricsService
	logger    *zap.Logger
	config    ProspectConfig
	now       func() time.Time
}

// NewProspectService constructs a ProspectService.
func NewProspectService(repo prospectRepository, policy *AccessPolicy, validate *validator.Validate, audit auditRecorder, feed *ChangeFeed, metrics *MetricsService, logger *zap.Logger, config ProspectConfig) *ProspectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if policy == nil {
		policy = DefaultAccessPolicy()
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = repository.DefaultProspectLimit
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = repository.MaxProspectLimit
	}
	return &ProspectService{
		repo:      repo,
		policy:    policy,
		validator: validate,
		audit:     audit,
		feed:      feed,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create records a new Pending prospect submitted by actor.
func (s *ProspectService) Create(ctx context.Context, actor *models.Actor, req dto.CreateProspectRequest) (*models.CompanyProspect, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to submit a prospect")
	}
	if !s.policy.Can(actor.Role, models.ActionCreateProspect) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role may not submit prospects")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prospect payload")
	}

	prospect := &models.CompanyProspect{
		SubmitterID:   actor.UserID,
		SubmitterName: actor.DisplayName(),
		ProspectDetails: models.ProspectDetails{
			CompanyName:  req.CompanyName,
			Website:      req.Website,
			Industry:     req.Industry,
			Headquarters: req.Headquarters,
			Employees:    req.Employees,
			FundingStage: req.FundingStage,
			Contacts:     append(models.Contacts(nil), req.Contacts...),
		},
		Notes:  req.Notes,
		Status: models.ProspectStatusPending,
	}
	now := s.now()
	prospect.CreatedAt = now
	prospect.DateTime = &now
	if err := s.repo.Create(ctx, prospect); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create prospect")
	}

	s.metrics.RecordTransition("", prospect.Status)
	s.recordAudit(ctx, actor, models.AuditActionProspectCreate, prospect.ID, nil, prospect)
	s.publish(prospect, ChangeCreated)
	s.logger.Info("prospect submitted", zap.String("prospect_id", prospect.ID), zap.String("submitter_id", actor.UserID))
	return prospect, nil
}

// SetStatus records a manager's review decision, stamping the caller as approver.
func (s *ProspectService) SetStatus(ctx context.Context, actor *models.Actor, id string, req dto.ReviewProspectRequest) (*models.CompanyProspect, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to review prospects")
	}
	if !s.policy.Can(actor.Role, models.ActionReviewProspect) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only managers can review prospects")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be Approved or Rejected")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	params := repository.UpdateStatusParams{
		ID:           current.ID,
		Status:       req.Status,
		ApproverID:   actor.UserID,
		ApproverName: actor.DisplayName(),
		ApprovedAt:   s.now(),
		Notes:        req.Notes,
	}
	if s.config.StrictReview {
		if previous != models.ProspectStatusPending {
			return nil, appErrors.Clone(appErrors.ErrConflict, "prospect has already been reviewed")
		}
		params.ExpectedStatus = models.ProspectStatusPending
	}

	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if s.config.StrictReview {
				return nil, appErrors.Clone(appErrors.ErrConflict, "prospect has already been reviewed")
			}
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prospect not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update prospect status")
	}

	before := *current
	current.Status = params.Status
	current.ApproverID = &params.ApproverID
	current.ApproverName = &params.ApproverName
	current.ApprovedAt = &params.ApprovedAt
	current.UpdatedAt = &params.ApprovedAt
	if req.Notes != nil {
		current.Notes = req.Notes
	}

	s.metrics.RecordTransition(previous, current.Status)
	s.recordAudit(ctx, actor, models.AuditActionProspectReview, current.ID, statusSnapshot(&before), statusSnapshot(current))
	s.publish(current, ChangeReviewed)
	s.logger.Info("prospect reviewed",
		zap.String("prospect_id", current.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(current.Status)),
		zap.String("approver_id", actor.UserID),
	)
	return current, nil
}

// SetNotes replaces the review notes. Status, approver fields and updatedAt are left untouched.
func (s *ProspectService) SetNotes(ctx context.Context, actor *models.Actor, id string, req dto.UpdateNotesRequest) (*models.CompanyProspect, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to edit notes")
	}
	if !s.policy.Can(actor.Role, models.ActionEditNotes) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only managers can edit notes")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notes payload")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateNotes(ctx, current.ID, req.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prospect not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notes")
	}

	oldNotes := current.Notes
	notes := req.Notes
	current.Notes = &notes

	s.recordAudit(ctx, actor, models.AuditActionProspectNotes, current.ID, map[string]*string{"notes": oldNotes}, map[string]*string{"notes": current.Notes})
	s.publish(current, ChangeNotes)
	return current, nil
}

// UpdateFullRecord overwrites every extended field, the notes and the status. Allowed for the submitter
// and for roles that may edit any prospect.
func (s *ProspectService) UpdateFullRecord(ctx context.Context, actor *models.Actor, id string, req dto.UpdateProspectRequest) (*models.CompanyProspect, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "sign in to update prospects")
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.SubmitterID != actor.UserID && !s.policy.Can(actor.Role, models.ActionEditAnyProspect) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the submitter, a manager or an admin can update this prospect")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prospect payload")
	}

	updated := *current
	updated.ProspectDetails = req.Details()
	updated.Status = req.Status
	updated.Notes = req.Notes
	if updated.Status == models.ProspectStatusPending {
		updated.ApproverID = nil
		updated.ApproverName = nil
		updated.ApprovedAt = nil
	}
	if req.DateTime != nil {
		dt := time.UnixMilli(*req.DateTime).UTC()
		updated.DateTime = &dt
	}
	now := s.now()
	updated.UpdatedAt = &now

	if err := s.repo.UpdateDetails(ctx, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prospect not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update prospect")
	}

	if updated.Status != current.Status {
		s.metrics.RecordTransition(current.Status, updated.Status)
	}
	s.recordAudit(ctx, actor, models.AuditActionProspectUpdate, updated.ID, current, &updated)
	s.publish(&updated, ChangeUpdated)
	return &updated, nil
}

// ListVisible returns the prospects actor may see. A nil actor gets a nil result, not an error.
func (s *ProspectService) ListVisible(ctx context.Context, actor *models.Actor, query dto.ProspectQuery) ([]models.CompanyProspect, error) {
	if actor == nil {
		return nil, nil
	}
	filter, ok, err := s.visibleFilter(actor, query)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.CompanyProspect{}, nil
	}
	prospects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list prospects")
	}
	return prospects, nil
}

// Get returns one prospect within the actor's visibility scope.
func (s *ProspectService) Get(ctx context.Context, actor *models.Actor, id string) (*models.CompanyProspect, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	prospect, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch s.policy.Scope(actor.Role) {
	case models.ListScopeAll:
		return prospect, nil
	case models.ListScopeOwn:
		if prospect.SubmitterID == actor.UserID {
			return prospect, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "prospect not found")
}

// LatestApproved returns the caller's oldest Approved submission, or nil when there is none.
func (s *ProspectService) LatestApproved(ctx context.Context, actor *models.Actor) (*models.CompanyProspect, error) {
	if actor == nil {
		return nil, nil
	}
	prospect, err := s.repo.LatestApproved(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved prospect")
	}
	return prospect, nil
}

// Summary counts visible prospects per status. A nil actor gets a nil result.
func (s *ProspectService) Summary(ctx context.Context, actor *models.Actor) (*models.ProspectSummary, error) {
	if actor == nil {
		return nil, nil
	}
	summary := &models.ProspectSummary{ByStatus: make(map[models.ProspectStatus]int, len(models.ProspectStatuses))}
	for _, status := range models.ProspectStatuses {
		summary.ByStatus[status] = 0
	}
	filter, ok, err := s.visibleFilter(actor, dto.ProspectQuery{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return summary, nil
	}
	counts, err := s.repo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise prospects")
	}
	for status, count := range counts {
		summary.ByStatus[status] = count
		summary.Total += count
	}
	return summary, nil
}

// visibleFilter applies the role's list scope. ok is false when the role may see nothing.
func (s *ProspectService) visibleFilter(actor *models.Actor, query dto.ProspectQuery) (models.ProspectFilter, bool, error) {
	if query.Status != "" && !query.Status.Valid() {
		return models.ProspectFilter{}, false, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	switch query.Sort {
	case "", models.ProspectSortCreatedAt, models.ProspectSortStatus, models.ProspectSortCompanyName:
	default:
		return models.ProspectFilter{}, false, appErrors.Clone(appErrors.ErrValidation, "unknown sort order")
	}

	def := s.config.DefaultLimit
	if query.All {
		def = s.config.MaxLimit
	}
	filter := models.ProspectFilter{
		Status: query.Status,
		Sort:   query.Sort,
		Limit:  repository.ClampLimit(query.Limit, def, s.config.MaxLimit),
	}

	switch s.policy.Scope(actor.Role) {
	case models.ListScopeAll:
		return filter, true, nil
	case models.ListScopeOwn:
		filter.SubmitterID = actor.UserID
		return filter, true, nil
	default:
		return filter, false, nil
	}
}

// load fetches a prospect, mapping malformed and unknown ids to NotFound.
func (s *ProspectService) load(ctx context.Context, id string) (*models.CompanyProspect, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "prospect not found")
	}
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prospect not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prospect")
	}
	return prospect, nil
}

func (s *ProspectService) publish(p *models.CompanyProspect, kind ChangeKind) {
	s.feed.Publish(ProspectChange{ID: p.ID, Kind: kind, Status: p.Status})
}

func (s *ProspectService) recordAudit(ctx context.Context, actor *models.Actor, action, resourceID string, oldValues, newValues interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, newAuditLog(actor, action, prospectResource, resourceID, oldValues, newValues))
}

type statusView struct {
	Status     models.ProspectStatus `json:"status"`
	ApproverID *string               `json:"approverId,omitempty"`
	Notes      *string               `json:"notes,omitempty"`
}

func statusSnapshot(p *models.CompanyProspect) statusView {
	return statusView{Status: p.Status, ApproverID: p.ApproverID, Notes: p.Notes}
}
