package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/prospect-portal-api/internal/models"
)

const prospectsTable = "company_prospects"

// DefaultProspectLimit and MaxProspectLimit bound list queries.
const (
	DefaultProspectLimit = 50
	MaxProspectLimit     = 10000
)

var prospectColumns = []string{
	"id", "submitter_id", "submitter_name",
	"company_name", "website", "linkedin", "country", "headquarters", "company_type",
	"industry", "end_product", "employees", "ceo_name", "ceo_linkedin", "ceo_email",
	"phone_number", "funding_stage", "rd_locations", "potential_needs", "contacts",
	"notes", "status", "approver_id", "approver_name", "approved_at",
	"date_time", "created_at", "updated_at",
}

// ProspectRepository persists company prospects. Each write is a single UPDATE/INSERT
// statement so concurrent reviewers never interleave partial field writes.
type ProspectRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

// NewProspectRepository constructs the repository.
func NewProspectRepository(db *sqlx.DB) *ProspectRepository {
	return &ProspectRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts a new prospect, filling id, status and createdAt when unset.
func (r *ProspectRepository) Create(ctx context.Context, p *models.CompanyProspect) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.ProspectStatusPending
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	d := p.ProspectDetails
	query, args, err := r.builder.Insert(prospectsTable).
		Columns(prospectColumns...).
		Values(
			p.ID, p.SubmitterID, p.SubmitterName,
			d.CompanyName, d.Website, d.LinkedIn, d.Country, d.Headquarters, d.CompanyType,
			d.Industry, d.EndProduct, d.Employees, d.CEOName, d.CEOLinkedIn, d.CEOEmail,
			d.PhoneNumber, d.FundingStage, d.RDLocations, d.PotentialNeeds, d.Contacts,
			p.Notes, p.Status, p.ApproverID, p.ApproverName, p.ApprovedAt,
			p.DateTime, p.CreatedAt, p.UpdatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("build insert prospect: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create prospect: %w", err)
	}
	return nil
}

// GetByID fetches a prospect. Returns sql.ErrNoRows when absent.
func (r *ProspectRepository) GetByID(ctx context.Context, id string) (*models.CompanyProspect, error) {
	query, args, err := r.builder.Select(prospectColumns...).
		From(prospectsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get prospect: %w", err)
	}
	var p models.CompanyProspect
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns prospects matching the filter, newest first unless another index is requested.
func (r *ProspectRepository) List(ctx context.Context, filter models.ProspectFilter) ([]models.CompanyProspect, error) {
	stmt := applyProspectFilter(r.builder.Select(prospectColumns...).From(prospectsTable), filter)

	switch filter.Sort {
	case models.ProspectSortStatus:
		stmt = stmt.OrderBy("status ASC", "created_at DESC")
	case models.ProspectSortCompanyName:
		stmt = stmt.OrderBy("company_name ASC", "created_at DESC")
	default:
		stmt = stmt.OrderBy("created_at DESC")
	}
	stmt = stmt.Limit(uint64(ClampLimit(filter.Limit, DefaultProspectLimit, MaxProspectLimit)))

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list prospects: %w", err)
	}
	prospects := make([]models.CompanyProspect, 0)
	if err := r.db.SelectContext(ctx, &prospects, query, args...); err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	return prospects, nil
}

// CountByStatus aggregates prospects per status.
func (r *ProspectRepository) CountByStatus(ctx context.Context, filter models.ProspectFilter) (map[models.ProspectStatus]int, error) {
	stmt := applyProspectFilter(r.builder.Select("status", "COUNT(*) AS total").From(prospectsTable), filter).
		GroupBy("status")
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count prospects: %w", err)
	}
	var rows []struct {
		Status models.ProspectStatus `db:"status"`
		Total  int                   `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count prospects: %w", err)
	}
	counts := make(map[models.ProspectStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// LatestApproved returns the submitter's first approved prospect, the one awaiting extended detail.
func (r *ProspectRepository) LatestApproved(ctx context.Context, submitterID string) (*models.CompanyProspect, error) {
	query, args, err := r.builder.Select(prospectColumns...).
		From(prospectsTable).
		Where(sq.Eq{"submitter_id": submitterID, "status": models.ProspectStatusApproved}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build latest approved prospect: %w", err)
	}
	var p models.CompanyProspect
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatusParams groups the columns patched by a review decision.
type UpdateStatusParams struct {
	ID           string
	Status       models.ProspectStatus
	ApproverID   string
	ApproverName string
	ApprovedAt   time.Time
	Notes        *string
	// ExpectedStatus, when set, makes the patch conditional on the current status.
	ExpectedStatus models.ProspectStatus
}

// UpdateStatus applies a review decision. Returns sql.ErrNoRows when no row matched.
func (r *ProspectRepository) UpdateStatus(ctx context.Context, params UpdateStatusParams) error {
	stmt := r.builder.Update(prospectsTable).
		Set("status", params.Status).
		Set("approver_id", params.ApproverID).
		Set("approver_name", params.ApproverName).
		Set("approved_at", params.ApprovedAt).
		Set("updated_at", params.ApprovedAt)
	if params.Notes != nil {
		stmt = stmt.Set("notes", *params.Notes)
	}
	stmt = stmt.Where(sq.Eq{"id": params.ID})
	if params.ExpectedStatus != "" {
		stmt = stmt.Where(sq.Eq{"status": params.ExpectedStatus})
	}
	return r.execUpdate(ctx, stmt, "update prospect status")
}

// UpdateNotes patches only the notes column.
func (r *ProspectRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	stmt := r.builder.Update(prospectsTable).
		Set("notes", notes).
		Where(sq.Eq{"id": id})
	return r.execUpdate(ctx, stmt, "update prospect notes")
}

// UpdateDetails overwrites every extended field, notes and status in one statement. Moving a
// record back to Pending clears the review stamps.
func (r *ProspectRepository) UpdateDetails(ctx context.Context, p *models.CompanyProspect) error {
	d := p.ProspectDetails
	stmt := r.builder.Update(prospectsTable).
		SetMap(map[string]interface{}{
			"company_name":    d.CompanyName,
			"website":         d.Website,
			"linkedin":        d.LinkedIn,
			"country":         d.Country,
			"headquarters":    d.Headquarters,
			"company_type":    d.CompanyType,
			"industry":        d.Industry,
			"end_product":     d.EndProduct,
			"employees":       d.Employees,
			"ceo_name":        d.CEOName,
			"ceo_linkedin":    d.CEOLinkedIn,
			"ceo_email":       d.CEOEmail,
			"phone_number":    d.PhoneNumber,
			"funding_stage":   d.FundingStage,
			"rd_locations":    d.RDLocations,
			"potential_needs": d.PotentialNeeds,
			"contacts":        d.Contacts,
			"notes":           p.Notes,
			"status":          p.Status,
			"updated_at":      p.UpdatedAt,
		})
	if p.Status == models.ProspectStatusPending {
		stmt = stmt.SetMap(map[string]interface{}{
			"approver_id":   nil,
			"approver_name": nil,
			"approved_at":   nil,
		})
	}
	if p.DateTime != nil {
		stmt = stmt.Set("date_time", *p.DateTime)
	}
	stmt = stmt.Where(sq.Eq{"id": p.ID})
	return r.execUpdate(ctx, stmt, "update prospect details")
}

func (r *ProspectRepository) execUpdate(ctx context.Context, stmt sq.UpdateBuilder, op string) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func applyProspectFilter(stmt sq.SelectBuilder, filter models.ProspectFilter) sq.SelectBuilder {
	if filter.Status != "" {
		stmt = stmt.Where(sq.Eq{"status": filter.Status})
	}
	if filter.SubmitterID != "" {
		stmt = stmt.Where(sq.Eq{"submitter_id": filter.SubmitterID})
	}
	return stmt
}

// ClampLimit applies a default to non-positive limits and caps the rest.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
