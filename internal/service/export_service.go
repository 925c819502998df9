package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/prospect-portal-api/internal/dto"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
	"github.com/noah-isme/prospect-portal-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type prospectLister interface {
	ListVisible(ctx context.Context, actor *models.Actor, query dto.ProspectQuery) ([]models.CompanyProspect, error)
}

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService renders the caller's visible prospects as CSV or PDF.
type ExportService struct {
	prospects prospectLister
	policy    *AccessPolicy
	exporters map[ExportFormat]export.Exporter
	audit     auditRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(prospects prospectLister, policy *AccessPolicy, audit auditRecorder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = DefaultAccessPolicy()
	}
	return &ExportService{
		prospects: prospects,
		policy:    policy,
		exporters: map[ExportFormat]export.Exporter{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		audit:  audit,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var prospectExportHeaders = []string{
	"Company", "Website", "Industry", "Country", "Headquarters", "Type", "Employees",
	"Funding", "Status", "Submitted By", "Approver", "Created", "Notes",
}

// Export renders every prospect visible to actor, optionally narrowed by status.
func (s *ExportService) Export(ctx context.Context, actor *models.Actor, format ExportFormat, status models.ProspectStatus) (*ExportResult, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !s.policy.Can(actor.Role, models.ActionExportProspects) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role may not export prospects")
	}
	exporter, ok := s.exporters[ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	prospects, err := s.prospects.ListVisible(ctx, actor, dto.ProspectQuery{Status: status, All: true})
	if err != nil {
		return nil, err
	}

	title := "Company prospects"
	if status != "" {
		title = fmt.Sprintf("%s prospects", status)
	}
	body, err := exporter.Render(prospectDataset(prospects), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	generated := s.now()
	result := &ExportResult{
		Filename:    fmt.Sprintf("prospects_%s.%s", generated.Format("20060102_150405"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
		Rows:        len(prospects),
	}
	if s.audit != nil {
		s.audit.Record(ctx, newAuditLog(actor, models.AuditActionProspectsExport, prospectResource, "", nil, map[string]interface{}{
			"format": exporter.Extension(),
			"status": status,
			"rows":   result.Rows,
		}))
	}
	s.logger.Info("prospects exported", zap.String("user_id", actor.UserID), zap.String("format", exporter.Extension()), zap.Int("rows", result.Rows))
	return result, nil
}

func prospectDataset(prospects []models.CompanyProspect) export.Dataset {
	rows := make([]map[string]string, 0, len(prospects))
	for _, p := range prospects {
		rows = append(rows, map[string]string{
			"Company":      p.CompanyName,
			"Website":      p.Website,
			"Industry":     p.Industry,
			"Country":      p.Country,
			"Headquarters": p.Headquarters,
			"Type":         p.CompanyType,
			"Employees":    p.Employees,
			"Funding":      p.FundingStage,
			"Status":       string(p.Status),
			"Submitted By": p.SubmitterName,
			"Approver":     deref(p.ApproverName),
			"Created":      p.CreatedAt.Format("2006-01-02"),
			"Notes":        deref(p.Notes),
		})
	}
	return export.Dataset{Headers: prospectExportHeaders, Rows: rows}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
