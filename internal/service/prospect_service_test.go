package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/prospect-portal-api/internal/dto"
	"github.com/noah-isme/prospect-portal-api/internal/models"
	"github.com/noah-isme/prospect-portal-api/internal/repository"
	appErrors "github.com/noah-isme/prospect-portal-api/pkg/errors"
)

type memoryProspectRepo struct {
	mu        sync.Mutex
	items     map[string]models.CompanyProspect
	writes    int
	updateErr error
	lastList  models.ProspectFilter
}

func newMemoryProspectRepo() *memoryProspectRepo {
	return &memoryProspectRepo{items: map[string]models.CompanyProspect{}}
}

func (m *memoryProspectRepo) Create(ctx context.Context, p *models.CompanyProspect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.items[p.ID] = *p
	m.writes++
	return nil
}

func (m *memoryProspectRepo) GetByID(ctx context.Context, id string) (*models.CompanyProspect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memoryProspectRepo) List(ctx context.Context, filter models.ProspectFilter) ([]models.CompanyProspect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = filter
	out := make([]models.CompanyProspect, 0)
	for _, p := range m.items {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.SubmitterID != "" && p.SubmitterID != filter.SubmitterID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memoryProspectRepo) CountByStatus(ctx context.Context, filter models.ProspectFilter) (map[models.ProspectStatus]int, error) {
	list, _ := m.List(ctx, models.ProspectFilter{SubmitterID: filter.SubmitterID, Status: filter.Status})
	counts := map[models.ProspectStatus]int{}
	for _, p := range list {
		counts[p.Status]++
	}
	return counts, nil
}

func (m *memoryProspectRepo) LatestApproved(ctx context.Context, submitterID string) (*models.CompanyProspect, error) {
	list, _ := m.List(ctx, models.ProspectFilter{SubmitterID: submitterID, Status: models.ProspectStatusApproved})
	if len(list) == 0 {
		return nil, sql.ErrNoRows
	}
	oldest := list[len(list)-1]
	return &oldest, nil
}

func (m *memoryProspectRepo) UpdateStatus(ctx context.Context, params repository.UpdateStatusParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.items[params.ID]
	if !ok || (params.ExpectedStatus != "" && p.Status != params.ExpectedStatus) {
		return sql.ErrNoRows
	}
	approverID, approverName, approvedAt := params.ApproverID, params.ApproverName, params.ApprovedAt
	p.Status = params.Status
	p.ApproverID = &approverID
	p.ApproverName = &approverName
	p.ApprovedAt = &approvedAt
	p.UpdatedAt = &approvedAt
	if params.Notes != nil {
		notes := *params.Notes
		p.Notes = &notes
	}
	m.items[p.ID] = p
	m.writes++
	return nil
}

func (m *memoryProspectRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Notes = &notes
	m.items[id] = p
	m.writes++
	return nil
}

func (m *memoryProspectRepo) UpdateDetails(ctx context.Context, updated *models.CompanyProspect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[updated.ID]
	if !ok {
		return sql.ErrNoRows
	}
	p.ProspectDetails = updated.ProspectDetails
	p.Status = updated.Status
	p.UpdatedAt = updated.UpdatedAt
	p.Notes = updated.Notes
	if updated.Status == models.ProspectStatusPending {
		p.ApproverID, p.ApproverName, p.ApprovedAt = nil, nil, nil
	}
	if updated.DateTime != nil {
		p.DateTime = updated.DateTime
	}
	m.items[p.ID] = p
	m.writes++
	return nil
}

var (
	execA     = &models.Actor{UserID: "exec-a", FullName: "Executive A", Role: models.RoleExecutive, SessionID: "s-a"}
	execOther = &models.Actor{UserID: "exec-z", FullName: "Executive Z", Role: models.RoleExecutive, SessionID: "s-z"}
	managerB  = &models.Actor{UserID: "mgr-b", FullName: "Manager B", Role: models.RoleManager, SessionID: "s-b"}
	managerC  = &models.Actor{UserID: "mgr-c", FullName: "Manager C", Role: models.RoleManager, SessionID: "s-c"}
	adminD    = &models.Actor{UserID: "admin-d", FullName: "Admin D", Role: models.RoleAdmin, SessionID: "s-d"}
	noRole    = &models.Actor{UserID: "nobody", FullName: "No Role", SessionID: "s-n"}
)

func newTestProspectService(repo *memoryProspectRepo, cfg ProspectConfig) (*ProspectService, *recordingAudit, *ChangeFeed) {
	audit := &recordingAudit{}
	feed := NewChangeFeed(16)
	svc := NewProspectService(repo, DefaultAccessPolicy(), nil, audit, feed, NewMetricsService(), nil, cfg)
	return svc, audit, feed
}

func strPtr(s string) *string { return &s }

func acmeRequest() dto.CreateProspectRequest {
	return dto.CreateProspectRequest{CompanyName: "Acme", Website: "https://acme.example"}
}

func fullUpdateRequest(status models.ProspectStatus) dto.UpdateProspectRequest {
	return dto.UpdateProspectRequest{
		CompanyName:  "Acme Corp",
		Website:      "https://acme.example",
		LinkedIn:     "https://linkedin.com/company/acme",
		Country:      "Germany",
		Headquarters: "Berlin",
		CompanyType:  "Private",
		Industry:     "Robotics",
		EndProduct:   "Actuators",
		Employees:    "250",
		CEOName:      "Jane Roe",
		CEOLinkedIn:  "https://linkedin.com/in/janeroe",
		CEOEmail:     "jane@acme.example",
		PhoneNumber:  "+49 30 1234",
		Contacts: []models.Contact{
			{Email: "buyer@acme.example", LinkedIn: "https://linkedin.com/in/buyer"},
		},
		DateTime: func() *int64 { v := int64(1700000000000); return &v }(),
		Status:   status,
	}
}

func TestCreateStartsPendingWithoutApprover(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, audit, feed := newTestProspectService(repo, ProspectConfig{})
	events, cancel := feed.Subscribe()
	defer cancel()

	before := time.Now().UTC()
	p, err := svc.Create(context.Background(), execA, acmeRequest())
	require.NoError(t, err)

	assert.Equal(t, models.ProspectStatusPending, p.Status)
	assert.Equal(t, "exec-a", p.SubmitterID)
	assert.Equal(t, "Executive A", p.SubmitterName)
	assert.Nil(t, p.ApproverID)
	assert.Nil(t, p.ApproverName)
	assert.Nil(t, p.ApprovedAt)
	assert.False(t, p.CreatedAt.Before(before))
	require.NotNil(t, p.DateTime)
	assert.Equal(t, p.CreatedAt, *p.DateTime)
	assert.Equal(t, []string{models.AuditActionProspectCreate}, audit.actions())

	change := <-events
	assert.Equal(t, ChangeCreated, change.Kind)
	assert.Equal(t, p.ID, change.ID)
}

func TestCreateRequiresSignIn(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})

	_, err := svc.Create(context.Background(), nil, acmeRequest())
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Zero(t, repo.writes)
}

func TestCreateValidatesPayload(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})

	_, err := svc.Create(context.Background(), execA, dto.CreateProspectRequest{CompanyName: "Acme", Website: "not a url"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	tooMany := acmeRequest()
	for i := 0; i < models.MaxContacts+1; i++ {
		tooMany.Contacts = append(tooMany.Contacts, models.Contact{Email: "a@acme.example", LinkedIn: "https://linkedin.com/in/a"})
	}
	_, err = svc.Create(context.Background(), execA, tooMany)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, repo.writes)
}

func TestCreateAllowedForRolelessUser(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})
	p, err := svc.Create(context.Background(), noRole, acmeRequest())
	require.NoError(t, err)
	assert.Equal(t, "nobody", p.SubmitterID)
}

func TestNonManagersCannotReviewOrAnnotate(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, err := svc.Create(context.Background(), execA, acmeRequest())
	require.NoError(t, err)
	writes := repo.writes

	for _, actor := range []*models.Actor{execA, adminD, noRole} {
		_, err := svc.SetStatus(context.Background(), actor, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
		require.ErrorIs(t, err, appErrors.ErrForbidden, "role %q", actor.Role)

		_, err = svc.SetNotes(context.Background(), actor, p.ID, dto.UpdateNotesRequest{Notes: "hijack"})
		require.ErrorIs(t, err, appErrors.ErrForbidden, "role %q", actor.Role)
	}

	_, err = svc.SetStatus(context.Background(), nil, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)

	assert.Equal(t, writes, repo.writes)
	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, models.ProspectStatusPending, stored.Status)
	assert.Nil(t, stored.Notes)
}

func TestManagerApproveStampsApprover(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, err := svc.Create(context.Background(), execA, acmeRequest())
	require.NoError(t, err)

	callTime := time.Now().UTC()
	reviewed, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved, Notes: strPtr("strong fit")})
	require.NoError(t, err)

	stored, _ := repo.GetByID(context.Background(), p.ID)
	for _, got := range []*models.CompanyProspect{reviewed, stored} {
		assert.Equal(t, models.ProspectStatusApproved, got.Status)
		require.NotNil(t, got.ApproverID)
		assert.Equal(t, "mgr-b", *got.ApproverID)
		assert.Equal(t, "Manager B", *got.ApproverName)
		require.NotNil(t, got.ApprovedAt)
		assert.False(t, got.ApprovedAt.Before(callTime))
		assert.Equal(t, "strong fit", *got.Notes)
	}
}

func TestSetStatusRejectsNonReviewTargets(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())

	for _, target := range []models.ProspectStatus{models.ProspectStatusPending, models.ProspectStatusSubmitted, "Draft", ""} {
		_, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: target})
		require.ErrorIs(t, err, appErrors.ErrValidation, "target %q", target)
	}
}

func TestSetStatusUnknownID(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})

	_, err := svc.SetStatus(context.Background(), managerB, uuid.NewString(), dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.SetStatus(context.Background(), managerB, "not-a-uuid", dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSetStatusStorageFailure(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())
	repo.updateErr = errors.New("connection reset")

	_, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestSetNotesLeavesStatusAndApproverUntouched(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, audit, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())
	approved, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.NoError(t, err)

	updated, err := svc.SetNotes(context.Background(), managerC, p.ID, dto.UpdateNotesRequest{Notes: "follow up in Q3"})
	require.NoError(t, err)
	assert.Equal(t, "follow up in Q3", *updated.Notes)

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, models.ProspectStatusApproved, stored.Status)
	assert.Equal(t, "mgr-b", *stored.ApproverID)
	assert.Equal(t, approved.ApprovedAt, stored.ApprovedAt)
	assert.Equal(t, approved.UpdatedAt, stored.UpdatedAt)
	assert.Equal(t, "follow up in Q3", *stored.Notes)
	assert.Contains(t, audit.actions(), models.AuditActionProspectNotes)
}

func TestUpdateFullRecordAuthorization(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())
	writes := repo.writes

	_, err := svc.UpdateFullRecord(context.Background(), execOther, p.ID, fullUpdateRequest(models.ProspectStatusSubmitted))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.UpdateFullRecord(context.Background(), noRole, p.ID, fullUpdateRequest(models.ProspectStatusSubmitted))
	require.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.UpdateFullRecord(context.Background(), nil, p.ID, fullUpdateRequest(models.ProspectStatusSubmitted))
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, writes, repo.writes)

	for _, actor := range []*models.Actor{execA, managerB, adminD} {
		_, err := svc.UpdateFullRecord(context.Background(), actor, p.ID, fullUpdateRequest(models.ProspectStatusSubmitted))
		require.NoError(t, err, "actor %s", actor.UserID)
	}
}

func TestUpdateFullRecordOverwritesFields(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())
	_, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.NoError(t, err)

	req := fullUpdateRequest(models.ProspectStatusSubmitted)
	updated, err := svc.UpdateFullRecord(context.Background(), execA, p.ID, req)
	require.NoError(t, err)

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, req.Details(), stored.ProspectDetails)
	assert.Equal(t, models.ProspectStatusSubmitted, stored.Status)
	assert.Equal(t, "mgr-b", *stored.ApproverID)
	require.NotNil(t, stored.DateTime)
	assert.Equal(t, int64(1700000000000), stored.DateTime.UnixMilli())
	assert.Equal(t, stored.ProspectDetails, updated.ProspectDetails)
}

func TestUpdateFullRecordBackToPendingClearsReviewStamps(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())
	_, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.NoError(t, err)

	updated, err := svc.UpdateFullRecord(context.Background(), execA, p.ID, fullUpdateRequest(models.ProspectStatusPending))
	require.NoError(t, err)
	assert.Nil(t, updated.ApproverID)

	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, models.ProspectStatusPending, stored.Status)
	assert.Nil(t, stored.ApproverID)
	assert.Nil(t, stored.ApproverName)
	assert.Nil(t, stored.ApprovedAt)
}

func TestUpdateFullRecordReplacesNotes(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())
	_, err := svc.SetStatus(context.Background(), managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved, Notes: strPtr("call the CTO")})
	require.NoError(t, err)

	req := fullUpdateRequest(models.ProspectStatusSubmitted)
	req.Notes = strPtr("met at trade fair")
	_, err = svc.UpdateFullRecord(context.Background(), execA, p.ID, req)
	require.NoError(t, err)
	stored, _ := repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, "met at trade fair", *stored.Notes)

	_, err = svc.UpdateFullRecord(context.Background(), execA, p.ID, fullUpdateRequest(models.ProspectStatusSubmitted))
	require.NoError(t, err)
	stored, _ = repo.GetByID(context.Background(), p.ID)
	assert.Nil(t, stored.Notes)
}

func TestUpdateFullRecordValidatesAfterAuthorization(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())

	req := fullUpdateRequest(models.ProspectStatusSubmitted)
	req.CompanyType = "Cooperative"
	_, err := svc.UpdateFullRecord(context.Background(), execA, p.ID, req)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	req = fullUpdateRequest(models.ProspectStatusSubmitted)
	req.Contacts = nil
	_, err = svc.UpdateFullRecord(context.Background(), execA, p.ID, req)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestListVisibleSoftFailsWithoutActor(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})

	list, err := svc.ListVisible(context.Background(), nil, dto.ProspectQuery{})
	require.NoError(t, err)
	assert.Nil(t, list)

	latest, err := svc.LatestApproved(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, latest)

	summary, err := svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestListVisibleLimitsAndFilters(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{DefaultLimit: 50, MaxLimit: 10000})

	_, err := svc.ListVisible(context.Background(), execA, dto.ProspectQuery{})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastList.Limit)

	_, err = svc.ListVisible(context.Background(), execA, dto.ProspectQuery{All: true})
	require.NoError(t, err)
	assert.Equal(t, 10000, repo.lastList.Limit)

	_, err = svc.ListVisible(context.Background(), execA, dto.ProspectQuery{Limit: 99999})
	require.NoError(t, err)
	assert.Equal(t, 10000, repo.lastList.Limit)
	assert.Empty(t, repo.lastList.SubmitterID)

	_, err = svc.ListVisible(context.Background(), execA, dto.ProspectQuery{Status: "Draft"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.ListVisible(context.Background(), execA, dto.ProspectQuery{Sort: "random"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAcmeReviewScenario(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	ctx := context.Background()

	p, err := svc.Create(ctx, execA, acmeRequest())
	require.NoError(t, err)
	assert.Equal(t, models.ProspectStatusPending, p.Status)

	_, err = svc.SetStatus(ctx, managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.NoError(t, err)
	approvedOnly, err := svc.ListVisible(ctx, execA, dto.ProspectQuery{Status: models.ProspectStatusApproved})
	require.NoError(t, err)
	require.Len(t, approvedOnly, 1)
	assert.Equal(t, p.ID, approvedOnly[0].ID)

	latest, err := svc.LatestApproved(ctx, execA)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, p.ID, latest.ID)

	rejected, err := svc.SetStatus(ctx, managerC, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, models.ProspectStatusRejected, rejected.Status)
	assert.Equal(t, "mgr-c", *rejected.ApproverID)
	assert.Equal(t, "Manager C", *rejected.ApproverName)

	approvedOnly, err = svc.ListVisible(ctx, execA, dto.ProspectQuery{Status: models.ProspectStatusApproved})
	require.NoError(t, err)
	assert.Empty(t, approvedOnly)

	summary, err := svc.Summary(ctx, managerB)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[models.ProspectStatusRejected])
	assert.Equal(t, 0, summary.ByStatus[models.ProspectStatusApproved])
}

func TestStrictReviewIsOneWay(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{StrictReview: true})
	ctx := context.Background()

	p, _ := svc.Create(ctx, execA, acmeRequest())
	_, err := svc.SetStatus(ctx, managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, managerC, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusRejected})
	require.ErrorIs(t, err, appErrors.ErrConflict)

	stored, _ := repo.GetByID(ctx, p.ID)
	assert.Equal(t, models.ProspectStatusApproved, stored.Status)
	assert.Equal(t, "mgr-b", *stored.ApproverID)
}

func TestGetRespectsNotFound(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())

	got, err := svc.Get(context.Background(), managerB, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(context.Background(), managerB, uuid.NewString())
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Get(context.Background(), nil, p.ID)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestConcurrentReviewsLastWriterWins(t *testing.T) {
	repo := newMemoryProspectRepo()
	svc, _, _ := newTestProspectService(repo, ProspectConfig{})
	p, _ := svc.Create(context.Background(), execA, acmeRequest())

	var wg sync.WaitGroup
	for _, reviewer := range []*models.Actor{managerB, managerC} {
		wg.Add(1)
		go func(actor *models.Actor, target models.ProspectStatus) {
			defer wg.Done()
			_, err := svc.SetStatus(context.Background(), actor, p.ID, dto.ReviewProspectRequest{Status: target})
			assert.NoError(t, err)
		}(reviewer, map[string]models.ProspectStatus{"mgr-b": models.ProspectStatusApproved, "mgr-c": models.ProspectStatusRejected}[reviewer.UserID])
	}
	wg.Wait()

	stored, _ := repo.GetByID(context.Background(), p.ID)
	switch *stored.ApproverID {
	case "mgr-b":
		assert.Equal(t, models.ProspectStatusApproved, stored.Status)
	case "mgr-c":
		assert.Equal(t, models.ProspectStatusRejected, stored.Status)
	default:
		t.Fatalf("unexpected approver %s", *stored.ApproverID)
	}
}

func TestLatestApprovedReturnsCallersOldestApproval(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	created := make([]*models.CompanyProspect, 0, 3)
	for i, actor := range []*models.Actor{execA, execA, execOther} {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		p, err := svc.Create(ctx, actor, acmeRequest())
		require.NoError(t, err)
		created = append(created, p)
	}
	svc.now = func() time.Time { return base.Add(24 * time.Hour) }

	got, err := svc.LatestApproved(ctx, execA)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, p := range created {
		_, err := svc.SetStatus(ctx, managerB, p.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusApproved})
		require.NoError(t, err)
	}

	got, err = svc.LatestApproved(ctx, execA)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created[0].ID, got.ID)

	got, err = svc.LatestApproved(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSummaryCountsEveryStatus(t *testing.T) {
	svc, _, _ := newTestProspectService(newMemoryProspectRepo(), ProspectConfig{})
	ctx := context.Background()

	first, _ := svc.Create(ctx, execA, acmeRequest())
	_, _ = svc.Create(ctx, execOther, acmeRequest())
	_, err := svc.SetStatus(ctx, managerB, first.ID, dto.ReviewProspectRequest{Status: models.ProspectStatusRejected})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, execA)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, map[models.ProspectStatus]int{
		models.ProspectStatusPending:   1,
		models.ProspectStatusApproved:  0,
		models.ProspectStatusRejected:  1,
		models.ProspectStatusSubmitted: 0,
	}, summary.ByStatus)

	summary, err = svc.Summary(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, summary)
}
