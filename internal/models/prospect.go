package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProspectStatus captures the review lifecycle of a company prospect.
type ProspectStatus string

const (
	ProspectStatusPending   ProspectStatus = "Pending"
	ProspectStatusSubmitted ProspectStatus = "Submitted"
	ProspectStatusApproved  ProspectStatus = "Approved"
	ProspectStatusRejected  ProspectStatus = "Rejected"
)

// ProspectStatuses lists every status in dashboard order.
var ProspectStatuses = []ProspectStatus{
	ProspectStatusPending,
	ProspectStatusApproved,
	ProspectStatusRejected,
	ProspectStatusSubmitted,
}

// Valid reports whether s is a known status.
func (s ProspectStatus) Valid() bool {
	for _, known := range ProspectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsReviewOutcome reports whether s is a status a reviewer may assign.
func (s ProspectStatus) IsReviewOutcome() bool {
	return s == ProspectStatusApproved || s == ProspectStatusRejected
}

// MaxContacts bounds the contact list of a prospect.
const MaxContacts = 10

// Contact is one email/LinkedIn pair attached to a prospect.
type Contact struct {
	Email    string `json:"email" validate:"required,email"`
	LinkedIn string `json:"linkedIn" validate:"required,url"`
}

// Contacts is stored as a JSONB array.
type Contacts []Contact

// Value implements driver.Valuer.
func (c Contacts) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *Contacts) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("contacts: unsupported scan type %T", src)
	}
}

// ProspectDetails holds the classification fields an executive fills in.
type ProspectDetails struct {
	CompanyName    string   `db:"company_name"`
	Website        string   `db:"website"`
	LinkedIn       string   `db:"linkedin"`
	Country        string   `db:"country"`
	Headquarters   string   `db:"headquarters"`
	CompanyType    string   `db:"company_type"`
	Industry       string   `db:"industry"`
	EndProduct     string   `db:"end_product"`
	Employees      string   `db:"employees"`
	CEOName        string   `db:"ceo_name"`
	CEOLinkedIn    string   `db:"ceo_linkedin"`
	CEOEmail       string   `db:"ceo_email"`
	PhoneNumber    string   `db:"phone_number"`
	FundingStage   string   `db:"funding_stage"`
	RDLocations    string   `db:"rd_locations"`
	PotentialNeeds string   `db:"potential_needs"`
	Contacts       Contacts `db:"contacts"`
}

// CompanyProspect is the unit of work moving through the review pipeline.
type CompanyProspect struct {
	ID            string `db:"id"`
	SubmitterID   string `db:"submitter_id"`
	SubmitterName string `db:"submitter_name"`
	ProspectDetails
	Notes        *string        `db:"notes"`
	Status       ProspectStatus `db:"status"`
	ApproverID   *string        `db:"approver_id"`
	ApproverName *string        `db:"approver_name"`
	ApprovedAt   *time.Time     `db:"approved_at"`
	DateTime     *time.Time     `db:"date_time"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    *time.Time     `db:"updated_at"`
}

// HasApprover reports whether review stamps are present.
func (p *CompanyProspect) HasApprover() bool {
	return p.ApproverID != nil && p.ApprovedAt != nil
}

type prospectJSON struct {
	ID             string         `json:"id"`
	SubmitterID    string         `json:"submitterId"`
	SubmitterName  string         `json:"submitterName,omitempty"`
	CompanyName    string         `json:"companyName"`
	Website        string         `json:"website"`
	LinkedIn       string         `json:"linkedIn,omitempty"`
	Country        string         `json:"country,omitempty"`
	Headquarters   string         `json:"headquarters,omitempty"`
	CompanyType    string         `json:"companyType,omitempty"`
	Industry       string         `json:"industry,omitempty"`
	EndProduct     string         `json:"endProduct,omitempty"`
	Employees      string         `json:"employees,omitempty"`
	CEOName        string         `json:"ceoName,omitempty"`
	CEOLinkedIn    string         `json:"ceoLinkedIn,omitempty"`
	CEOEmail       string         `json:"ceoEmail,omitempty"`
	PhoneNumber    string         `json:"phoneNumber,omitempty"`
	FundingStage   string         `json:"fundingStage,omitempty"`
	RDLocations    string         `json:"rdLocations,omitempty"`
	PotentialNeeds string         `json:"potentialNeeds,omitempty"`
	Contacts       Contacts       `json:"contacts,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	Status         ProspectStatus `json:"status"`
	ApproverID     *string        `json:"approverId,omitempty"`
	ApproverName   *string        `json:"approverName,omitempty"`
	ApprovedAt     *int64         `json:"approvedAt,omitempty"`
	DateTime       *int64         `json:"dateTime,omitempty"`
	CreatedAt      int64          `json:"createdAt"`
	UpdatedAt      *int64         `json:"updatedAt,omitempty"`
}

// MarshalJSON renders timestamps as epoch milliseconds.
func (p CompanyProspect) MarshalJSON() ([]byte, error) {
	d := p.ProspectDetails
	return json.Marshal(prospectJSON{
		ID:             p.ID,
		SubmitterID:    p.SubmitterID,
		SubmitterName:  p.SubmitterName,
		CompanyName:    d.CompanyName,
		Website:        d.Website,
		LinkedIn:       d.LinkedIn,
		Country:        d.Country,
		Headquarters:   d.Headquarters,
		CompanyType:    d.CompanyType,
		Industry:       d.Industry,
		EndProduct:     d.EndProduct,
		Employees:      d.Employees,
		CEOName:        d.CEOName,
		CEOLinkedIn:    d.CEOLinkedIn,
		CEOEmail:       d.CEOEmail,
		PhoneNumber:    d.PhoneNumber,
		FundingStage:   d.FundingStage,
		RDLocations:    d.RDLocations,
		PotentialNeeds: d.PotentialNeeds,
		Contacts:       d.Contacts,
		Notes:          p.Notes,
		Status:         p.Status,
		ApproverID:     p.ApproverID,
		ApproverName:   p.ApproverName,
		ApprovedAt:     millisPtr(p.ApprovedAt),
		DateTime:       millisPtr(p.DateTime),
		CreatedAt:      p.CreatedAt.UnixMilli(),
		UpdatedAt:      millisPtr(p.UpdatedAt),
	})
}

// UnmarshalJSON accepts the same epoch millisecond layout MarshalJSON produces.
func (p *CompanyProspect) UnmarshalJSON(data []byte) error {
	var raw prospectJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return errors.New("prospect: missing id")
	}
	*p = CompanyProspect{
		ID:            raw.ID,
		SubmitterID:   raw.SubmitterID,
		SubmitterName: raw.SubmitterName,
		ProspectDetails: ProspectDetails{
			CompanyName:    raw.CompanyName,
			Website:        raw.Website,
			LinkedIn:       raw.LinkedIn,
			Country:        raw.Country,
			Headquarters:   raw.Headquarters,
			CompanyType:    raw.CompanyType,
			Industry:       raw.Industry,
			EndProduct:     raw.EndProduct,
			Employees:      raw.Employees,
			CEOName:        raw.CEOName,
			CEOLinkedIn:    raw.CEOLinkedIn,
			CEOEmail:       raw.CEOEmail,
			PhoneNumber:    raw.PhoneNumber,
			FundingStage:   raw.FundingStage,
			RDLocations:    raw.RDLocations,
			PotentialNeeds: raw.PotentialNeeds,
			Contacts:       raw.Contacts,
		},
		Notes:        raw.Notes,
		Status:       raw.Status,
		ApproverID:   raw.ApproverID,
		ApproverName: raw.ApproverName,
		ApprovedAt:   timePtr(raw.ApprovedAt),
		DateTime:     timePtr(raw.DateTime),
		CreatedAt:    time.UnixMilli(raw.CreatedAt).UTC(),
		UpdatedAt:    timePtr(raw.UpdatedAt),
	}
	return nil
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func timePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}

// ProspectSort selects the index a listing is ordered by.
type ProspectSort string

const (
	ProspectSortCreatedAt   ProspectSort = "createdAt"
	ProspectSortStatus      ProspectSort = "status"
	ProspectSortCompanyName ProspectSort = "companyName"
)

// ProspectFilter constrains listing queries.
type ProspectFilter struct {
	Status      ProspectStatus
	SubmitterID string
	Sort        ProspectSort
	Limit       int
}

// ProspectSummary counts prospects per status for dashboards.
type ProspectSummary struct {
	Total    int                    `json:"total"`
	ByStatus map[ProspectStatus]int `json:"byStatus"`
}
