package dto

import (
	"github.com/noah-isme/prospect-portal-api/internal/models"
)

// CreateProspectRequest is the executive's quick "add company" form.
type CreateProspectRequest struct {
	CompanyName  string           `json:"companyName" validate:"required,max=200"`
	Website      string           `json:"website" validate:"required,url"`
	Notes        *string          `json:"notes" validate:"omitempty,max=5000"`
	Industry     string           `json:"industry" validate:"omitempty,max=200"`
	Headquarters string           `json:"headquarters" validate:"omitempty,max=200"`
	Employees    string           `json:"employees" validate:"omitempty,max=50"`
	FundingStage string           `json:"fundingStage" validate:"omitempty,max=100"`
	Contacts     []models.Contact `json:"contacts" validate:"omitempty,min=1,max=10,dive"`
}

// ReviewProspectRequest captures a manager's decision and optional notes.
type ReviewProspectRequest struct {
	Status models.ProspectStatus `json:"status" validate:"required,oneof=Approved Rejected"`
	Notes  *string               `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateNotesRequest replaces the review notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// UpdateProspectRequest is the full submission form filled in after approval.
type UpdateProspectRequest struct {
	CompanyName    string                `json:"companyName" validate:"required,max=200"`
	Website        string                `json:"website" validate:"required,url"`
	LinkedIn       string                `json:"linkedIn" validate:"required,url"`
	Country        string                `json:"country" validate:"required,max=100"`
	Headquarters   string                `json:"headquarters" validate:"required,max=200"`
	CompanyType    string                `json:"companyType" validate:"required,oneof=Public Private Startup Non-profit"`
	Industry       string                `json:"industry" validate:"required,max=200"`
	EndProduct     string                `json:"endProduct" validate:"required,max=500"`
	Employees      string                `json:"employees" validate:"required,max=50"`
	CEOName        string                `json:"ceoName" validate:"required,max=200"`
	CEOLinkedIn    string                `json:"ceoLinkedIn" validate:"required,url"`
	CEOEmail       string                `json:"ceoEmail" validate:"required,email"`
	PhoneNumber    string                `json:"phoneNumber" validate:"required,max=50"`
	FundingStage   string                `json:"fundingStage" validate:"max=100"`
	RDLocations    string                `json:"rdLocations" validate:"max=500"`
	PotentialNeeds string                `json:"potentialNeeds" validate:"max=2000"`
	Contacts       []models.Contact      `json:"contacts" validate:"required,min=1,max=10,dive"`
	Notes          *string               `json:"notes" validate:"omitempty,max=5000"`
	DateTime       *int64                `json:"dateTime"`
	Status         models.ProspectStatus `json:"status" validate:"required,oneof=Pending Submitted Approved Rejected"`
}

// Details maps the form onto the stored classification fields.
func (r UpdateProspectRequest) Details() models.ProspectDetails {
	return models.ProspectDetails{
		CompanyName:    r.CompanyName,
		Website:        r.Website,
		LinkedIn:       r.LinkedIn,
		Country:        r.Country,
		Headquarters:   r.Headquarters,
		CompanyType:    r.CompanyType,
		Industry:       r.Industry,
		EndProduct:     r.EndProduct,
		Employees:      r.Employees,
		CEOName:        r.CEOName,
		CEOLinkedIn:    r.CEOLinkedIn,
		CEOEmail:       r.CEOEmail,
		PhoneNumber:    r.PhoneNumber,
		FundingStage:   r.FundingStage,
		RDLocations:    r.RDLocations,
		PotentialNeeds: r.PotentialNeeds,
		Contacts:       append(models.Contacts(nil), r.Contacts...),
	}
}

// ProspectQuery mirrors supported listing filters.
type ProspectQuery struct {
	Status models.ProspectStatus
	Sort   models.ProspectSort
	Limit  int
	All    bool
}
