package models

// View names a screen of the portal a role may open.
type View string

const (
	ViewCompanies          View = "companies"
	ViewEnterDetails       View = "enterDetails"
	ViewApproveSubmissions View = "approveSubmissions"
	ViewProspectDetails    View = "viewDetails"
	ViewExport             View = "export"
)

// Action names a prospect mutation gated by role.
type Action string

const (
	ActionCreateProspect  Action = "prospect:create"
	ActionReviewProspect  Action = "prospect:review"
	ActionEditNotes       Action = "prospect:notes"
	ActionEditAnyProspect Action = "prospect:edit-any"
	ActionExportProspects Action = "prospect:export"
)

// ListScope bounds which prospects a role sees in list queries.
type ListScope int

const (
	ListScopeNone ListScope = iota
	ListScopeOwn
	ListScopeAll
)
