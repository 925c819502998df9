package service

import (
	"github.com/noah-isme/prospect-portal-api/internal/models"
)

// rolePermissions is what one role may see and do.
type rolePermissions struct {
	views   []models.View
	actions []models.Action
	scope   models.ListScope
}

// AccessPolicy is the single role -> {views, mutations, list scope} table.
// Every authorization decision in the service goes through it.
type AccessPolicy struct {
	table map[models.Role]rolePermissions
}

// DefaultAccessPolicy mirrors the portal as deployed: anyone signed in may browse and submit
// companies, managers review, and the owner, managers or admins may complete a submission.
func DefaultAccessPolicy() *AccessPolicy {
	return &AccessPolicy{table: map[models.Role]rolePermissions{
		models.RoleNone: {
			views:   []models.View{models.ViewCompanies},
			actions: []models.Action{models.ActionCreateProspect},
			scope:   models.ListScopeAll,
		},
		models.RoleExecutive: {
			views:   []models.View{models.ViewCompanies, models.ViewEnterDetails},
			actions: []models.Action{models.ActionCreateProspect},
			scope:   models.ListScopeAll,
		},
		models.RoleManager: {
			views: []models.View{
				models.ViewCompanies,
				models.ViewApproveSubmissions,
				models.ViewProspectDetails,
				models.ViewExport,
			},
			actions: []models.Action{
				models.ActionCreateProspect,
				models.ActionReviewProspect,
				models.ActionEditNotes,
				models.ActionEditAnyProspect,
				models.ActionExportProspects,
			},
			scope: models.ListScopeAll,
		},
		models.RoleAdmin: {
			views: []models.View{
				models.ViewCompanies,
				models.ViewProspectDetails,
				models.ViewExport,
			},
			actions: []models.Action{
				models.ActionCreateProspect,
				models.ActionEditAnyProspect,
				models.ActionExportProspects,
			},
			scope: models.ListScopeAll,
		},
	}}
}

// Can reports whether role may perform action.
func (p *AccessPolicy) Can(role models.Role, action models.Action) bool {
	for _, a := range p.table[role].actions {
		if a == action {
			return true
		}
	}
	return false
}

// CanView reports whether role may open view.
func (p *AccessPolicy) CanView(role models.Role, view models.View) bool {
	for _, v := range p.table[role].views {
		if v == view {
			return true
		}
	}
	return false
}

// Views lists the screens available to role.
func (p *AccessPolicy) Views(role models.Role) []models.View {
	views := p.table[role].views
	out := make([]models.View, len(views))
	copy(out, views)
	return out
}

// Scope returns how much of the prospect collection role may list.
func (p *AccessPolicy) Scope(role models.Role) models.ListScope {
	return p.table[role].scope
}
