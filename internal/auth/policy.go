// Package auth contains the access policy engine, the confirmation-code
// issuer and the access-token codec. All three are pure with respect to
// storage: enforcement and persistence happen in the calling layers.
package auth

import (
	"github.com/openshelf/review-platform/internal/model"
)

// Resource enumerates the kinds of records a request can act on.
type Resource string

const (
	ResourceTitle    Resource = "title"
	ResourceGenre    Resource = "genre"
	ResourceCategory Resource = "category"
	ResourceReview   Resource = "review"
	ResourceComment  Resource = "comment"
	ResourceUser     Resource = "user"
)

// Action enumerates what a request does to a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Scope qualifies a grant: none, only records the actor owns, or any record.
type Scope uint8

const (
	ScopeNone Scope = iota
	ScopeOwn
	ScopeAny
)

// Actor is the authenticated (or anonymous) principal of a request.
type Actor struct {
	Authenticated bool
	ID            uint64
	Role          model.Role
	IsSuperuser   bool
}

// roleAnonymous keys the grant row for unauthenticated requests. It is not
// a member of the role enum and never reaches storage.
const roleAnonymous model.Role = "anonymous"

// readOnlyCatalogue is the grant set shared by every actor: list/retrieve
// on the public resources.
func readOnlyCatalogue() map[Resource]map[Action]Scope {
	return map[Resource]map[Action]Scope{
		ResourceTitle:    {ActionRead: ScopeAny},
		ResourceGenre:    {ActionRead: ScopeAny},
		ResourceCategory: {ActionRead: ScopeAny},
		ResourceReview:   {ActionRead: ScopeAny},
		ResourceComment:  {ActionRead: ScopeAny},
	}
}

func fullAccess() map[Resource]map[Action]Scope {
	all := map[Resource]map[Action]Scope{}
	for _, res := range []Resource{ResourceTitle, ResourceGenre, ResourceCategory, ResourceReview, ResourceComment, ResourceUser} {
		all[res] = map[Action]Scope{
			ActionRead:   ScopeAny,
			ActionCreate: ScopeAny,
			ActionUpdate: ScopeAny,
			ActionDelete: ScopeAny,
		}
	}
	return all
}

// grants is the whole permission model as one enumerated table keyed by
// (role, resource, action). Absent entries deny.
var grants = map[model.Role]map[Resource]map[Action]Scope{
	roleAnonymous: readOnlyCatalogue(),
	model.RoleUser: func() map[Resource]map[Action]Scope {
		g := readOnlyCatalogue()
		g[ResourceReview] = map[Action]Scope{
			ActionRead:   ScopeAny,
			ActionCreate: ScopeAny,
			ActionUpdate: ScopeOwn,
			ActionDelete: ScopeOwn,
		}
		g[ResourceComment] = map[Action]Scope{
			ActionRead:   ScopeAny,
			ActionCreate: ScopeAny,
			ActionUpdate: ScopeOwn,
			ActionDelete: ScopeOwn,
		}
		return g
	}(),
	model.RoleModerator: func() map[Resource]map[Action]Scope {
		g := readOnlyCatalogue()
		g[ResourceReview] = map[Action]Scope{
			ActionRead:   ScopeAny,
			ActionCreate: ScopeAny,
			ActionUpdate: ScopeAny,
			ActionDelete: ScopeAny,
		}
		g[ResourceComment] = map[Action]Scope{
			ActionRead:   ScopeAny,
			ActionCreate: ScopeAny,
			ActionUpdate: ScopeAny,
			ActionDelete: ScopeAny,
		}
		return g
	}(),
	model.RoleAdmin: fullAccess(),
}

// Decide answers whether the actor may perform the action on the resource
// kind. ownerID is the owning user of the specific record, or zero when
// ownership does not apply (lists, creates, ownerless resources). The
// function is pure; callers translate a false result into 401 or 403.
func Decide(a Actor, res Resource, act Action, ownerID uint64) bool {
	role := roleAnonymous
	if a.Authenticated {
		role = a.Role
		if a.IsSuperuser {
			// Superuser is orthogonal to the role enum but carries
			// admin-equivalent privilege.
			role = model.RoleAdmin
		}
	}
	switch grants[role][res][act] {
	case ScopeAny:
		return true
	case ScopeOwn:
		return a.Authenticated && ownerID != 0 && a.ID == ownerID
	}
	return false
}
