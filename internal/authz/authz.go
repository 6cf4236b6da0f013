// Package authz holds the authorization decision logic. Every function
// is pure: it reads only the entity and actor snapshots passed in, so
// decisions can be tested without a database. Callers must load the
// target row before asking for a decision; an ID is never enough,
// because permissions depend on who created the row.
package authz

import (
	"github.com/pauloheg33/SIEDE/internal/models"
)

// CanEditEvent reports whether actor may modify event or its child
// resources (files, attendance, notes). Admins and the event's creator
// may edit; nobody else.
func CanEditEvent(event *models.Event, actor *models.User) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == event.CreatedBy
}

// CanDeleteEvent reports whether actor may delete event. Deletion is
// admin-only; the creator is deliberately not enough.
func CanDeleteEvent(event *models.Event, actor *models.User) bool {
	return actor.IsAdmin()
}

// CanEditNote reports whether actor may modify or delete note. The
// note's author always may; otherwise the decision defers to
// CanEditEvent on the parent event.
func CanEditNote(note *models.EventNote, event *models.Event, actor *models.User) bool {
	if actor.ID == note.CreatedBy {
		return true
	}
	return CanEditEvent(event, actor)
}

// HasRole reports whether actor holds exactly the given role. There is
// no hierarchy: ADMIN does not implicitly satisfy a check for another
// role.
func HasRole(actor *models.User, role string) bool {
	return actor.Role == role
}
