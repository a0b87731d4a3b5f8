package domain

// Record-level authorization predicates for tickets. These are pure functions
// of (actor, record); route-level role gates live in the HTTP middleware.

// IsCreator reports whether u opened t.
func IsCreator(t *Ticket, u *User) bool {
	return t != nil && u != nil && t.CreatedByID == u.ID
}

// IsAssignee reports whether u is currently assigned to t.
func IsAssignee(t *Ticket, u *User) bool {
	return t != nil && u != nil && t.AssignedToID != "" && t.AssignedToID == u.ID
}

// CanViewTicket allows the creator, the assignee, and admins.
func CanViewTicket(t *Ticket, u *User) bool {
	return IsCreator(t, u) || IsAssignee(t, u) || u.IsAdmin()
}

// CanCommentTicket uses the same predicate as viewing.
func CanCommentTicket(t *Ticket, u *User) bool {
	return CanViewTicket(t, u)
}

// CanVoteTicket allows any authenticated user except the ticket's creator,
// regardless of role.
func CanVoteTicket(t *Ticket, u *User) bool {
	return t != nil && u != nil && !IsCreator(t, u)
}

// CanDeleteTicket allows admins only.
func CanDeleteTicket(u *User) bool {
	return u.IsAdmin()
}

// CanUpdateTicket gates entry to the update operation: the creator, any
// support agent, or an admin. Per-field permissions are checked by the
// service on top of this.
func CanUpdateTicket(t *Ticket, u *User) bool {
	return IsCreator(t, u) || u.IsStaff()
}
