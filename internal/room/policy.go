package room

// CanEdit decides whether a connection may mutate a room's document. The
// creator may always edit; everyone else only in collaborative rooms. This is
// both the advisory isEditable flag sent to clients and the server-side
// enforcement on document updates, so a client ignoring the flag gains
// nothing.
func CanEdit(r *Room, connID string) bool {
	return r.Mode == ModeCollaborative || connID == r.CreatorID
}
