package models

// Group is a set of members sharing a ledger.
// A group is soft-deleted once every member has settled in every currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip").
	Name string

	// Members is the list of current member ids, sorted.
	Members []string

	// Deleted marks the group as soft-deleted.
	Deleted bool

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether member currently belongs to the group.
func (g *Group) HasMember(member string) bool {
	for _, m := range g.Members {
		if m == member {
			return true
		}
	}
	return false
}
