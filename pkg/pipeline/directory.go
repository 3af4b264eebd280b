package pipeline

// Participant is a resolvable addressee: a platform user or a role.
type Participant struct {
	ID   string
	Role bool
}

// MentionToken renders the platform-native mention for the participant.
func (p Participant) MentionToken() string {
	if p.Role {
		return "<@&" + p.ID + ">"
	}
	return "<@" + p.ID + ">"
}

// Directory resolves plain-text names to participants. Implementations are
// owned by the channel adapter and are read-only from the pipeline's side;
// all lookups are case-insensitive.
type Directory interface {
	// LookupMember searches the guild member list by display name or
	// nickname.
	LookupMember(name string) (Participant, bool)
	// LookupRole searches the guild role list by name.
	LookupRole(name string) (Participant, bool)
	// LookupUser searches the cached user directory. This is the only
	// lookup available in DMs, where roles do not exist.
	LookupUser(name string) (Participant, bool)
}
