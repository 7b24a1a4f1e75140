package domain

// Beach is one managed beach reports can be filed against.
// Immutable once fetched; identity is the backend-assigned ID.
type Beach struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BeachPost is a watch post belonging to exactly one beach.
// BeachID is a back-reference, not an ownership edge.
type BeachPost struct {
	ID      string `json:"id"`
	BeachID string `json:"beach_id"`
	Name    string `json:"name"`
}

// Selection is the beach/post pair currently in effect.
// Invariant: if Post is set, Post.BeachID equals Beach.ID. A beach change
// must clear the post atomically; a stale post surviving a beach change is
// a correctness bug.
type Selection struct {
	Beach *Beach
	Post  *BeachPost
}

// Complete reports whether both levels of the selection are chosen.
func (s Selection) Complete() bool {
	return s.Beach != nil && s.Post != nil
}

// ResolvedName composes the "{beach} - {post}" label that reports carry as
// a snapshot at submission time. Empty when the selection is incomplete.
func (s Selection) ResolvedName() string {
	if !s.Complete() {
		return ""
	}
	return s.Beach.Name + " - " + s.Post.Name
}
