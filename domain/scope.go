package domain

// AdScopeKind selects which ads a listing is narrowed to.
type AdScopeKind string

const (
	AdScopeAll       AdScopeKind = "all"
	AdScopeOwn       AdScopeKind = "own"
	AdScopeFollowed  AdScopeKind = "followed"
	AdScopeCommented AdScopeKind = "commented"
)

// AdScope narrows an ad listing. UserID is ignored for AdScopeAll.
type AdScope struct {
	Kind   AdScopeKind `json:"kind"`
	UserID int64       `json:"userId,omitempty"`
}

// NeedsUser reports whether the scope is relative to a user.
func (s AdScope) NeedsUser() bool {
	return s.Kind != AdScopeAll && s.Kind != ""
}

func (k AdScopeKind) Valid() bool {
	switch k {
	case AdScopeAll, AdScopeOwn, AdScopeFollowed, AdScopeCommented:
		return true
	}
	return false
}

// UserScope narrows a user listing. FollowedBy = 0 lists every user.
type UserScope struct {
	FollowedBy int64 `json:"followedBy,omitempty"`
}
