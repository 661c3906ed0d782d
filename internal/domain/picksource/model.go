package picksource

import "time"

// Source tags which of a user's pick submissions counts for a period. The
// original data kept this as scattered boolean columns re-derived in every
// query; here it is resolved once and carried as an explicit variant.
type Source string

const (
	SourceNone          Source = "none"
	SourceAuthenticated Source = "authenticated"
	SourceAnonymous     Source = "anonymous"
)

func ValidSource(s Source) bool {
	return s == SourceAuthenticated || s == SourceAnonymous
}

// Override is an admin-set precedence decision for one (user, season, week).
// Week 0 scopes the override to the whole season. Re-applying the same
// override is a no-op upsert.
type Override struct {
	UserID    string
	Season    int
	Week      int
	Preferred Source
	SetBy     string
	Reason    string
	UpdatedAt time.Time
}

// Resolution is the outcome of precedence for one (user, period).
type Resolution struct {
	Source     Source
	Overridden bool
}

// Resolve applies the precedence rule: an admin override wins when it names
// a source that actually has counted picks; otherwise authenticated picks
// supersede anonymous ones. The counted set is always one source, never a
// union.
func Resolve(hasAuthenticated, hasAnonymous bool, override *Override) Resolution {
	if override != nil {
		switch override.Preferred {
		case SourceAuthenticated:
			if hasAuthenticated {
				return Resolution{Source: SourceAuthenticated, Overridden: true}
			}
		case SourceAnonymous:
			if hasAnonymous {
				return Resolution{Source: SourceAnonymous, Overridden: true}
			}
		}
	}

	switch {
	case hasAuthenticated:
		return Resolution{Source: SourceAuthenticated}
	case hasAnonymous:
		return Resolution{Source: SourceAnonymous}
	default:
		return Resolution{Source: SourceNone}
	}
}
