package identity

import (
	"context"
	"fmt"
)

type User struct {
	ID          string
	DisplayName string
}

// Directory resolves display names for summary rows. A missing or failing
// lookup must never block aggregation; callers fall back to
// FallbackDisplayName.
type Directory interface {
	ListUsers(ctx context.Context, ids []string) (map[string]User, error)
}

func FallbackDisplayName(userID string) string {
	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("user-%s", short)
}
