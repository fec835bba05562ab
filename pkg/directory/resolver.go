package directory

import (
	"context"
	"strings"
)

// Resolver maps logical notification targets (roles, user ids) onto concrete
// user id sets via the external directory.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// ResolveByRole returns the union of users holding any of the given roles,
// deduplicated by id. Role matching is case-insensitive and trims
// whitespace. No match is an empty slice, never nil and never an error.
func (r *Resolver) ResolveByRole(ctx context.Context, roles []string) ([]string, error) {
	wanted := make(map[string]bool, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			wanted[normalized] = true
		}
	}
	if len(wanted) == 0 {
		return []string{}, nil
	}

	users, err := r.dir.AllUsers(ctx)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	seen := make(map[string]bool)
	for _, user := range users {
		if !wanted[strings.ToLower(strings.TrimSpace(user.Role))] {
			continue
		}
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		ids = append(ids, user.ID)
	}
	return ids, nil
}

// ResolveByID confirms a user id against the directory. An absent user is
// reported via the bool, not as an error.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (string, bool, error) {
	if strings.TrimSpace(id) == "" {
		return "", false, nil
	}
	user, err := r.dir.FindUser(ctx, id)
	if err != nil {
		return "", false, err
	}
	if user == nil {
		return "", false, nil
	}
	return user.ID, true, nil
}
