package scheduler

// UserSource lists the users a job iterates over.
type UserSource interface {
	ListUsers() ([]string, error)
}

// StaticUsers is a fixed user list, typically from configuration.
type StaticUsers []string

// NewStaticUsers drops blanks and repeats from users, keeping first-seen order.
func NewStaticUsers(users []string) StaticUsers {
	seen := make(map[string]bool)
	var out StaticUsers
	for _, u := range users {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// ListUsers returns the configured users.
func (u StaticUsers) ListUsers() ([]string, error) {
	return u, nil
}
