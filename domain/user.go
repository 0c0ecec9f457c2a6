package domain

// UserProfile holds the two counters the aggregator needs from the
// upstream user object. The full object is proxied to callers as is.
type UserProfile struct {
	ReceivedWorksCount   int `json:"received_works_count"`
	SentPublicWorksCount int `json:"sent_public_works_count"`
}

func (p UserProfile) WorksTotal(role Role) int {
	if role == RoleCreator {
		return p.ReceivedWorksCount
	}
	return p.SentPublicWorksCount
}
