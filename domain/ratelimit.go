package domain

type RateLimitResult struct {
	Allow     bool
	Remaining int
}
