package auth

// Known OAuth scopes used by the service.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
	ScopeScoresWrite     = "scores:write"
	ScopeScoresRead      = "scores:read"
)
