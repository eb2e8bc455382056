package model

// ErrorResponse is the wire shape of every client-facing rejection.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
	API     string `json:"api"`
}

type HealthResponse struct {
	Status   string                  `json:"status"`
	Version  string                  `json:"version"`
	Service  string                  `json:"service"`
	Database string                  `json:"database"`
	Services map[string]ServiceState `json:"services,omitempty"`
}

type ServiceState struct {
	Name      string `json:"name"`
	Running   bool   `json:"running"`
	StartedAt string `json:"started_at,omitempty"`
}

type MeResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}
