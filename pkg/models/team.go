package models

// AgentStatus is a team member's current working state
type AgentStatus string

const (
	AgentStatusWorking AgentStatus = "WORKING"
	AgentStatusIdle    AgentStatus = "IDLE"
	AgentStatusOffline AgentStatus = "OFFLINE"
)

// TeamMember is a human or agent shown on the team-status view
type TeamMember struct {
	ID               string      `json:"id" db:"id"`
	Name             string      `json:"name" db:"name"`
	Role             string      `json:"role" db:"role"`
	Department       string      `json:"department" db:"department"`
	Avatar           string      `json:"avatar" db:"avatar"`
	CurrentTask      string      `json:"current_task" db:"current_task"`
	Status           AgentStatus `json:"status" db:"status"`
	Responsibilities string      `json:"responsibilities" db:"responsibilities"`
}

// TeamFilter is the set of equality filters accepted by team list reads
type TeamFilter struct {
	Status     string
	Department string
}

// UpdateTeamMemberRequest is the request body for patching a team member
type UpdateTeamMemberRequest struct {
	CurrentTask *string `json:"current_task,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=WORKING IDLE OFFLINE"`
}
