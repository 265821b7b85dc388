package models

// Request is the submit-message payload.
type Request struct {
	Message     string `json:"message"`
	UserID      string `json:"userId,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	Confirmed   bool   `json:"confirmed,omitempty"`
}

// Response is returned for every processed message, including blocked ones.
type Response struct {
	Success              bool            `json:"success"`
	Message              string          `json:"message"`
	Intent               Intent          `json:"intent,omitempty"`
	RiskLevel            RiskLevel       `json:"riskLevel,omitempty"`
	ExecutionTrace       []ExecutionStep `json:"executionTrace"`
	Action               *Action         `json:"action,omitempty"`
	RequiresConfirmation bool            `json:"requiresConfirmation"`
	Error                string          `json:"error,omitempty"`
}

// ActionType tells the client which side effect to perform.
type ActionType string

const (
	ActionOpenURL      ActionType = "OPEN_URL"
	ActionDraftContent ActionType = "DRAFT_CONTENT"
	ActionDisplay      ActionType = "DISPLAY"
	ActionNone         ActionType = "NONE"
)

// Action is a deferred client-side side effect. The server only describes it.
type Action struct {
	Type        ActionType `json:"type"`
	URL         string     `json:"url,omitempty"`
	Content     string     `json:"content,omitempty"`
	Platform    string     `json:"platform,omitempty"`
	Description string     `json:"description,omitempty"`
}

// StepStatus is the outcome of one execution trace entry.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepWarning   StepStatus = "warning"
	StepError     StepStatus = "error"
	StepBlocked   StepStatus = "blocked"
)

// ExecutionStep is one numbered entry of the audit trail.
type ExecutionStep struct {
	Step   int        `json:"step"`
	Label  string     `json:"label"`
	Value  string     `json:"value"`
	Status StepStatus `json:"status"`
}
