package ghl

import "fmt"

// customField is the key/value pair shape the v2 contacts API accepts.
type customField struct {
	Key   string `json:"key"`
	Value string `json:"field_value"`
}

// contactPayload is the POST contacts/ body.
type contactPayload struct {
	Email        string        `json:"email"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Phone        string        `json:"phone"`
	LocationID   string        `json:"locationId,omitempty"`
	Source       string        `json:"source"`
	Tags         []string      `json:"tags,omitempty"`
	CustomFields []customField `json:"customFields,omitempty"`
}

// opportunityPayload is the POST opportunities/ body per the v2 API: the
// stage field is pipelineStageId (not stageId) and the title field is name.
type opportunityPayload struct {
	ContactID       string `json:"contactId"`
	LocationID      string `json:"locationId,omitempty"`
	PipelineID      string `json:"pipelineId"`
	PipelineStageID string `json:"pipelineStageId"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	MonetaryValue   int    `json:"monetaryValue"`
}

// notePayload attaches a free-text note to a contact or opportunity.
type notePayload struct {
	Body   string `json:"body"`
	UserID string `json:"userId,omitempty"`
}

// SubmissionError reports a failed CRM call. Only the create_contact step
// surfaces one to callers; enrichment steps log and continue.
type SubmissionError struct {
	Step       string
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ghl: %s failed: status %d: %s", e.Step, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ghl: %s failed: %s", e.Step, e.Message)
}
