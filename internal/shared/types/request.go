package types

import "encoding/json"

// DefaultModel is used when neither the request nor the environment names a model.
const DefaultModel = "stepfun/step-3.5-flash:free"

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message          string          `json:"message"`
	Context          json.RawMessage `json:"context,omitempty"`
	OpenRouterAPIKey string          `json:"openRouterApiKey,omitempty"`
	OpenRouterModel  string          `json:"openRouterModel,omitempty"`
}

// ResearchRequest is the body of POST /research
type ResearchRequest struct {
	Query        string `json:"query"`
	GoogleAPIKey string `json:"googleApiKey,omitempty"`
	CseID        string `json:"cseId,omitempty"`
}

// ErrorResponse is the JSON body of every non-2xx answer
type ErrorResponse struct {
	Error string `json:"error"`
}
