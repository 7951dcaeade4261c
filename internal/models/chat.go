package models

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the wire contract of POST /chat
type ChatResponse struct {
	CleanAnswer string `json:"clean_answer"`
	Tool        string `json:"tool"`
	ToolDetails string `json:"tool_details"`
	RawOutput   string `json:"raw_output"`
}
