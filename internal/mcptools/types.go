package mcptools

// GetOverviewInput is the input schema for the get_overview MCP tool.
type GetOverviewInput struct {
	From string `json:"from" jsonschema-description:"ISO date lower bound (inclusive), YYYY-MM-DD"`
	To   string `json:"to" jsonschema-description:"ISO date upper bound (inclusive), YYYY-MM-DD"`
}

// GetOverviewOutput is the output schema for the get_overview MCP tool.
type GetOverviewOutput struct {
	Items []ItemResult `json:"items"`
}

// ItemResult is one overview item; recurring ids are "<ruleId>@<date>".
type ItemResult struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	DateISO  string `json:"dateISO"`
	TimeHHMM string `json:"timeHHMM,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// GetDayInput is the input schema for the get_day MCP tool.
type GetDayInput struct {
	Date string `json:"date" jsonschema-description:"ISO date, YYYY-MM-DD; empty means today"`
}

// GetDayOutput is the output schema for the get_day MCP tool.
type GetDayOutput struct {
	Date        string             `json:"date"`
	DayLog      *DayLogResult      `json:"dayLog"`
	Occurrences []OccurrenceResult `json:"occurrences"`
}

// DayLogResult is a day log in get_day output.
type DayLogResult struct {
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt"`
}

// OccurrenceResult is a recurring occurrence in get_day output; ID is the
// rule ID.
type OccurrenceResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
	On    string `json:"on"`
}

// ListRulesInput is the input schema for the list_rules MCP tool.
type ListRulesInput struct {
	Limit int `json:"limit" jsonschema-description:"Maximum number of rules to return"`
}

// ListRulesOutput is the output schema for the list_rules MCP tool.
type ListRulesOutput struct {
	Rules []RuleResult `json:"rules"`
}

// RuleResult represents a rule in list_rules output.
type RuleResult struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Frequency string   `json:"frequency"`
	BaseDate  string   `json:"base_date"`
	Shared    bool     `json:"shared"`
	Skips     []string `json:"skips,omitempty"`
	Overrides []string `json:"overrides,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// WriteDayLogInput is the input schema for the write_day_log MCP tool.
type WriteDayLogInput struct {
	Date    string `json:"date" jsonschema-description:"ISO date, YYYY-MM-DD; empty means today"`
	Content string `json:"content" jsonschema-description:"Markdown content; replaces any existing log for the day"`
}

// WriteDayLogOutput is the output schema for the write_day_log MCP tool.
type WriteDayLogOutput struct {
	Date    string `json:"date"`
	Preview string `json:"preview"`
}
