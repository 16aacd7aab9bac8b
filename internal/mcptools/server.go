package mcptools

import (
	"context"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/shell"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps is what the tools read from and write to.
type Deps struct {
	Service *agenda.Service
	Store   storage.Storage
	// Owner scopes every tool call.
	Owner string
	// DataDir is used for prompt cache invalidation after writes; "" skips it.
	DataDir string
}

// NewDaybookMCPServer creates an in-memory MCP server exposing daybook
// tools. Returns the server and a client transport for connecting to it.
func NewDaybookMCPServer(deps Deps) (*mcp.Server, mcp.Transport) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := CreateMCPServer(deps)

	go func() {
		_, _ = server.Connect(context.Background(), serverTransport, nil)
	}()

	return server, clientTransport
}

// CreateMCPServer creates an MCP server with registered daybook tools.
func CreateMCPServer(deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "daybook",
		Version: "1.0.0",
	}, nil)

	// Read tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_overview",
		Description: "Merged work entries, due todos and recurring anniversaries for an inclusive date range",
	}, GetOverviewHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_day",
		Description: "The day log and recurring anniversaries for one date",
	}, GetDayHandler(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List recurring yearly and monthly rules",
	}, ListRulesHandler(deps))

	// Write tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_day_log",
		Description: "Create or replace the day log for a date",
	}, WriteDayLogHandler(deps))

	return server
}

// GetOverviewHandler returns the handler function for the get_overview MCP tool.
func GetOverviewHandler(deps Deps) func(ctx context.Context, req *mcp.CallToolRequest, input GetOverviewInput) (*mcp.CallToolResult, GetOverviewOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetOverviewInput) (*mcp.CallToolResult, GetOverviewOutput, error) {
		items, err := deps.Service.Overview(ctx, deps.Owner, input.From, input.To)
		if err != nil {
			return nil, GetOverviewOutput{}, err
		}
		return nil, GetOverviewOutput{Items: itemResults(items)}, nil
	}
}

// GetDayHandler returns the handler function for the get_day MCP tool.
func GetDayHandler(deps Deps) func(ctx context.Context, req *mcp.CallToolRequest, input GetDayInput) (*mcp.CallToolResult, GetDayOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetDayInput) (*mcp.CallToolResult, GetDayOutput, error) {
		date, err := dateOrToday(input.Date, deps.Service.Today())
		if err != nil {
			return nil, GetDayOutput{}, err
		}
		detail, err := deps.Service.DayOf(ctx, deps.Owner, date)
		if err != nil {
			return nil, GetDayOutput{}, err
		}
		return nil, dayOutput(detail), nil
	}
}

// ListRulesHandler returns the handler function for the list_rules MCP tool.
func ListRulesHandler(deps Deps) func(ctx context.Context, req *mcp.CallToolRequest, input ListRulesInput) (*mcp.CallToolResult, ListRulesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListRulesInput) (*mcp.CallToolResult, ListRulesOutput, error) {
		rules, err := deps.Service.Rules(ctx, deps.Owner)
		if err != nil {
			return nil, ListRulesOutput{}, err
		}

		limit := input.Limit
		if limit <= 0 || limit > len(rules) {
			limit = len(rules)
		}

		results := make([]RuleResult, 0, limit)
		for _, r := range rules[:limit] {
			results = append(results, ruleResult(r))
		}
		return nil, ListRulesOutput{Rules: results}, nil
	}
}

// WriteDayLogHandler returns the handler function for the write_day_log MCP tool.
func WriteDayLogHandler(deps Deps) func(ctx context.Context, req *mcp.CallToolRequest, input WriteDayLogInput) (*mcp.CallToolResult, WriteDayLogOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input WriteDayLogInput) (*mcp.CallToolResult, WriteDayLogOutput, error) {
		date, err := dateOrToday(input.Date, deps.Service.Today())
		if err != nil {
			return nil, WriteDayLogOutput{}, err
		}

		saved, err := deps.Store.PutDayLog(ctx, entry.DayLog{
			Owner:   deps.Owner,
			Date:    date,
			Content: input.Content,
		})
		if err != nil {
			return nil, WriteDayLogOutput{}, err
		}

		if deps.DataDir != "" {
			_ = shell.InvalidateCache(deps.DataDir, deps.Owner)
		}

		return nil, WriteDayLogOutput{
			Date:    saved.Date.String(),
			Preview: saved.Preview(200),
		}, nil
	}
}
