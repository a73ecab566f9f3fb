package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/reachflow/funnel"
	"github.com/reachflow/funnel/internal/logging"
	"github.com/reachflow/funnel/pkg/domain"
	"github.com/reachflow/funnel/pkg/persistence"
	"github.com/reachflow/funnel/pkg/ports"
	"github.com/reachflow/funnel/pkg/registry"
	"github.com/reachflow/funnel/pkg/runner"
)

const catalogURI = "funnel://catalog"

// StateResponse is the structured result of start and navigate.
type StateResponse struct {
	State *domain.State `json:"state" jsonschema_description:"Opaque visitor state, pass it back to navigate"`
	View  domain.View   `json:"view" jsonschema_description:"What to show for the current step"`
}

// Server exposes funnels as MCP tools. Like the HTTP adapter it is stateless:
// the caller carries the visitor state between tool calls.
type Server struct {
	engines   *registry.Registry
	submitter ports.Submitter
	journal   ports.Journal
	recorder  *persistence.Recorder
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJournal records every submission attempt, under the ID of the funnel it came from.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// NewServer creates a new MCP Server instance. submitter receives leads from
// wizard submissions and from submit_lead.
func NewServer(loader ports.FunnelLoader, submitter ports.Submitter, opts ...Option) *Server {
	s := &Server{
		submitter: submitter,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("funnel-mcp", strings.TrimSpace(funnel.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.journal != nil && s.submitter != nil {
		s.recorder = persistence.NewRecorder(s.submitter, s.journal, persistence.WithLogger(s.logger))
	}
	s.engines = registry.New(loader, func(id string) []funnel.Option {
		var sub ports.Submitter = s.submitter
		if s.recorder != nil {
			sub = s.recorder.ForFunnel(id)
		}
		return []funnel.Option{funnel.WithSubmitter(sub), funnel.WithLogger(s.logger)}
	})
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

type funnelArgs struct {
	FunnelID string `mapstructure:"funnel_id"`
}

type navigateArgs struct {
	FunnelID string `mapstructure:"funnel_id"`
	State    string `mapstructure:"state"`
	Action   string `mapstructure:"action"`
	Option   string `mapstructure:"option"`
	Key      string `mapstructure:"key"`
	Value    string `mapstructure:"value"`
}

type submitArgs struct {
	Lead string `mapstructure:"lead"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_funnels",
		mcp.WithDescription("List the IDs of the available funnels."),
	), s.handleListFunnels)

	s.mcpServer.AddTool(mcp.NewTool("describe_funnel",
		mcp.WithDescription("Get the full definition of a funnel: steps, options, field keys."),
		mcp.WithString("funnel_id", mcp.Required(), mcp.Description("Funnel ID")),
	), s.handleDescribe)

	startTool := mcp.NewTool("start",
		mcp.WithDescription("Start a new visitor on a funnel and render its first step."),
		mcp.WithString("funnel_id", mcp.Required(), mcp.Description("Funnel ID")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	navigateTool := mcp.NewTool("navigate",
		mcp.WithDescription("Apply one transition to a visitor state. Advancing from the last step submits the lead."),
		mcp.WithString("funnel_id", mcp.Required(), mcp.Description("Funnel ID")),
		mcp.WithString("state", mcp.Required(), mcp.Description("JSON state returned by start or navigate")),
		mcp.WithString("action", mcp.Required(), mcp.Description("One of select, set_field, advance, retreat, submit"),
			mcp.Enum(funnel.ActionSelect, funnel.ActionSetField, funnel.ActionAdvance, funnel.ActionRetreat, funnel.ActionSubmit)),
		mcp.WithString("option", mcp.Description("Option to select (select)")),
		mcp.WithString("key", mcp.Description("Field key (set_field)")),
		mcp.WithString("value", mcp.Description("Field value (set_field)")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(navigateTool, mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("submit_lead",
		mcp.WithDescription("Forward a flat Lead Record to the record-keeping backend."),
		mcp.WithString("lead", mcp.Required(), mcp.Description("JSON object of string fields")),
	), s.handleSubmitLead)
}

func (s *Server) handleListFunnels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.engines.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return textJSON(ids)
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args funnelArgs
	if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	eng, err := s.engines.Engine(ctx, args.FunnelID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textJSON(eng.Inspect())
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (StateResponse, error) {
	var args funnelArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return StateResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	eng, err := s.engines.Engine(ctx, args.FunnelID)
	if err != nil {
		return StateResponse{}, err
	}
	return render(ctx, eng, eng.Start(ctx))
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest, raw map[string]any) (StateResponse, error) {
	var args navigateArgs
	if err := mapstructure.Decode(raw, &args); err != nil {
		return StateResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	eng, err := s.engines.Engine(ctx, args.FunnelID)
	if err != nil {
		return StateResponse{}, err
	}

	var state domain.State
	if err := json.Unmarshal([]byte(args.State), &state); err != nil {
		return StateResponse{}, fmt.Errorf("%w: state is not valid JSON", domain.ErrInvalidState)
	}

	action := funnel.Action{Type: args.Action, Key: args.Key}
	if action.Option, err = runner.SanitizeInput(args.Option); err == nil {
		action.Value, err = runner.SanitizeInput(args.Value)
	}
	if err != nil {
		s.logger.Warn("MCP Navigate: input rejected", "error", err)
		return StateResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	next, err := eng.Apply(ctx, &state, action)
	if err != nil {
		return StateResponse{}, err
	}
	return render(ctx, eng, next)
}

func (s *Server) handleSubmitLead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args submitArgs
	if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	var fields map[string]string
	if err := json.Unmarshal([]byte(args.Lead), &fields); err != nil {
		return mcp.NewToolResultError("lead must be a JSON object of strings"), nil
	}
	clean, err := runner.SanitizeLead(fields)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("input rejected: %v", err)), nil
	}
	var sub ports.Submitter = s.submitter
	if s.recorder != nil {
		sub = s.recorder
	}
	if sub == nil {
		return mcp.NewToolResultError(domain.ErrMisconfigured.Error()), nil
	}

	result, err := sub.Submit(ctx, domain.LeadRecord(clean))
	switch {
	case errors.Is(err, domain.ErrMisconfigured), errors.Is(err, domain.ErrSubmissionInFlight):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("submission failed: %v", err)), nil
	case !result.Succeeded():
		return mcp.NewToolResultError("submission failed: " + result.Reason), nil
	}
	return textJSON(result)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Funnel Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engines.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list funnels: %w", err)
		}
		defs := make([]domain.Funnel, 0, len(ids))
		for _, id := range ids {
			eng, err := s.engines.Engine(ctx, id)
			if err != nil {
				return nil, err
			}
			defs = append(defs, eng.Inspect())
		}
		data, err := json.Marshal(defs)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func render(ctx context.Context, eng *funnel.Engine, state *domain.State) (StateResponse, error) {
	view, err := eng.Render(ctx, state)
	if err != nil {
		return StateResponse{}, err
	}
	return StateResponse{State: state, View: view}, nil
}

func textJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
