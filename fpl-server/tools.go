package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/quantti/tapas-fpl-app/internal/fetch"
	"github.com/quantti/tapas-fpl-app/internal/metrics"
	"github.com/quantti/tapas-fpl-app/internal/service"
)

type NoArgs struct{}

type GameweekArgs struct {
	GW int `json:"gw,omitempty" jsonschema:"Gameweek (0 = current)" validate:"gte=0,lte=38"`
}

type EntryGWArgs struct {
	EntryID int `json:"entry_id" jsonschema:"Manager entry id (required)" validate:"required,gt=0"`
	GW      int `json:"gw,omitempty" jsonschema:"Gameweek (0 = current)" validate:"gte=0,lte=38"`
}

type LeagueGWArgs struct {
	LeagueID int `json:"league_id" jsonschema:"Classic league id (required)" validate:"required,gt=0"`
	GW       int `json:"gw,omitempty" jsonschema:"Gameweek (0 = current)" validate:"gte=0,lte=38"`
}

type HeadToHeadArgs struct {
	LeagueID int `json:"league_id,omitempty" jsonschema:"Classic league id for the league template (optional)" validate:"gte=0"`
	EntryA   int `json:"entry_a" jsonschema:"First manager entry id (required)" validate:"required,gt=0"`
	EntryB   int `json:"entry_b" jsonschema:"Second manager entry id (required)" validate:"required,gt=0,nefield=EntryA"`
	GW       int `json:"gw,omitempty" jsonschema:"Gameweek (0 = current)" validate:"gte=0,lte=38"`
}

type ManagerLookupArgs struct {
	LeagueID int    `json:"league_id" jsonschema:"Classic league id (required)" validate:"required,gt=0"`
	Query    string `json:"query" jsonschema:"Team or manager name to search for (required)" validate:"required,min=2,max=64"`
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names so errors match what the
// caller sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func newMCPServer(dash *service.Dashboard, log logrus.FieldLogger) (*mcp.Server, []toolInfo) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		nil,
	)

	registry := make([]toolInfo, 0, 16)

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "game_status",
		Description: "Current and next gameweek, deadlines, fixture progress and points status (final/live/pending)",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args NoArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.GameStatus(ctx))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "fixture_status",
		Description: "Per-fixture phase for a gameweek with provisional or official bonus",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GameweekArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.FixtureStatus(ctx, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "fixture_difficulty",
		Description: "Teams ranked by the ease of their next fixtures",
	}, fixtureDifficultyTool(dash))

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "live_points",
		Description: "A manager's live gameweek points including provisional bonus and hits",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EntryGWArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.LivePoints(ctx, args.EntryID, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "free_transfers",
		Description: "Free transfers a manager has banked for the gameweek, with the season timeline",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EntryGWArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.FreeTransfers(ctx, args.EntryID, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "league_free_transfers",
		Description: "Free transfers for every manager in a classic league",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.LeagueFreeTransfers(ctx, args.LeagueID, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "chip_status",
		Description: "Chips used and still available in each half of the season",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EntryGWArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.ChipStatus(ctx, args.EntryID, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "template_team",
		Description: "Most-owned valid starting XI across a classic league",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.TemplateTeam(ctx, args.LeagueID, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "recommendations",
		Description: "Punt, defensive and sell recommendations based on league ownership",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LeagueGWArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.Recommendations(ctx, args.LeagueID, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "head_to_head",
		Description: "Season comparison of two managers: points, hits, captains, chips, roster overlap and playstyle",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HeadToHeadArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.HeadToHead(ctx, args.LeagueID, args.EntryA, args.EntryB, args.GW))
	})

	addTool(server, &registry, log, &mcp.Tool{
		Name:        "manager_lookup",
		Description: "Find managers in a classic league by team or player name",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ManagerLookupArgs) (*mcp.CallToolResult, error) {
		return toolValue(dash.FindManager(ctx, args.LeagueID, args.Query))
	})

	return server, registry
}

// addTool registers the tool, validates its arguments before the handler
// runs and counts the outcome.
func addTool[T any](server *mcp.Server, registry *[]toolInfo, log logrus.FieldLogger, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args T) (*mcp.CallToolResult, any, error) {
		var (
			res *mcp.CallToolResult
			err error
		)
		if verr := validate.Struct(args); verr != nil {
			err = argumentError(verr)
		} else {
			res, err = handler(ctx, req, args)
		}
		metrics.ToolCalls.WithLabelValues(tool.Name, toolResultLabel(err)).Inc()
		if err != nil {
			log.WithFields(logrus.Fields{"tool": tool.Name}).WithError(err).Warn("tool call failed")
			return toolError(err), nil, nil
		}
		return res, nil, nil
	})
}

func argumentError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", service.ErrInvalidArgument, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", fe.Field(), rule))
	}
	return fmt.Errorf("%w: %s", service.ErrInvalidArgument, strings.Join(parts, ", "))
}

func toolResultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, service.ErrInvalidArgument):
		return metrics.ResultInvalid
	case errors.Is(err, fetch.ErrRecalculating):
		return metrics.ResultRecalculating
	case errors.Is(err, fetch.ErrUnavailable):
		return metrics.ResultUnavailable
	default:
		return metrics.ResultError
	}
}

// toolValue renders v as indented JSON text content.
func toolValue(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return nil, err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return toolJSONBytes(b), nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
