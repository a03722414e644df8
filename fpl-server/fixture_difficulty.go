package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quantti/tapas-fpl-app/internal/service"
)

type FixtureDifficultyArgs struct {
	GW    int `json:"gw,omitempty" jsonschema:"Rank fixtures after this gameweek (0 = current)" validate:"gte=0,lte=38"`
	Limit int `json:"limit,omitempty" jsonschema:"Limit teams returned (0 = all)" validate:"gte=0,lte=20"`
	Team  int `json:"team,omitempty" jsonschema:"Only this team id (0 = all)" validate:"gte=0"`
}

func fixtureDifficultyTool(dash *service.Dashboard) func(context.Context, *mcp.CallToolRequest, FixtureDifficultyArgs) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args FixtureDifficultyArgs) (*mcp.CallToolResult, error) {
		out, err := dash.FixtureDifficulty(ctx, args.GW)
		if err != nil {
			return nil, err
		}
		return toolValue(filterDifficulty(out, args), nil)
	}
}

// filterDifficulty keeps the ranking order and applies the team filter
// before the limit.
func filterDifficulty(fd *service.FixtureDifficulty, args FixtureDifficultyArgs) *service.FixtureDifficulty {
	teams := fd.Teams
	if args.Team > 0 {
		teams = nil
		for _, td := range fd.Teams {
			if td.Team == args.Team {
				teams = append(teams, td)
			}
		}
		if teams == nil {
			teams = []service.TeamDifficulty{}
		}
	}
	if args.Limit > 0 && len(teams) > args.Limit {
		teams = teams[:args.Limit]
	}
	return &service.FixtureDifficulty{Gameweek: fd.Gameweek, Teams: teams}
}
