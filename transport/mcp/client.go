package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/foodchain/game/bot"
	"github.com/wricardo/mcp-training/foodchain/game/config"
	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/service"
	"github.com/wricardo/mcp-training/foodchain/game/session"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"FoodChain",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`FoodChain - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Three animals (PREY, PREDATOR, APEX) take turns on a square board for a fixed
number of rounds. Eat what your role may eat, avoid being eaten. The highest
score after the last round wins.

AVAILABLE TOOLS:
- new_game: Start a game (era, grid size, rounds, human roles, auto play)
- game_state: Board, scores, cooldowns and whose turn it is
- legal_moves: Every cell a role may move to right now
- classify_move: Check a single move without playing it
- move: Play a move - requires intent explanation
- play_bots: Let bots play until a human role is to move
- winner: Current standing
- event_history: Recent game events
- save_game / load_game / list_saves: Save slots
- list_eras: Food chains available in each era
- game_rules: Full rules

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func objectSchema(props map[string]interface{}, required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

var roleProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"PREY", "PREDATOR", "APEX"},
	"description": "Role to act for",
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Game lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game, replacing the current one",
		InputSchema: objectSchema(map[string]interface{}{
			"era": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"PAST", "PRESENT", "FUTURE"},
				"description": "Era selecting ability rules (default PAST)",
			},
			"grid_size": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"SMALL", "MEDIUM", "LARGE"},
				"description": "Board size: 10, 15 or 20 (default SMALL)",
			},
			"total_rounds": map[string]interface{}{
				"type":        "integer",
				"description": "Rounds to play, 1-1000 (default 20)",
			},
			"humans": map[string]interface{}{
				"type":        "array",
				"items":       roleProperty,
				"description": "Roles you control; the rest are bots (default PREDATOR)",
			},
			"auto_play": map[string]interface{}{
				"type":        "boolean",
				"description": "Play bot turns automatically after each of your moves",
			},
		}),
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, scores, cooldowns and turn",
		InputSchema: objectSchema(map[string]interface{}{}),
	}, c.handleGameState)

	// Moves
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List every destination a role may choose right now",
		InputSchema: objectSchema(map[string]interface{}{"role": roleProperty}, "role"),
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "classify_move",
		Description: "Classify a move as WALK, ABILITY, SKIP or NONE without playing it",
		InputSchema: objectSchema(map[string]interface{}{
			"role": roleProperty,
			"row":  map[string]interface{}{"type": "integer", "description": "Target row (0 is the top)"},
			"col":  map[string]interface{}{"type": "integer", "description": "Target column (0 is the left)"},
		}, "role", "row", "col"),
	}, c.handleClassifyMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move a role to a cell; moving to its own cell skips the turn",
		InputSchema: objectSchema(map[string]interface{}{
			"role": roleProperty,
			"row":  map[string]interface{}{"type": "integer", "description": "Target row (0 is the top)"},
			"col":  map[string]interface{}{"type": "integer", "description": "Target column (0 is the left)"},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
			},
		}, "role", "row", "col"),
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play_bots",
		Description: "Let bot-controlled roles play until a human role is to move or the game ends",
		InputSchema: objectSchema(map[string]interface{}{}),
	}, c.handlePlayBots)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "winner",
		Description: "Get the current standing (final once the game is over)",
		InputSchema: objectSchema(map[string]interface{}{}),
	}, c.handleWinner)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get recent game events, newest first",
		InputSchema: objectSchema(map[string]interface{}{
			"page":  map[string]interface{}{"type": "integer", "description": "Page number (default 1)"},
			"limit": map[string]interface{}{"type": "integer", "description": "Events per page (default 20, max 100)"},
		}),
	}, c.handleEventHistory)

	// Save slots
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Save the current game to a slot",
		InputSchema: objectSchema(map[string]interface{}{
			"slot": map[string]interface{}{
				"type":        "string",
				"description": "Slot name: lowercase letters, digits, '_' or '-' (empty generates one)",
			},
		}),
	}, c.handleSaveGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_game",
		Description: "Replace the current game with a saved one",
		InputSchema: objectSchema(map[string]interface{}{
			"slot": map[string]interface{}{"type": "string", "description": "Slot to load"},
		}, "slot"),
	}, c.handleLoadGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_saves",
		Description: "List saved games, newest first",
		InputSchema: objectSchema(map[string]interface{}{}),
	}, c.handleListSaves)

	// Reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_eras",
		Description: "List the food chains available in each era",
		InputSchema: objectSchema(map[string]interface{}{}),
	}, c.handleListEras)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete game rules",
		InputSchema: objectSchema(map[string]interface{}{}),
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func roleArg(args map[string]interface{}) (engine.Role, error) {
	name, _ := args["role"].(string)
	return engine.ParseRole(name)
}

// Tool handlers

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	req := service.NewGameRequest{}
	req.Era, _ = args["era"].(string)
	req.GridSize, _ = args["grid_size"].(string)
	req.TotalRounds, _ = intArg(args, "total_rounds")
	req.AutoPlay, _ = args["auto_play"].(bool)
	if humans, ok := args["humans"].([]interface{}); ok {
		req.Humans = make([]string, 0, len(humans))
		for _, h := range humans {
			if s, ok := h.(string); ok {
				req.Humans = append(req.Humans, s)
			}
		}
	}

	var info service.GameInfo
	if err := c.apiCall(ctx, "POST", "/api/game", req, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.GameInfo
	if err := c.apiCall(ctx, "GET", "/api/game", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameInfo(&info)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := roleArg(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp struct {
		Moves []engine.LegalMove `json:"moves"`
	}
	if err := c.apiCall(ctx, "GET", "/api/game/moves?role="+url.QueryEscape(string(role)), nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatLegalMoves(role, resp.Moves)), nil
}

func (c *Client) handleClassifyMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	role, err := roleArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	var resp struct {
		Kind engine.MoveKind `json:"kind"`
	}
	path := fmt.Sprintf("/api/game/classify?role=%s&row=%d&col=%d", url.QueryEscape(string(role)), row, col)
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s to %s: %s", role, engine.Pos(row, col), resp.Kind)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	role, err := roleArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	// intent is for the agent's own reasoning and is not sent to the API

	body := map[string]interface{}{"role": role, "row": row, "col": col}
	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", "/api/game/move", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handlePlayBots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result service.BotsResult
	if err := c.apiCall(ctx, "POST", "/api/game/bots", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	if len(result.Turns) == 0 {
		sb.WriteString("No bot turns to play.\n")
	}
	writeBotTurns(&sb, result.Turns)
	if result.State != nil {
		sb.WriteString("\n")
		sb.WriteString(formatSnapshot(result.State))
	}
	if result.Winner != nil {
		fmt.Fprintf(&sb, "\n🏁 GAME OVER: %s\n", result.Winner.Text)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleWinner(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var w service.WinnerInfo
	if err := c.apiCall(ctx, "GET", "/api/game/winner", nil, &w); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := "Current leader"
	if w.GameOver {
		status = "Final result"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", status, w.Text)), nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	page, _ := intArg(args, "page")
	limit, _ := intArg(args, "limit")

	var history service.HistoryResponse
	path := fmt.Sprintf("/api/game/history?page=%d&limit=%d", page, limit)
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, _ := arguments(request)["slot"].(string)

	var info session.SaveInfo
	if err := c.apiCall(ctx, "POST", "/api/saves", map[string]string{"slot": slot}, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved to slot %q (%s, round %d/%d)",
		info.Slot, info.Era, info.Round, info.TotalRounds)), nil
}

func (c *Client) handleLoadGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slot, _ := arguments(request)["slot"].(string)
	if slot == "" {
		return mcp.NewToolResultError("slot is required"), nil
	}

	var info service.GameInfo
	if err := c.apiCall(ctx, "POST", "/api/saves/"+url.PathEscape(slot)+"/load", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Loaded slot " + slot + "\n\n" + formatGameInfo(&info)), nil
}

func (c *Client) handleListSaves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var saves []*session.SaveInfo
	if err := c.apiCall(ctx, "GET", "/api/saves", nil, &saves); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(saves) == 0 {
		return mcp.NewToolResultText("No saved games."), nil
	}

	var sb strings.Builder
	sb.WriteString("Saved games:\n")
	for _, s := range saves {
		over := ""
		if s.GameOver {
			over = " (finished)"
		}
		fmt.Fprintf(&sb, "- %s: %s %s, round %d/%d, %s to move%s, saved %s\n",
			s.Slot, s.Era, s.GridSize, s.Round, s.TotalRounds, s.Turn, over, s.SavedAt.Format(time.RFC3339))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleListEras(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var eras []config.EraInfo
	if err := c.apiCall(ctx, "GET", "/api/eras", nil, &eras); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	for _, info := range eras {
		fmt.Fprintf(&sb, "%s (%s):\n", info.Era, info.Filename)
		if info.Error != "" {
			fmt.Fprintf(&sb, "  unavailable: %s\n", info.Error)
			continue
		}
		for _, chain := range info.Chains {
			fmt.Fprintf(&sb, "  - apex %s, predator %s, prey %s, food %s\n",
				chain.Apex, chain.Predator, chain.Prey, chain.Food)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameRules), nil
}

const gameRules = `FoodChain - Complete Rules

GAME OBJECTIVE:
Score the most points by the end of the last round.

GRID LEGEND:
- Y = PREY      P = PREDATOR      A = APEX      F = FOOD      . = empty
- Row 0 is the top, column 0 the left. Positions are written (row,col).

TURNS:
- Each round the roles act in order: PREY, PREDATOR, APEX.
- A turn is exactly one move. Moving to your own cell skips the turn.
- The game ends after the APEX turn of the last round.

MOVEMENT:
- WALK: one step to any of the 8 neighbouring cells.
- ABILITY: a longer move allowed by the era, only when cooldown is 0.
  After using it the cooldown is set and drops by 1 at the end of each round.

WHAT YOU MAY ENTER:
- PREY: empty cells and FOOD
- PREDATOR: empty cells and PREY
- APEX: empty cells, PREY and PREDATOR

SCORING:
- PREY eats FOOD: +3 to the prey, the food reappears on a random empty cell.
- PREDATOR eats PREY: +3 to the predator, -1 to the prey, which reappears.
- APEX eats PREY or PREDATOR: +1 to the apex, -1 to the victim, which reappears.

ABILITIES BY ERA (distance counts king moves):
PAST (cooldown 2 for everyone)
- APEX: distance 2 in a straight line or an exact 2x2 diagonal
- PREDATOR: distance 2 in a straight line
- PREY: any cell at distance 2
PRESENT
- APEX: distance 2 or 3 (cooldown 3)
- PREDATOR: no cooldown. When next to the APEX it may take two steps
  in one turn (a dash), or jump 2 in a straight line
- PREY: distance 2 (cooldown 3)
FUTURE
- APEX: distance 2 or 3 (cooldown 3)
- PREDATOR: distance 2 straight or diagonal (cooldown 2)
- PREY: distance exactly 3, but not onto FOOD (cooldown 2)

WINNING:
Every role tied for the highest score wins.

TIPS:
- Use legal_moves before moving; it lists walks, abilities and dashes.
- classify_move checks one target without spending your turn.

Good luck surviving the food chain!`

// Formatting helpers

func formatGameInfo(info *service.GameInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game %s\n", info.ID)
	fmt.Fprintf(&sb, "Chain: apex %s, predator %s, prey %s, food %s\n",
		info.Chain.Apex, info.Chain.Predator, info.Chain.Prey, info.Chain.Food)
	humans := make([]string, len(info.Humans))
	for i, h := range info.Humans {
		humans[i] = string(h)
	}
	if len(humans) == 0 {
		humans = []string{"none"}
	}
	fmt.Fprintf(&sb, "Human roles: %s (auto play: %v)\n", strings.Join(humans, ", "), info.AutoPlay)
	if len(info.BotTurns) > 0 {
		sb.WriteString("\n")
		writeBotTurns(&sb, info.BotTurns)
	}
	if info.State != nil {
		sb.WriteString("\n")
		sb.WriteString(formatSnapshot(info.State))
	}
	if info.Winner != nil {
		fmt.Fprintf(&sb, "\n🏁 GAME OVER: %s\n", info.Winner.Text)
	}
	return sb.String()
}

func formatSnapshot(s *engine.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Era: %s  Board: %s (%dx%d)\n", s.Era, s.GridSize, s.Size, s.Size)
	if s.GameOver {
		fmt.Fprintf(&sb, "Round: %d/%d  💀 GAME OVER\n", s.Round, s.TotalRounds)
	} else {
		fmt.Fprintf(&sb, "Round: %d/%d  Turn: %s\n", s.Round, s.TotalRounds, s.Turn)
	}
	for _, a := range []engine.AnimalView{s.Prey, s.Predator, s.Apex} {
		fmt.Fprintf(&sb, "%-8s %-16s at %s score %d cooldown %d\n", a.Role, a.Name, a.Position, a.Score, a.Cooldown)
	}
	fmt.Fprintf(&sb, "%-8s %-16s at %s\n", "FOOD", s.Food.Name, s.Food.Position)

	sb.WriteString("\n    ")
	for c := 0; c < s.Size; c++ {
		fmt.Fprintf(&sb, "%d", c%10)
	}
	sb.WriteString("\n")
	for r, row := range s.Rows {
		fmt.Fprintf(&sb, "%3d %s\n", r, row)
	}
	return sb.String()
}

func formatLegalMoves(role engine.Role, moves []engine.LegalMove) string {
	if len(moves) == 0 {
		return fmt.Sprintf("%s has no legal moves (not its turn, or the game is over).", role)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s may move to %d cells:\n", role, len(moves))
	for _, m := range moves {
		note := ""
		if m.Dash {
			note = " (dash)"
		}
		fmt.Fprintf(&sb, "- %s %s%s\n", m.To, m.Kind, note)
	}
	return sb.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder
	if result.Success {
		fmt.Fprintf(&sb, "✓ Move successful (%s): %s\n", result.Kind, result.Message)
	} else {
		fmt.Fprintf(&sb, "✗ Move failed: %s\n", result.Message)
	}
	for _, ev := range result.Events {
		fmt.Fprintf(&sb, "  %s\n", ev)
	}
	if len(result.BotTurns) > 0 {
		writeBotTurns(&sb, result.BotTurns)
	}
	if result.State != nil {
		sb.WriteString("\n")
		sb.WriteString(formatSnapshot(result.State))
	}
	if result.Winner != nil {
		fmt.Fprintf(&sb, "\n🏁 GAME OVER: %s\n", result.Winner.Text)
	}
	return sb.String()
}

func writeBotTurns(sb *strings.Builder, turns []bot.Turn) {
	for _, t := range turns {
		if t.From == t.To {
			fmt.Fprintf(sb, "🤖 %s stayed at %s\n", t.Role, t.From)
			continue
		}
		fmt.Fprintf(sb, "🤖 %s %s -> %s (%s)\n", t.Role, t.From, t.To, t.Kind)
	}
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Events (page %d of %d, %d total):\n", history.Page, history.TotalPages, history.TotalEvents)
	for _, ev := range history.Events {
		fmt.Fprintf(&sb, "[round %d] %s\n", ev.Round, ev)
	}
	return sb.String()
}
