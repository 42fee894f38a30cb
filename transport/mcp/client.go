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
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Incognito",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Incognito - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Two players share a 5x5 board. Each side has four knights and one hidden spy.
Find the enemy spy by interrogating it. Call game_rules for the full rules.

AVAILABLE TOOLS:
- create_session: Start a new game, optionally on a named variant
- list_sessions / get_session: Inspect running games
- game_state: Board, player to act and legal actions
- move: Move a piece along a clear straight or diagonal line
- interrogate: Question an adjacent enemy piece
- reset_game: Restart a session
- move_history: Paginated action log
- export_save: The game in save-file format
- list_variants: Available starting deployments
- list_archive: Recently finished games
- game_rules: Complete rules

Squares use algebraic names: files a-e left to right, ranks 1-5 bottom to top.
White's castle is a1, Black's castle is e5.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func squareProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"pattern":     "^[a-eA-E][1-5]$",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional variant selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"variant": map[string]interface{}{
					"type":        "string",
					"description": "Variant ID to use (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board as the players see it, the player to act and every legal action",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move one of your pieces along an unobstructed horizontal, vertical or diagonal line onto an empty square",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"from":       squareProperty("Square of the piece to move, e.g. a3"),
				"to":         squareProperty("Empty destination square, e.g. b4"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "interrogate",
		Description: "Use one of your pieces to question an orthogonally adjacent enemy piece",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"from":       squareProperty("Square of your interrogating piece"),
				"to":         squareProperty("Square of the adjacent enemy piece"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Why you suspect this piece",
				},
			},
			Required: []string{"session_id", "from", "to"},
		},
	}, c.handleInterrogate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its starting position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the action log for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "export_save",
		Description: "Get the game in save-file text format",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleExportSave)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_variants",
		Description: "List available starting deployments",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListVariants)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_archive",
		Description: "List recently finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of games",
				},
			},
		},
	}, c.handleListArchive)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete rules of Incognito",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// apiText fetches a plain text endpoint
func (c *Client) apiText(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return resp, nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	variant, _ := arguments(request)["variant"].(string)

	body := map[string]string{}
	if variant != "" {
		body["variant"] = variant
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nVariant: %s\n\n%s", session.ID, session.Variant, formatGameState(session.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.State != nil && s.State.Finished {
			status = "finished"
		} else if s.State != nil {
			status = fmt.Sprintf("%s to play", s.State.CurrentPlayer)
		}
		result += fmt.Sprintf("- %s (Variant: %s, %s, Created: %s)\n",
			s.ID, s.Variant, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state service.StateView
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.handleAction(ctx, request, "/move")
}

func (c *Client) handleInterrogate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.handleAction(ctx, request, "/interrogate")
}

func (c *Client) handleAction(ctx context.Context, request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)

	body := map[string]string{"from": from, "to": to}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *service.StateView `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleExportSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	text, err := c.apiText(ctx, sessionPath(sessionID, "/save"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleListVariants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var variants []service.VariantInfo
	if err := c.apiCall(ctx, "GET", "/api/variants", nil, &variants); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Variants:\n\n"
	for _, v := range variants {
		result += fmt.Sprintf("• %s (%s)\n", v.VariantID, v.Name)
		if v.Description != "" {
			result += fmt.Sprintf("  %s\n", v.Description)
		}
		result += fmt.Sprintf("  %s moves first\n\n", v.StartingPlayer)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/archive"
	if limit, ok := arguments(request)["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Count int                    `json:"count"`
		Games []service.FinishedGame `json:"games"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Finished Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		result += fmt.Sprintf("- %s session=%s variant=%s %s after %d actions (%s)\n",
			g.ID, g.SessionID, g.Variant, formatOutcome(g.Outcome), g.Moves, g.FinishedAt.Format(time.RFC3339))
	}

	return mcp.NewToolResultText(result), nil
}

const gameRules = `Incognito - Rules

BOARD:
A 5x5 grid. Files a-e run left to right, ranks 1-5 bottom to top.
White's castle is a1 (bottom left). Black's castle is e5 (top right).

PIECES:
Each side has four knights and one spy. Spies look exactly like knights:
neither player sees which enemy piece is the spy. On the board, w is a white
piece and b is a black piece. When the game ends the spies are revealed as W
and B.

TURN:
White moves first in the classic deployment. On your turn do exactly one of:

1. MOVE: slide one of your pieces any distance in a straight line
   (horizontal, vertical or exact diagonal) onto an empty square. Every square
   in between must be empty. A piece may never enter its own side's castle.

2. INTERROGATE: pick one of your pieces and an enemy piece directly next to it
   (up, down, left or right; not diagonal).
   - If the enemy piece is the spy, the spy is found and the game ends.
   - If it is a knight, your interrogating piece is removed from the board.
     If your interrogating piece was your spy, your spy is exposed and the
     game ends.

After every move or interrogation the turn passes to the other player, unless
the action ended the game.

END OF GAME:
- spy_found: an interrogation targeted the enemy spy.
- spy_exposed: a spy interrogated a knight and gave itself away.

STRATEGY HINTS:
- Interrogating is risky: a wrong guess costs you the piece you used.
- Your own spy should avoid interrogating.
- Watch which enemy piece avoids contact; it may be hiding something.

SAVE FORMAT:
One record per line: spy squares ("B c2" for White, "N e3" for Black), then
the player to act ("B" or "N"), then every action in order ("D a3->b4" for a
move, "I d2->e2" for an interrogation).`

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameRules), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nVariant: %s\nCreated: %s\nLast accessed: %s\n\n",
		session.ID, session.Variant,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	return result + formatGameState(session.State)
}

func formatOutcome(outcome engine.Outcome) string {
	switch outcome {
	case engine.OutcomeSpyFound:
		return "spy found"
	case engine.OutcomeSpyExposed:
		return "spy exposed"
	}
	return "unfinished"
}

// formatBoard draws the board with rank and file labels
func formatBoard(rows []string) string {
	var b strings.Builder
	for r, row := range rows {
		fmt.Fprintf(&b, "%d ", engine.BoardSize-r)
		for _, ch := range row {
			b.WriteString(" ")
			b.WriteRune(ch)
		}
		b.WriteString("\n")
	}
	b.WriteString("  ")
	for col := 0; col < engine.BoardSize; col++ {
		fmt.Fprintf(&b, " %c", 'a'+col)
	}
	b.WriteString("\n")
	return b.String()
}

func formatGameState(state *service.StateView) string {
	if state == nil {
		return "No state available\n"
	}

	var b strings.Builder
	b.WriteString(formatBoard(state.Board))
	b.WriteString("\n")

	if state.Finished {
		fmt.Fprintf(&b, "GAME OVER: %s after %d actions\n", formatOutcome(state.Outcome), state.MoveCount)
	} else {
		fmt.Fprintf(&b, "To play: %s\n", state.CurrentPlayer)
	}
	fmt.Fprintf(&b, "Pieces: white %d, black %d\n", state.Pieces["white"], state.Pieces["black"])
	if state.LastAction != "" {
		fmt.Fprintf(&b, "Last action: %s\n", state.LastAction)
	}
	if state.Selected != "" {
		fmt.Fprintf(&b, "Selected: %s\n", state.Selected)
	}

	if !state.Finished && len(state.Possible) > 0 {
		var moves, interrogations []string
		for _, a := range state.Possible {
			if strings.HasPrefix(a, "I ") {
				interrogations = append(interrogations, strings.TrimPrefix(a, "I "))
			} else {
				moves = append(moves, strings.TrimPrefix(a, "D "))
			}
		}
		fmt.Fprintf(&b, "Legal moves (%d): %s\n", len(moves), strings.Join(moves, ", "))
		if len(interrogations) > 0 {
			fmt.Fprintf(&b, "Possible interrogations: %s\n", strings.Join(interrogations, ", "))
		}
	}

	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", result.Action)
	} else {
		fmt.Fprintf(&b, "✗ %s rejected\n", result.Action)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	for _, ev := range result.Events {
		if ev.Message != result.Message {
			fmt.Fprintf(&b, "  - %s\n", ev.Message)
		}
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Action History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, entry := range history.Moves {
		result += fmt.Sprintf("%3d. %-5s %s\n", entry.Number, entry.Player, entry.Action)
	}

	if history.HasNext {
		result += "\n(more on the next page)\n"
	}
	return result
}
