// Command incognito plays Incognito, the two-player hidden-spy board game.
//
// Without a subcommand it starts a local game for two players sharing one
// screen:
//  1. -a/--ascii (default) plays in the terminal
//  2. -g/--graphical serves the board to a browser and pushes updates over WebSocket
//
// -c/--load restores a save file on startup and -s/--save rewrites it after
// every successful action.
//
// The serve subcommand runs the multi-session HTTP API with WebSocket, /mcp,
// metrics, the finished-game archive and an optional ngrok tunnel. The mcp
// subcommand speaks MCP over stdio, proxying to an API server it starts when
// none is reachable.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/incognito/api"
	"github.com/wricardo/incognito/game/archive"
	"github.com/wricardo/incognito/game/codec"
	"github.com/wricardo/incognito/game/config"
	"github.com/wricardo/incognito/game/engine"
	"github.com/wricardo/incognito/game/service"
	"github.com/wricardo/incognito/game/session"
	"github.com/wricardo/incognito/shell"
	"github.com/wricardo/incognito/transport/mcp"
	"github.com/wricardo/incognito/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Incognito"
)

// localSessionID names the single game served by the graphical shell
const localSessionID = "game"

// newApp builds the command line. Parent flags such as --addr are visible to
// the subcommands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "incognito",
		Usage:   "play Incognito in the terminal, the browser, or over HTTP/MCP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "ascii",
				Aliases: []string{"a"},
				Usage:   "play in the terminal (default)",
			},
			&cli.BoolFlag{
				Name:    "graphical",
				Aliases: []string{"g"},
				Usage:   "play in the browser",
			},
			&cli.StringFlag{
				Name:    "save",
				Aliases: []string{"s"},
				Usage:   "save the game to `FILE` after every action",
			},
			&cli.StringFlag{
				Name:    "load",
				Aliases: []string{"c"},
				Usage:   "load the game from `FILE` on startup",
			},
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "HTTP listen address",
				Value:   "localhost:8080",
				Sources: cli.EnvVars("INCOGNITO_ADDR"),
			},
			&cli.StringFlag{
				Name:    "variants-dir",
				Usage:   "directory of variant JSON files (empty serves the classic layout only)",
				Sources: cli.EnvVars("INCOGNITO_VARIANTS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runLocalGame,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API with WebSocket, MCP endpoint and archive",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "sessions-dir",
						Usage:   "directory for persisted sessions",
						Value:   "sessions",
						Sources: cli.EnvVars("INCOGNITO_SESSIONS_DIR"),
					},
					&cli.StringFlag{
						Name:    "archive",
						Usage:   "SQLite database for finished games (empty disables the archive)",
						Value:   "incognito.db",
						Sources: cli.EnvVars("INCOGNITO_ARCHIVE"),
					},
					&cli.BoolFlag{
						Name:    "ngrok",
						Usage:   "expose the server through an ngrok tunnel",
						Sources: cli.EnvVars("NGROK_ENABLED"),
					},
					&cli.StringFlag{
						Name:    "ngrok-auth",
						Usage:   "ngrok auth token",
						Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
					},
					&cli.StringFlag{
						Name:    "ngrok-domain",
						Usage:   "custom ngrok domain",
						Sources: cli.EnvVars("NGROK_DOMAIN"),
					},
				},
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Usage:   "API server to proxy; an internal one starts when it is not reachable",
						Value:   "http://localhost:8080",
						Sources: cli.EnvVars("INCOGNITO_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
		},
	}
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// loadInitialGame returns a new classic game, or the game stored at path
func loadInitialGame(path string) (*engine.GameEngine, error) {
	if path == "" {
		return engine.NewGame(), nil
	}

	eng, err := codec.LoadGame(path)
	if err != nil {
		return nil, fmt.Errorf("cannot start game: %w", err)
	}
	return eng, nil
}

// runLocalGame plays one game for two players on this machine
func runLocalGame(ctx context.Context, cmd *cli.Command) error {
	if args := cmd.Args(); args.Present() {
		return fmt.Errorf("unknown command %q", args.First())
	}
	if cmd.Bool("ascii") && cmd.Bool("graphical") {
		return errors.New("choose either --ascii or --graphical")
	}

	eng, err := loadInitialGame(cmd.String("load"))
	if err != nil {
		return err
	}

	if !cmd.Bool("graphical") {
		return shell.NewTerminal(eng, os.Stdin, os.Stdout, cmd.String("save")).Run(ctx)
	}

	gameService, err := graphicalService(eng, cmd.String("variants-dir"), cmd.String("save"))
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	log.Printf("Open http://%s/?session=%s to play", addr, localSessionID)
	return runHTTPServer(ctx, gameService, addr, tunnelOptions{})
}

// graphicalService registers eng as the only session of a game service.
// With a save path every executed action rewrites the save file.
func graphicalService(eng *engine.GameEngine, variantsDir, savePath string) (service.GameService, error) {
	configManager, err := config.NewManager(variantsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	if savePath != "" {
		sessionManager = session.NewManagerWithPersistence(
			session.NewSaveFilePersistence(localSessionID, savePath, eng.GetConfig()))
	}

	now := time.Now()
	err = sessionManager.Add(&service.Session{
		ID:             localSessionID,
		Variant:        config.ClassicID,
		Engine:         eng,
		Config:         eng.GetConfig(),
		CreatedAt:      now,
		LastAccessedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register game: %w", err)
	}

	return service.NewGameService(sessionManager, configManager), nil
}

// serviceOptions selects the storage behind the multi-session server
type serviceOptions struct {
	VariantsDir string
	SessionsDir string
	ArchivePath string
}

// services holds the wired game service and what must be closed on exit
type services struct {
	Game     service.GameService
	Sessions *session.Manager
	archive  *archive.SQLiteArchive
}

// Close releases the archive database
func (s *services) Close() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// initializeServices wires session/config managers, the archive and the game
// service.
func initializeServices(ctx context.Context, opts serviceOptions) (*services, error) {
	configManager, err := config.NewManager(opts.VariantsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.SessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	svc := &services{Sessions: sessionManager}
	if opts.ArchivePath == "" {
		svc.Game = service.NewGameService(sessionManager, configManager)
		return svc, nil
	}

	svc.archive, err = archive.NewSQLiteArchive(ctx, opts.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	svc.Game = service.NewGameServiceWithArchive(sessionManager, configManager, svc.archive)
	return svc, nil
}

// runServe runs the multi-session server until interrupted
func runServe(ctx context.Context, cmd *cli.Command) error {
	svc, err := initializeServices(ctx, serviceOptions{
		VariantsDir: cmd.String("variants-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		ArchivePath: cmd.String("archive"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	go sessionCleanupRoutine(ctx, svc.Sessions)

	log.Printf("Starting %s v%s", AppName, Version)
	return runHTTPServer(ctx, svc.Game, cmd.String("addr"), tunnelOptions{
		Enabled:   cmd.Bool("ngrok"),
		AuthToken: cmd.String("ngrok-auth"),
		Domain:    cmd.String("ngrok-domain"),
	})
}

// tunnelOptions configures the optional ngrok tunnel
type tunnelOptions struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// newRouter mounts the API server and the /mcp endpoint
func newRouter(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves the API, WebSocket hub and /mcp endpoint on addr until
// ctx ends or the process is signalled, then shuts down gracefully.
func runHTTPServer(ctx context.Context, gameService service.GameService, addr string, tunnel tunnelOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run()

	mainRouter := newRouter(gameService, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, tunnel, mainRouter)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err = <-serverErr:
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Println("Server stopped")
	return err
}

// serveNgrok serves handler through an ngrok tunnel until ctx ends
func serveNgrok(ctx context.Context, opts tunnelOptions, handler http.Handler) {
	if opts.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var endpoint ngrokConfig.Tunnel
	if opts.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.Domain))
		log.Printf("Using custom ngrok domain: %s", opts.Domain)
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(opts.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Board (ngrok): %s/", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// sessionCleanupRoutine drops sessions idle for a day from memory. Their
// files stay in the sessions directory.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// apiReachable reports whether an API server answers on baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// reachable; otherwise it starts an internal API on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")
	log.Printf("Checking for external API server at %s...", baseURL)

	if apiReachable(baseURL) {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(ctx, serviceOptions{
			VariantsDir: cmd.String("variants-dir"),
			SessionsDir: "sessions",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(svc.Game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr())
		log.Printf("Internal HTTP server for MCP stdio on %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
