// Command foodchain starts the FoodChain game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from FOODCHAIN_* environment variables (optionally loaded
// from a .env file); command-line flags override them.
package main

import (
	"context"
	"encoding/json"
	"flag"
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
	"github.com/wricardo/mcp-training/foodchain/api"
	"github.com/wricardo/mcp-training/foodchain/game/config"
	"github.com/wricardo/mcp-training/foodchain/game/engine"
	"github.com/wricardo/mcp-training/foodchain/game/eventlog"
	"github.com/wricardo/mcp-training/foodchain/game/service"
	"github.com/wricardo/mcp-training/foodchain/game/session"
	"github.com/wricardo/mcp-training/foodchain/transport/mcp"
	"github.com/wricardo/mcp-training/foodchain/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "FoodChain Server"
)

// Command-line flags. Any flag set explicitly overrides its FOODCHAIN_* variable.
var (
	port        = flag.Int("port", 8080, "HTTP server port")
	host        = flag.String("host", "localhost", "HTTP server host")
	dataDir     = flag.String("data-dir", "data", "Directory containing era food-chain files")
	saveDir     = flag.String("save-dir", "saves", "Directory for file save slots")
	saveBackend = flag.String("save-backend", config.BackendFile, "Save backend: file or sqlite")
	sqlitePath  = flag.String("sqlite-path", "saves/foodchain.db", "SQLite database for the sqlite backend")
	eventLog    = flag.String("event-log", "data/log.txt", "Append game events to this file (empty disables)")
	seed        = flag.Uint64("seed", 0, "Random seed for new games (0 picks one per game)")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	version     = flag.Bool("version", false, "Show version information")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  FOODCHAIN_HOST, FOODCHAIN_PORT, FOODCHAIN_DATA_DIR, FOODCHAIN_SAVE_DIR,\n")
		fmt.Fprintf(os.Stderr, "  FOODCHAIN_SAVE_BACKEND, FOODCHAIN_SQLITE_PATH, FOODCHAIN_EVENT_LOG, FOODCHAIN_SEED\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090               # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -save-backend sqlite     # Keep save slots in SQLite\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	gameService, cleanup, err := initializeServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer cleanup()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(gameService)

	case "server", "http":
		runHTTPServer(cfg, gameService)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// applyFlags copies explicitly set flags over the environment configuration.
func applyFlags(cfg *config.ServerConfig) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "data-dir":
			cfg.DataDir = *dataDir
		case "save-dir":
			cfg.SaveDir = *saveDir
		case "save-backend":
			cfg.SaveBackend = *saveBackend
		case "sqlite-path":
			cfg.SQLitePath = *sqlitePath
		case "event-log":
			cfg.EventLog = *eventLog
		case "seed":
			cfg.Seed = *seed
		}
	})
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
func runHTTPServer(cfg config.ServerConfig, gameService service.GameService) {
	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Create API server
	apiServer := api.NewServer(gameService, hub)

	addr := cfg.Addr()

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?game=<game_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// mcpHandler serves single JSON-RPC messages against the MCP tool server.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
	}
}

// initializeServices wires era data, save storage, event sinks and the game service.
// The returned cleanup closes the save backend and the event log.
func initializeServices(cfg config.ServerConfig) (service.GameService, func(), error) {
	eras, err := config.NewManager(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create era manager: %w", err)
	}

	var persistence session.SavePersistence
	switch cfg.SaveBackend {
	case config.BackendSQLite:
		persistence, err = session.OpenSQLite(cfg.SQLitePath)
	default:
		persistence, err = session.NewFilePersistence(cfg.SaveDir)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create save persistence: %w", err)
	}
	saves := session.NewManager(persistence)

	var sink engine.EventSink
	var fileLog *eventlog.FileLog
	if cfg.EventLog != "" {
		fileLog, err = eventlog.OpenFile(cfg.EventLog)
		if err != nil {
			saves.Close()
			return nil, nil, fmt.Errorf("failed to open event log: %w", err)
		}
		sink = fileLog
	}

	gameService := service.NewGameService(service.Options{
		Eras:    eras,
		Saves:   saves,
		History: eventlog.NewRecorder(eventlog.DefaultCapacity),
		Sink:    sink,
		Seed:    cfg.Seed,
	})

	// Report era files that fail to load so bad data shows up at startup
	for _, info := range eras.ListEras() {
		if info.Error != "" {
			log.Printf("Warning: era %s unavailable: %s", info.Era, info.Error)
		}
	}

	cleanup := func() {
		if err := saves.Close(); err != nil {
			log.Printf("Warning: failed to close save backend: %v", err)
		}
		if fileLog != nil {
			if err := fileLog.Close(); err != nil {
				log.Printf("Warning: failed to close event log: %v", err)
			}
		}
	}
	return gameService, cleanup, nil
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService) {
	var baseURL string

	externalURL := "http://localhost:8080"
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		httpServer := &http.Server{
			Handler: api.NewServer(gameService, hub),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	if baseURL == externalURL {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
