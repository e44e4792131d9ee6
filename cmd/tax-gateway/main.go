// ABOUTME: Entry point for the tax-gateway MCP server
// ABOUTME: Subcommands: serve, init, token, health

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/taxhelper/tax-gateway/internal/auth"
	"github.com/taxhelper/tax-gateway/internal/config"
	"github.com/taxhelper/tax-gateway/internal/logging"
	"github.com/taxhelper/tax-gateway/internal/mcp"
	"github.com/taxhelper/tax-gateway/internal/refdata"
	"github.com/taxhelper/tax-gateway/internal/server"
	"github.com/taxhelper/tax-gateway/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                                 _
| |_ __ ___  ___ __ _  __ _| |_ _____      ____ _ _   _
| __/ _' \ \/ /____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| || (_| |>  <_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
 \__\__,_/_/\_\     \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                    |___/                             |___/
`

// getConfigPath returns the path to the config file.
// Priority: TAX_GATEWAY_CONFIG env var > XDG_CONFIG_HOME/tax-gateway/config.yaml > ~/.config/tax-gateway/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TAX_GATEWAY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "tax-gateway", "config.yaml")
}

// getDataPath returns the path to the data directory.
// Priority: XDG_DATA_HOME/tax-gateway > ~/.local/share/tax-gateway
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "tax-gateway")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tax-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                       Start the MCP server")
		fmt.Println("  init                        Create a config file with a fresh JWT secret")
		fmt.Println("  token --user ID [--role R]  Mint a development bearer token")
		fmt.Println("  health                      Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "token":
		err = runToken()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Logging)
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Println()

	logger.Info("starting tax-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"database", cfg.Database.Path,
	)

	st, err := store.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	if err := st.SeedSampleData(); err != nil {
		return fmt.Errorf("seeding sample data: %w", err)
	}

	validator := auth.NewValidator([]byte(cfg.Auth.JWTSecret), cfg.Auth.Audience, cfg.Auth.Issuer, logger)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Store:     st,
		RefData:   refdata.New(logger),
		Validator: validator,
		Logger:    logger,
		Name:      "tax-gateway",
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	srv := server.New(server.Config{
		HTTPAddr:       cfg.Server.HTTPAddr,
		MCP:            mcpServer,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
		Name:           "tax-gateway",
		Version:        version,
		Pinger:         st,
	})

	return srv.Run(ctx)
}

// runInit writes a config file with a freshly generated JWT secret. Refuses
// to overwrite an existing file.
func runInit() error {
	configPath := getConfigPath()
	dataPath := getDataPath()
	dbPath := filepath.Join(dataPath, "tax-gateway.db")

	green := color.New(color.FgGreen)

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}
	jwtSecret := base64.StdEncoding.EncodeToString(secretBytes)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	configContent := fmt.Sprintf(`# tax-gateway configuration
# Generated by tax-gateway init

server:
  http_addr: "localhost:8080"

database:
  path: "%s"

auth:
  jwt_secret: "%s"

cors:
  allowed_origins: []

logging:
  level: "info"
  format: "text"
`, dbPath, jwtSecret)

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green.Printf("  ✓ Created config: %s\n", configPath)
	fmt.Println()
	fmt.Println("To start the server:")
	fmt.Println("  tax-gateway serve")
	return nil
}

// runToken mints a development bearer token signed with the configured
// secret. Defaults to the seeded sample user.
func runToken() error {
	userID := store.SeedOwnerJohn
	roleName := string(auth.RoleUser)
	ttl := 24 * time.Hour

	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--user" || arg == "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--user requires a value")
			}
			userID = args[i+1]
			i++
		case strings.HasPrefix(arg, "--user="):
			userID = strings.TrimPrefix(arg, "--user=")
		case arg == "--role" || arg == "-r":
			if i+1 >= len(args) {
				return fmt.Errorf("--role requires a value")
			}
			roleName = args[i+1]
			i++
		case strings.HasPrefix(arg, "--role="):
			roleName = strings.TrimPrefix(arg, "--role=")
		case arg == "--ttl":
			if i+1 >= len(args) {
				return fmt.Errorf("--ttl requires a value")
			}
			parsed, err := time.ParseDuration(args[i+1])
			if err != nil {
				return fmt.Errorf("parsing --ttl: %w", err)
			}
			ttl = parsed
			i++
		default:
			return fmt.Errorf("unknown argument: %s", arg)
		}
	}

	role, err := auth.ParseRole(roleName)
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	validator := auth.NewValidator([]byte(cfg.Auth.JWTSecret), cfg.Auth.Audience, cfg.Auth.Issuer, nil)
	token, err := validator.Mint(userID, role, ttl)
	if err != nil {
		return fmt.Errorf("minting token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
