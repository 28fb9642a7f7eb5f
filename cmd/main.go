package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"workspace-service/internal/bootstrap"
	"workspace-service/internal/handler"
	"workspace-service/internal/middleware"
	"workspace-service/internal/workspace"
	"workspace-service/pkg/config"
	"workspace-service/pkg/database"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	root := &cobra.Command{
		Use:   "workspace-service",
		Short: "Internal workspace service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:   "bootstrap-admin",
			Short: "Interactively create the first admin account",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBootstrapAdmin()
			},
		},
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStores loads configuration and opens the core and (when resolved)
// workspace stores. The workspace location must be read through the raw
// probe before any GORM bind for it exists.
func initStores() (*config.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("load configuration: %w", err)
	}

	coreURL := workspace.ResolvePrimaryURL(cfg.DB.CoreURL, cfg.DB.LegacyURL, cfg.Server.DataDir)
	if err := database.InitCore(coreURL, cfg); err != nil {
		return nil, "", fmt.Errorf("initialize core store: %w", err)
	}

	wsURL := workspace.ResolveWorkspaceURL(coreURL, cfg.DB.WorkspaceURL)
	if wsURL != "" {
		if err := database.InitWorkspace(wsURL, coreURL, cfg); err != nil {
			return nil, "", fmt.Errorf("initialize workspace store: %w", err)
		}
	}
	return cfg, coreURL, nil
}

func runServe() error {
	cfg, coreURL, err := initStores()
	if err != nil {
		return err
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting workspace service...", zap.String("environment", cfg.Server.Env))
	log.Info("Core store ready", zap.String("store", workspace.DescribeURL(coreURL)))

	ws := database.GetWorkspace()
	prometheus.SetWorkspaceState(workspace.Configured(ws), workspace.Ready(ws))
	switch {
	case ws == nil:
		log.Warn("No workspace store configured; entity routes will report setup required")
	case !workspace.Ready(ws):
		log.Warn("Workspace store configured but not initialized")
	default:
		log.Info("Workspace store ready", zap.Bool("split", database.WorkspaceSplit()))
	}

	jwtutil.Initialize(&cfg.JWT)
	handler.Init(cfg, coreURL)

	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)

	// API routes - all require an authenticated session
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.POST("/logout", handler.Logout)
	api.GET("/profile", handler.Profile)

	pages := api.Group("/pages")
	pages.GET("", handler.ListPages)
	pages.GET("/archived", handler.ListArchivedPages)
	pages.POST("", handler.CreatePage)
	pages.POST("/quick-capture", handler.QuickCapture)
	pages.GET("/:id", handler.ViewPage)
	pages.PUT("/:id", handler.SavePage)
	pages.POST("/:id/archive", handler.ArchivePage)
	pages.POST("/:id/restore", handler.RestorePage)

	tasks := api.Group("/tasks")
	tasks.GET("", handler.ListTasks)
	tasks.POST("", handler.CreateTask)
	tasks.GET("/:id", handler.GetTask)
	tasks.PUT("/:id", handler.UpdateTask)
	tasks.DELETE("/:id", handler.DeleteTask)
	tasks.POST("/:id/pages/:page_id", handler.LinkTaskPage)
	tasks.DELETE("/:id/pages/:page_id", handler.UnlinkTaskPage)

	projects := api.Group("/projects")
	projects.GET("", handler.ListProjects)
	projects.POST("", handler.CreateProject)
	projects.GET("/:id", handler.GetProject)
	projects.PUT("/:id", handler.UpdateProject)
	projects.DELETE("/:id", handler.DeleteProject)

	companies := api.Group("/companies")
	companies.GET("", handler.ListCompanies)
	companies.POST("", handler.CreateCompany)
	companies.GET("/:id", handler.GetCompany)
	companies.PUT("/:id", handler.UpdateCompany)
	companies.DELETE("/:id", handler.DeleteCompany)

	views := api.Group("/views/:key")
	views.GET("", handler.ListViews)
	views.POST("", handler.SaveView)
	views.DELETE("/:id", handler.DeleteView)
	views.POST("/:id/default", handler.SetDefaultView)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin)
	admin.GET("/users", handler.ListUsers)
	admin.POST("/users", handler.CreateUser)
	admin.PATCH("/users/:id", handler.UpdateUser)
	admin.GET("/storage", handler.StorageStatus)
	admin.POST("/storage", handler.SaveStorage)
	admin.POST("/storage/initialize", handler.InitializeStorage)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
	return nil
}

// runBootstrapAdmin creates the first admin from an interactive terminal.
// Refuses to run non-interactively so the password never comes from a
// pipe or a script.
func runBootstrapAdmin() error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("bootstrap-admin requires an interactive terminal")
	}

	_, _, err := initStores()
	if err != nil {
		return err
	}

	exists, err := bootstrap.HasActiveAdmin(database.GetCore())
	if err != nil {
		return err
	}
	if exists {
		fmt.Println("An active admin already exists; nothing to do.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Admin username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}
	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}

	user, err := bootstrap.CreateAdmin(database.GetCore(), username, string(password))
	if err != nil {
		return err
	}
	fmt.Printf("Admin %q created (id %d).\n", user.Username, user.ID)
	return nil
}
