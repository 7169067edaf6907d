// cmd/planner/main.go
//
// This is the entry point for the planner CLI.
//
//	planner              open the terminal front end
//	planner serve        run the HTML front end
//	planner check        report whether the project is set up
//
// Every command works on the project in the current directory (or -project).

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kingrea/academic-planner/internal/config"
	"github.com/kingrea/academic-planner/internal/logbook"
	"github.com/kingrea/academic-planner/internal/logging"
	"github.com/kingrea/academic-planner/internal/setup"
	"github.com/kingrea/academic-planner/internal/store"
	"github.com/kingrea/academic-planner/internal/tui"
	"github.com/kingrea/academic-planner/internal/web"
)

func main() {
	args := os.Args[1:]
	command := "tui"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "check" || args[0] == "tui") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		runServe(args)
	case "check":
		runCheck(args)
	default:
		runTUI(args)
	}
}

// runtimeDeps is everything a front end needs, built from the project config.
type runtimeDeps struct {
	cfg     *config.Config
	logger  *logging.Logger
	journal *logbook.Logbook
	store   *store.Store
}

func (d runtimeDeps) Close() {
	_ = d.logger.Close()
}

func resolveProject(dir string) string {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	return abs
}

func bootstrap(projectDir, source string) runtimeDeps {
	if err := config.InitPlannerDir(projectDir); err != nil {
		die("init .planner: %v", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		die("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogsDir(), cfg.Project.Log.Level)
	if err != nil {
		die("open log: %v", err)
	}
	journal, err := logbook.New(cfg.ActivityLogPath(), source)
	if err != nil {
		die("open activity log: %v", err)
	}
	logger.Info("planner starting",
		zap.String("frontend", source),
		zap.String("project", projectDir),
		zap.String("data_file", cfg.DataFilePath()),
	)
	return runtimeDeps{
		cfg:     cfg,
		logger:  logger,
		journal: journal,
		store:   store.New(cfg.DataFilePath()),
	}
}

func runTUI(args []string) {
	fs := flag.NewFlagSet("planner", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	_ = fs.Parse(args)

	deps := bootstrap(resolveProject(*projectDir), "tui")
	defer deps.Close()

	app, err := tui.NewApp(deps.cfg, deps.store, tui.WithLogbook(deps.journal))
	if err != nil {
		die("start TUI: %v", err)
	}
	defer app.Close()

	// tea.NewProgram creates a new bubbletea application
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		deps.logger.Error("tui exited", zap.Error(err))
		die("run TUI: %v", err)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("planner serve", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	addr := fs.String("addr", "", "listen address host:port (defaults to web.host/web.port from config)")
	_ = fs.Parse(args)

	deps := bootstrap(resolveProject(*projectDir), "web")
	defer deps.Close()

	settings := web.SettingsFromConfig(deps.cfg)
	if *addr != "" {
		host, port, err := splitAddr(*addr)
		if err != nil {
			die("invalid -addr: %v", err)
		}
		settings.Host, settings.Port = host, port
	}

	server, err := web.NewServer(settings, deps.store,
		web.WithLogger(deps.logger.Logger),
		web.WithJournal(deps.journal),
	)
	if err != nil {
		die("configure web server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(ctx); err != nil {
		die("start web server: %v", err)
	}
	fmt.Printf("Academic planner running at %s (Ctrl+C to stop)\n", server.BaseURL())
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		deps.logger.Error("shutdown", zap.Error(err))
	}
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("planner check", flag.ExitOnError)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	_ = fs.Parse(args)

	report := setup.Check(resolveProject(*projectDir))
	fmt.Printf("Project: %s\n", report.ProjectDir)
	for _, item := range report.Items {
		line := fmt.Sprintf("  [%-7s] %s", item.Status, item.Name)
		if item.Path != "" {
			line += " (" + item.Path + ")"
		}
		fmt.Println(line)
		if item.Detail != "" {
			fmt.Printf("            %s\n", item.Detail)
		}
	}
	if !report.IsValid() {
		fmt.Println("Setup is incomplete.")
		os.Exit(1)
	}
	fmt.Println("Setup looks good.")
}

func splitAddr(addr string) (string, int, error) {
	host, portText, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("port %q out of range", portText)
	}
	return host, port, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
