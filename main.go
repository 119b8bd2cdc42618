package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"go.uber.org/zap"
	"golang.org/x/term"

	"docmerge/internal/app"
	"docmerge/internal/compose"
	"docmerge/internal/config"
	"docmerge/internal/convert"
	"docmerge/internal/logging"
	"docmerge/internal/model"
	"docmerge/internal/tui"
	"docmerge/internal/web"
)

const appName = "docmerge"

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "docmerge",
		Repository: "docmerge",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/docmerge/docmerge/releases")
	} else if pflag.Lookup("update").Changed {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: docmerge [options] [file.docx ...]\n\n")
		fmt.Fprintf(os.Stderr, "docmerge combines Word documents (.docx) into one, in the order given,\n")
		fmt.Fprintf(os.Stderr, "and can convert the result to PDF with LibreOffice.\n")
		fmt.Fprintf(os.Stderr, "Drop files onto the terminal window (or the browser page with --web) to add them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  docmerge                          # Start TUI mode\n")
		fmt.Fprintf(os.Stderr, "  docmerge a.docx b.docx            # Start TUI mode with two files queued\n")
		fmt.Fprintf(os.Stderr, "  docmerge --web                    # Drag and drop in the browser\n")
		fmt.Fprintf(os.Stderr, "  docmerge -o out.docx a.docx b.docx -c  # Combine and convert without a UI\n")
	}

	config.RegisterFlags(pflag.CommandLine)
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for the latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("docmerge version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	tuiMode := !cfg.Web && !cfg.Headless()
	logFile := cfg.LogFile
	if logFile == "" && tuiMode {
		logFile = logging.DefaultFile(appName)
	}
	logger, err := logging.Setup(logging.Options{
		Debug:      cfg.Debug,
		AppName:    appName,
		AppVersion: model.Version,
		File:       logFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := newSession(cfg, logger)
	args := pflag.Args()

	switch {
	case cfg.Headless():
		code := runHeadlessMode(ctx, session, cfg, args)
		stop()
		logger.Sync() //nolint:errcheck
		os.Exit(code)
	case cfg.Web:
		session.DropPaths(args)
		runWebMode(ctx, session, cfg, logger)
	default:
		session.DropPaths(args)
		runTuiMode(ctx, session, cfg)
	}
}

// newSession wires the pipeline and, for the classic variant, the
// LibreOffice bridge.
func newSession(cfg config.Config, logger *zap.Logger) *app.Session {
	pipeline := compose.NewPipeline(compose.DocxLibrary{}, logger.Named("compose"))

	var converter app.Converter
	if cfg.ConversionEnabled() {
		converter = convert.NewBridge(convert.NewLibreOffice(cfg.Soffice), logger.Named("convert"))
	}
	return app.NewSession(pipeline, converter, logger.Named("session"))
}

func runHeadlessMode(ctx context.Context, session *app.Session, cfg config.Config, args []string) int {
	if n := session.DropPaths(args); n < len(args) {
		fmt.Fprintf(os.Stderr, "Skipped %d argument(s) that are not new .docx files\n", len(args)-n)
	}

	n := session.Combine(ctx, cfg.Output)
	printNotice(n)
	if n.Level == app.LevelError {
		return 1
	}

	if !cfg.Convert {
		return 0
	}
	last, _ := session.LastCombined()
	pdf := model.WithExt(last, model.FixedLayoutExt)
	n, shown := session.Convert(ctx, func(string) (string, bool) { return pdf, true })
	if shown {
		printNotice(n)
	}
	if n.Level != app.LevelInfo {
		return 1
	}
	return 0
}

func printNotice(n app.Notice) {
	out := os.Stdout
	if n.Level != app.LevelInfo {
		out = os.Stderr
	}
	fmt.Fprintf(out, "%s: %s\n", n.Title, n.Message)
}

func runWebMode(ctx context.Context, session *app.Session, cfg config.Config, logger *zap.Logger) {
	srv, err := web.New(session, cfg.Theme, logger.Named("web"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer srv.Close()

	fmt.Printf("Go to http://localhost:%d in your browser.\n", cfg.Port)
	if err := srv.Serve(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Error("Web server stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		srv.Close()
		os.Exit(1)
	}
}

func runTuiMode(ctx context.Context, session *app.Session, cfg config.Config) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "docmerge needs a terminal; use --web or --output instead.")
		os.Exit(2)
	}

	m := tui.InitialModel(ctx, session, tui.ThemeByName(cfg.Theme))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
