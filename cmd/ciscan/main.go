// Package main is the entry point for ciscan, a CIS Ubuntu 22.04 LTS
// benchmark audit and remediation tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/ancients-collective/ciscan/internal/controller"
	"github.com/ancients-collective/ciscan/internal/log"
	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/registry"
	"github.com/ancients-collective/ciscan/internal/report"
	"github.com/ancients-collective/ciscan/internal/sysinfo"
	"github.com/ancients-collective/ciscan/internal/types"
)

// version is set at build time via -ldflags. The default is a dev fallback
// for plain `go install` or `go run` usage.
var version = "1.0.0"

// Config holds the parsed command, module selection, and flag values.
type Config struct {
	Command string // "audit" or "remediate"
	Module  string // empty = all modules

	Friendly    bool
	Technical   bool
	Format      string
	OutputFile  string
	Batch       bool
	ListModules bool
	NoColor     bool
	Quiet       bool
	Debug       bool
}

// parseFlags parses command-line arguments into a Config using a dedicated
// FlagSet, keeping the global flag.CommandLine clean for testability.
func parseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("ciscan", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.BoolVar(&cfg.Friendly, "friendly", false, "Explanatory output for non-technical readers")
	fs.BoolVar(&cfg.Technical, "technical", false, "Compact technical output (the default)")
	fs.StringVar(&cfg.Format, "format", "text", "Output format: text, json")
	fs.StringVar(&cfg.Format, "f", "text", "Output format (shorthand)")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write output to file (default: stdout)")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write output to file (shorthand)")
	fs.BoolVar(&cfg.Batch, "batch", false, "Write per-module result files (results_<module>.txt and .json)")
	fs.BoolVar(&cfg.ListModules, "list-modules", false, "List available module names and exit")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress report output, exit code only")
	fs.BoolVar(&cfg.Quiet, "q", false, "Suppress report output (shorthand)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug diagnostic output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n  ciscan v%s — CIS Ubuntu 22.04 LTS benchmark auditor\n", version)
		fmt.Fprintf(os.Stderr, "\n  Usage: ciscan [options] <audit|remediate> [module]\n\n")
		fmt.Fprintf(os.Stderr, "  Commands:\n")
		fmt.Fprintf(os.Stderr, "    audit [module]       Run checks (read-only); all modules when omitted\n")
		fmt.Fprintf(os.Stderr, "    remediate [module]   Apply remediations (requires root)\n")
		fmt.Fprintf(os.Stderr, "\n  Options:\n")
		fmt.Fprintf(os.Stderr, "         --friendly           Explanatory output for non-technical readers\n")
		fmt.Fprintf(os.Stderr, "         --technical          Compact technical output (the default)\n")
		fmt.Fprintf(os.Stderr, "    -f,  --format <type>      Output format: text, json (default: text)\n")
		fmt.Fprintf(os.Stderr, "    -o,  --output <file>      Write output to file (default: stdout)\n")
		fmt.Fprintf(os.Stderr, "         --batch              Write results_<module>.txt and .json per module\n")
		fmt.Fprintf(os.Stderr, "         --list-modules       List available module names and exit\n")
		fmt.Fprintf(os.Stderr, "         --no-color           Disable colored output\n")
		fmt.Fprintf(os.Stderr, "    -q,  --quiet              Suppress report output, exit code only\n")
		fmt.Fprintf(os.Stderr, "         --debug              Enable debug diagnostic output\n")
		fmt.Fprintf(os.Stderr, "\n  Examples:\n")
		fmt.Fprintf(os.Stderr, "    ciscan audit                          Audit every module\n")
		fmt.Fprintf(os.Stderr, "    ciscan audit kernel                   Audit one module\n")
		fmt.Fprintf(os.Stderr, "    ciscan --friendly audit               Explanatory report\n")
		fmt.Fprintf(os.Stderr, "    ciscan --format json audit           JSON for pipeline ingestion\n")
		fmt.Fprintf(os.Stderr, "    ciscan --format json -o out.json audit   Write JSON to file\n")
		fmt.Fprintf(os.Stderr, "    ciscan --batch audit                  Per-module result files\n")
		fmt.Fprintf(os.Stderr, "    sudo ciscan remediate kernel          Apply one module's fixes\n")
		fmt.Fprintf(os.Stderr, "    ciscan -q audit && echo compliant     Scripting with exit code\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		cfg.Command = rest[0]
	}
	if len(rest) > 1 {
		cfg.Module = rest[1]
	}
	if len(rest) > 2 {
		return nil, fmt.Errorf("unexpected arguments: %v", rest[2:])
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	os.Exit(run(cfg))
}

// run executes the requested command and returns an exit code:
// 0 when every check passed (or every remediation succeeded), 1 otherwise.
func run(cfg *Config) int {
	if code := validateFlags(cfg); code >= 0 {
		return code
	}
	setupOutput(cfg)

	reg, err := registry.New(probe.New(probe.NewExecutor()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
		return 1
	}

	if cfg.ListModules {
		for _, name := range reg.Names() {
			fmt.Println(name)
		}
		return 0
	}

	ctl := controller.New(reg)

	switch cfg.Command {
	case "audit":
		return runAudit(cfg, reg, ctl)
	case "remediate":
		return runRemediate(cfg, ctl)
	case "":
		fmt.Fprintln(os.Stderr, "ciscan: missing command (audit or remediate)")
		return 1
	default:
		fmt.Fprintf(os.Stderr, "ciscan: unknown command %q (must be audit or remediate)\n", cfg.Command)
		return 1
	}
}

// validateFlags checks flag values and combinations.
// Returns -1 if valid, or an exit code (1) if invalid.
func validateFlags(cfg *Config) int {
	switch cfg.Format {
	case "text", "json":
	default:
		fmt.Fprintf(os.Stderr, "ciscan: invalid --format value %q (must be text or json)\n", cfg.Format)
		return 1
	}
	if cfg.Friendly && cfg.Format == "json" {
		fmt.Fprintln(os.Stderr, "ciscan: --friendly applies to text output only")
		return 1
	}
	if cfg.Friendly && cfg.Technical {
		fmt.Fprintln(os.Stderr, "ciscan: --friendly and --technical are mutually exclusive")
		return 1
	}
	if cfg.Batch && cfg.OutputFile != "" {
		fmt.Fprintln(os.Stderr, "ciscan: --batch and --output are mutually exclusive")
		return 1
	}
	return -1
}

// setupOutput configures colors and log verbosity. Color is disabled for
// non-text formats, file output, and non-terminal stdout.
func setupOutput(cfg *Config) {
	if cfg.NoColor || cfg.Format != "text" || cfg.OutputFile != "" ||
		!term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
	if cfg.Debug {
		log.SetLevel(zerolog.DebugLevel)
	} else if cfg.Quiet {
		log.SetLevel(zerolog.ErrorLevel)
	}
}

// runAudit runs checks and renders the report. Audits never mutate state
// and run fine without root.
func runAudit(cfg *Config, reg *registry.Registry, ctl *controller.Controller) int {
	if cfg.Batch {
		return runBatchAudit(cfg, reg, ctl)
	}

	rep, err := ctl.RunAudit(cfg.Module)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
		return 1
	}

	if !cfg.Quiet {
		if code := writeReport(cfg, reg, rep); code >= 0 {
			return code
		}
	}

	if rep.AllPassed() {
		return 0
	}
	return 1
}

// runBatchAudit audits each selected module separately and writes
// results_<module>.txt and results_<module>.json into the current
// directory.
func runBatchAudit(cfg *Config, reg *registry.Registry, ctl *controller.Controller) int {
	modules, err := reg.Resolve(cfg.Module)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
		return 1
	}

	allPassed := true
	for _, m := range modules {
		rep, err := ctl.RunAudit(m.Name())
		if err != nil {
			fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
			return 1
		}
		if !rep.AllPassed() {
			allPassed = false
		}

		files := []struct {
			path      string
			formatter report.Formatter
		}{
			{"results_" + m.Name() + ".txt", &report.TextFormatter{}},
			{"results_" + m.Name() + ".json", &report.JSONFormatter{}},
		}
		for _, out := range files {
			if err := writeReportFile(out.path, out.formatter, rep); err != nil {
				fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
				return 1
			}
			if !cfg.Quiet {
				fmt.Printf("wrote %s\n", out.path)
			}
		}
	}

	if allPassed {
		return 0
	}
	return 1
}

// runRemediate applies module remediations. Requires root: remediation
// writes system configuration.
func runRemediate(cfg *Config, ctl *controller.Controller) int {
	if !sysinfo.IsRoot() {
		fmt.Fprintln(os.Stderr, "ciscan: remediation requires root privileges, re-run with sudo")
		return 1
	}

	ok, err := ctl.RunRemediation(cfg.Module)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "ciscan: some remediations failed, see log output above")
		return 1
	}
	if !cfg.Quiet {
		fmt.Println("Remediation completed. Run 'ciscan audit' to verify.")
	}
	return 0
}

// writeReport renders the report per the configured format and
// destination. Returns -1 on success or an exit code on failure.
func writeReport(cfg *Config, reg *registry.Registry, rep *types.RunReport) int {
	formatter := selectFormatter(cfg, reg)

	if cfg.OutputFile == "" {
		if err := formatter.Write(os.Stdout, rep); err != nil {
			fmt.Fprintf(os.Stderr, "ciscan: writing report: %v\n", err)
			return 1
		}
		return -1
	}

	if err := writeReportFile(cfg.OutputFile, formatter, rep); err != nil {
		fmt.Fprintf(os.Stderr, "ciscan: %v\n", err)
		return 1
	}
	if !cfg.Quiet {
		fmt.Printf("wrote %s\n", cfg.OutputFile)
	}
	return -1
}

func selectFormatter(cfg *Config, reg *registry.Registry) report.Formatter {
	if cfg.Format == "json" {
		return &report.JSONFormatter{}
	}
	if cfg.Friendly {
		return &report.FriendlyFormatter{Explain: reg}
	}
	return &report.TextFormatter{}
}

func writeReportFile(path string, formatter report.Formatter, rep *types.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	werr := formatter.Write(f, rep)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", path, cerr)
	}
	return nil
}
