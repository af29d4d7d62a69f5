// Command contractctl checks JSON documents and fixtures against the shared
// todo contract.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xenon007/todo-contract/internal/config"
	"github.com/xenon007/todo-contract/internal/fixtures"
	"github.com/xenon007/todo-contract/internal/logging"
	"github.com/xenon007/todo-contract/models"
	"github.com/xenon007/todo-contract/schema"
)

const usage = `usage: contractctl [global flags] <command> [flags] [args]

commands:
  validate [-kind K] FILE...   check documents against the contract ("-" reads stdin)
  schema [-kind K]             print the JSON Schema (one definition with -kind)
  enums                        list every enumeration and its tokens
  kinds                        list document kinds accepted by -kind
  refs FILE                    report dangling user/project links in a fixture bundle
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("contractctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	cfg, err := config.Load(global, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "contractctl: %v\n", err)
		return 2
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "contractctl: %v\n", err)
		return 2
	}
	if cfg.File != "" {
		logger.Debug("config loaded", slog.String("file", cfg.File))
	}

	a := &app{cfg: cfg, logger: logger, stdin: stdin, stdout: stdout, stderr: stderr}

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch rest[0] {
	case "validate":
		return a.validate(rest[1:])
	case "schema":
		return a.schema(rest[1:])
	case "enums":
		return a.enums()
	case "kinds":
		return a.kinds()
	case "refs":
		return a.refs(ctx, rest[1:])
	case "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "contractctl: unknown command %q\n\n%s", rest[0], usage)
		return 2
	}
}

func (a *app) validate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	kind := fs.String("kind", a.cfg.DefaultKind, "document kind (see contractctl kinds)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(a.stderr, "contractctl validate: no files given")
		return 2
	}

	checker, err := schema.New()
	if err != nil {
		a.logger.Error("compile contract", slog.String("error", err.Error()))
		return 1
	}

	failed := 0
	for _, name := range fs.Args() {
		data, err := a.read(name)
		if err != nil {
			a.logger.Error("read document", slog.String("file", name), slog.String("error", err.Error()))
			failed++
			continue
		}
		err = checker.Check(*kind, data)
		var v *schema.Violations
		switch {
		case err == nil:
			fmt.Fprintf(a.stdout, "%s: ok\n", name)
		case errors.As(err, &v):
			failed++
			for _, item := range v.Items {
				fmt.Fprintf(a.stdout, "%s: %s\n", name, item)
			}
		default:
			fmt.Fprintf(a.stderr, "contractctl validate: %v\n", err)
			return 2
		}
	}
	a.logger.Debug("validation finished", slog.String("kind", *kind), slog.Int("files", fs.NArg()), slog.Int("failed", failed))
	if failed > 0 {
		return 1
	}
	return 0
}

func (a *app) read(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(name)
}

func (a *app) schema(args []string) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	kind := fs.String("kind", "", "print only this document kind")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *kind == "" {
		_, _ = a.stdout.Write(schema.Document())
		return 0
	}
	def, err := schema.Definition(*kind)
	if err != nil {
		fmt.Fprintf(a.stderr, "contractctl schema: %v\n", err)
		return 2
	}
	fmt.Fprintf(a.stdout, "%s\n", def)
	return 0
}

func (a *app) enums() int {
	for _, e := range models.Enumerations() {
		fmt.Fprintf(a.stdout, "%s: %s\n", e.Name, strings.Join(e.Tokens, " "))
	}
	return 0
}

func (a *app) kinds() int {
	for _, k := range schema.Kinds() {
		fmt.Fprintln(a.stdout, k)
	}
	return 0
}

func (a *app) refs(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "contractctl refs: expected exactly one bundle file")
		return 2
	}
	bundle, err := fixtures.ReadBundle(args[0])
	if err != nil {
		a.logger.Error("read bundle", slog.String("error", err.Error()))
		return 1
	}

	store, err := fixtures.Open(ctx, a.cfg.FixtureDB, a.logger)
	if err != nil {
		a.logger.Error("open fixture database", slog.String("path", a.cfg.FixtureDB), slog.String("error", err.Error()))
		return 1
	}
	defer store.Close()

	if err := store.Load(ctx, bundle); err != nil {
		a.logger.Error("load bundle", slog.String("error", err.Error()))
		return 1
	}
	dangling, err := store.CheckReferences(ctx)
	if err != nil {
		a.logger.Error("check references", slog.String("error", err.Error()))
		return 1
	}
	for _, d := range dangling {
		fmt.Fprintln(a.stdout, d)
	}
	if len(dangling) > 0 {
		return 1
	}
	fmt.Fprintf(a.stdout, "%s: all references resolve\n", args[0])
	return 0
}
