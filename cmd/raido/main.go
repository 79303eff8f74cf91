// Command raido is the org vault toolchain: an HTTP/SSE server, an MCP
// stdio server, and a structural editing CLI that shares one editing core.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/editor"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/orgservice"
	"github.com/starford/raido/internal/storage"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Org-mode vault with byte-preserving structural editing, SQLite graph index, HTTP API, and MCP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("RAIDO_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault directory (overrides config)",
				Sources: cli.EnvVars("RAIDO_VAULT"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			syncCommand(),
			parseCommand(),
			showCommand(),
			todoCommand(),
			planCommand("schedule", "Set or clear the SCHEDULED timestamp"),
			planCommand("deadline", "Set or clear the DEADLINE timestamp"),
			tagCommand(),
			priorityCommand(),
			propertyCommand(),
			clockCommand(),
			refileCommand(),
			archiveCommand(),
			addCommand(),
			idCommand(),
			batchCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fail(err)
	}
}

// exitCode maps the error taxonomy onto stable process exit codes.
func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindHeadlineNotFound:
		return 2
	case apperr.KindFileNotFound:
		return 3
	case apperr.KindParse:
		return 4
	case apperr.KindInvalidArgs:
		return 5
	default:
		return 1
	}
}

func fail(err error) {
	out, _ := json.Marshal(map[string]any{
		"ok": false,
		"error": map[string]string{
			"kind":    apperr.KindOf(err).String(),
			"message": err.Error(),
		},
	})
	fmt.Fprintln(os.Stderr, string(out))
	os.Exit(exitCode(err))
}

func emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"ok": true, "result": v})
}

// loadConfig resolves the application configuration: defaults, then the
// first config file found, then command-line overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	candidates := []string{cmd.String("config")}
	if cmd.String("config") == "" {
		home, _ := os.UserHomeDir()
		candidates = []string{
			"raido.yaml",
			"config/config.yaml",
		}
		if home != "" {
			candidates = append(candidates, home+"/.config/raido/config.yaml")
		}
	}
	if _, err := pkgconfig.LoadFirst(cfg, candidates...); err != nil {
		return nil, apperr.New(apperr.KindParse, "invalid config file").WithDetail(err.Error())
	}
	if v := cmd.String("vault"); v != "" {
		cfg.Vault.Path = v
	}
	return cfg, nil
}

// newService builds the indexless domain service used by the file-editing
// commands. serve, sync, and mcp open the SQLite index themselves.
func newService(cmd *cli.Command) (*orgservice.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return orgservice.NewService(store, nil, cfg.Org.ToOrgConfig(), logger), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API, SSE, and file-watcher server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return internal.Run(ctx, internal.WithConfig(cfg))
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdin/stdout",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(cfg.Vault.Path)
			if err != nil {
				return err
			}
			db, err := index.Open(cfg.SQLite.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
			orgCfg := cfg.Org.ToOrgConfig()
			if err := index.Sync(db, store, orgCfg, logger); err != nil {
				logger.Warn("initial sync failed", slog.String("error", err.Error()))
			}
			svc := orgservice.NewService(store, db, orgCfg, logger)
			return mcpserver.New(store, svc).ServeStdio()
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Bring the SQLite index up to date with the vault",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := storage.NewFS(cfg.Vault.Path)
			if err != nil {
				return err
			}
			db, err := index.Open(cfg.SQLite.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
			if err := index.Sync(db, store, cfg.Org.ToOrgConfig(), logger); err != nil {
				return err
			}
			return emit(map[string]string{"status": "synced"})
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a document and print its structure as JSON",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			path, err := requireArgs(cmd, 1, "<file>")
			if err != nil {
				return err
			}
			doc, err := svc.GetDocument(ctx, path[0])
			if err != nil {
				return err
			}
			return emit(doc)
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one headline with its inherited tags and properties",
		ArgsUsage: "<file> <target>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "property", Aliases: []string{"p"}, Usage: "Property keys to resolve with inheritance"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target>")
			if err != nil {
				return err
			}
			detail, err := headlineDetail(ctx, svc, args[0], args[1], cmd.StringSlice("property"))
			if err != nil {
				return err
			}
			return emit(detail)
		},
	}
}

// headlineDetail resolves a headline and renders the inherited view the
// show command prints.
func headlineDetail(_ context.Context, svc *orgservice.Service, path, target string, propKeys []string) (map[string]any, error) {
	content, cfg, doc, err := svc.ParseDocument(path)
	if err != nil {
		return nil, err
	}
	pos, err := editor.ResolvePosition(cfg, content, target)
	if err != nil {
		return nil, err
	}
	i, ok := doc.HeadlineAt(pos)
	if !ok {
		return nil, apperr.Newf(apperr.KindHeadlineNotFound, "offset %d is not a headline", pos)
	}
	h := doc.Headlines[i]

	out := map[string]any{
		"headline": h,
		"olpath":   doc.OutlinePath(i),
		"alltags":  doc.AllTags(cfg, i),
		"category": doc.Category(cfg, i),
	}
	if len(propKeys) > 0 {
		props := make(map[string]string, len(propKeys))
		for _, k := range propKeys {
			if v, found := doc.PropertyValue(cfg, i, k); found {
				props[k] = v
			}
		}
		out["properties"] = props
	}
	return out, nil
}

func todoCommand() *cli.Command {
	return &cli.Command{
		Name:      "todo",
		Usage:     "Change the TODO keyword of a headline (empty state clears it)",
		ArgsUsage: "<file> <target> [state]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target> [state]")
			if err != nil {
				return err
			}
			state := ""
			if cmd.Args().Len() > 2 {
				state = cmd.Args().Get(2)
			}
			res, err := svc.SetTodo(ctx, args[0], args[1], state, time.Now())
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func planCommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<file> <target> [timestamp]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target> [timestamp]")
			if err != nil {
				return err
			}
			value := ""
			if cmd.Args().Len() > 2 {
				value = cmd.Args().Get(2)
			}
			var res *orgservice.MutationResult
			if name == "schedule" {
				res, err = svc.Schedule(ctx, args[0], args[1], value, time.Now())
			} else {
				res, err = svc.Deadline(ctx, args[0], args[1], value, time.Now())
			}
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "Add or remove a headline tag",
		ArgsUsage: "<file> <target> <tag>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "remove", Aliases: []string{"r"}, Usage: "Remove the tag instead of adding it"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 3, "<file> <target> <tag>")
			if err != nil {
				return err
			}
			var res *orgservice.MutationResult
			if cmd.Bool("remove") {
				res, err = svc.RemoveTag(ctx, args[0], args[1], args[2])
			} else {
				res, err = svc.AddTag(ctx, args[0], args[1], args[2])
			}
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func priorityCommand() *cli.Command {
	return &cli.Command{
		Name:      "priority",
		Usage:     "Set the priority cookie (omit the letter to clear it)",
		ArgsUsage: "<file> <target> [letter]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target> [letter]")
			if err != nil {
				return err
			}
			value := ""
			if cmd.Args().Len() > 2 {
				value = cmd.Args().Get(2)
			}
			res, err := svc.SetPriority(ctx, args[0], args[1], value)
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func propertyCommand() *cli.Command {
	return &cli.Command{
		Name:      "property",
		Usage:     "Set or remove a drawer property",
		ArgsUsage: "<file> <target> <key> [value]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "remove", Aliases: []string{"r"}, Usage: "Remove the property"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 3, "<file> <target> <key> [value]")
			if err != nil {
				return err
			}
			var res *orgservice.MutationResult
			if cmd.Bool("remove") {
				res, err = svc.RemoveProperty(ctx, args[0], args[1], args[2])
			} else {
				value := ""
				if cmd.Args().Len() > 3 {
					value = cmd.Args().Get(3)
				}
				res, err = svc.SetProperty(ctx, args[0], args[1], args[2], value)
			}
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func clockCommand() *cli.Command {
	action := func(in bool) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target>")
			if err != nil {
				return err
			}
			var res *orgservice.MutationResult
			if in {
				res, err = svc.ClockIn(ctx, args[0], args[1], time.Now())
			} else {
				res, err = svc.ClockOut(ctx, args[0], args[1], time.Now())
			}
			if err != nil {
				return err
			}
			return emit(res)
		}
	}
	return &cli.Command{
		Name:  "clock",
		Usage: "Track working time on a headline",
		Commands: []*cli.Command{
			{Name: "in", Usage: "Open a clock", ArgsUsage: "<file> <target>", Action: action(true)},
			{Name: "out", Usage: "Close the open clock", ArgsUsage: "<file> <target>", Action: action(false)},
		},
	}
}

func refileCommand() *cli.Command {
	return &cli.Command{
		Name:      "refile",
		Usage:     "Move a subtree under a new parent headline",
		ArgsUsage: "<file> <target> <dest-target>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dest-file", Usage: "Destination document (defaults to the source file)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 3, "<file> <target> <dest-target>")
			if err != nil {
				return err
			}
			res, err := svc.Refile(ctx, args[0], args[1], cmd.String("dest-file"), args[2], time.Now())
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Move a subtree to the archive file with provenance properties",
		ArgsUsage: "<file> <target>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target>")
			if err != nil {
				return err
			}
			res, err := svc.Archive(ctx, args[0], args[1], time.Now())
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Append a new headline (top-level, or as the last child of --parent)",
		ArgsUsage: "<file> <title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "parent", Usage: "Parent headline identifier"},
			&cli.StringFlag{Name: "keyword", Aliases: []string{"k"}, Usage: "TODO keyword"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Priority letter"},
			&cli.StringFlag{Name: "tags", Usage: "Colon- or comma-separated tags"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <title>")
			if err != nil {
				return err
			}
			var prio byte
			if p := cmd.String("priority"); p != "" {
				if len(p) != 1 {
					return apperr.Newf(apperr.KindInvalidArgs, "priority must be a single character, got %q", p)
				}
				prio = p[0]
			}
			h := editor.NewHeadline{
				Title:    args[1],
				Keyword:  cmd.String("keyword"),
				Priority: prio,
				Tags:     splitTagFlag(cmd.String("tags")),
			}
			res, err := svc.AddHeadline(ctx, args[0], cmd.String("parent"), h)
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func idCommand() *cli.Command {
	return &cli.Command{
		Name:      "id",
		Usage:     "Print the headline's ID property, minting one when absent",
		ArgsUsage: "<file> <target>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			args, err := requireArgs(cmd, 2, "<file> <target>")
			if err != nil {
				return err
			}
			res, err := svc.EnsureID(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Apply a JSON array of edit commands atomically (from a file or stdin)",
		ArgsUsage: "[file.json]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			in := os.Stdin
			if cmd.Args().Len() > 0 {
				f, err := os.Open(cmd.Args().Get(0))
				if err != nil {
					return apperr.Newf(apperr.KindFileNotFound, "batch file: %v", err)
				}
				defer f.Close()
				in = f
			}
			res, err := svc.Batch(ctx, in, time.Now())
			if err != nil {
				return err
			}
			return emit(res)
		},
	}
}

func requireArgs(cmd *cli.Command, n int, usage string) ([]string, error) {
	if cmd.Args().Len() < n {
		return nil, apperr.Newf(apperr.KindInvalidArgs, "expected %s", usage)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = cmd.Args().Get(i)
	}
	return out, nil
}

func splitTagFlag(s string) []string {
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ',' }) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
