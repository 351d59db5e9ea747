package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hurttlocker/chatlens/internal/analyze"
	"github.com/hurttlocker/chatlens/internal/config"
	"github.com/hurttlocker/chatlens/internal/ingest"
	chatlensmcp "github.com/hurttlocker/chatlens/internal/mcp"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "words":
		err = runWords(os.Args[2:])
	case "conversations":
		err = runConversations(os.Args[2:])
	case "contacts":
		err = runContacts(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "conversation":
		err = runConversation(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("chatlens %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cmdOpts holds flags shared by every subcommand plus leftover
// positional arguments.
type cmdOpts struct {
	configPath string
	dbPath     string
	outPath    string
	top        int
	limit      int
	verbose    bool
	args       []string
}

func parseArgs(args []string) (cmdOpts, error) {
	opts := cmdOpts{}
	i := 0
	next := func(flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		i++
		return args[i], nil
	}
	for ; i < len(args); i++ {
		arg := args[i]
		var err error
		switch arg {
		case "--db":
			opts.dbPath, err = next(arg)
		case "--config":
			opts.configPath, err = next(arg)
		case "--out":
			opts.outPath, err = next(arg)
		case "--top":
			var v string
			if v, err = next(arg); err == nil {
				if opts.top, err = strconv.Atoi(v); err != nil {
					err = fmt.Errorf("invalid --top value: %s", v)
				}
			}
		case "--limit":
			var v string
			if v, err = next(arg); err == nil {
				if opts.limit, err = strconv.Atoi(v); err != nil {
					err = fmt.Errorf("invalid --limit value: %s", v)
				}
			}
		case "--verbose":
			opts.verbose = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				err = fmt.Errorf("unknown flag: %s", arg)
			} else {
				opts.args = append(opts.args, arg)
			}
		}
		if err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// loadAnalyzer resolves config, loads the message collection once, and
// wraps it in an analyzer. The platform precondition is skipped when
// the store path was overridden, since that usually means a copied
// database on another machine.
func loadAnalyzer(opts cmdOpts, logger *zap.Logger) (*analyze.Analyzer, config.Resolved, error) {
	cfg, err := config.Resolve(config.ResolveOptions{
		ConfigPath:    opts.configPath,
		CLIDBPath:     opts.dbPath,
		CLIExportPath: opts.outPath,
	})
	if err != nil {
		return nil, cfg, err
	}

	engine := ingest.NewEngine(ingest.Config{
		DBPath:            cfg.DBPath.Value,
		RowCap:            cfg.RowCap,
		Placeholder:       cfg.Placeholder,
		SkipPlatformCheck: cfg.DBPath.Value != config.DefaultDBPath(),
		Logger:            logger,
	})
	if err := engine.Load(context.Background()); err != nil {
		return nil, cfg, fmt.Errorf("loading messages: %w", err)
	}

	analyzer := analyze.New(engine.Messages(), analyze.Options{
		StopWords:          cfg.StopWords,
		AttachmentPatterns: cfg.AttachmentPatterns,
	})
	return analyzer, cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func runServe(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	analyzer, _, err := loadAnalyzer(opts, logger)
	if err != nil {
		return err
	}

	srv := chatlensmcp.NewServer(chatlensmcp.ServerConfig{
		Analyzer: analyzer,
		Version:  version,
	})
	logger.Info("serving MCP over stdio", zap.Int("messages", analyzer.MessageCount()))
	return server.ServeStdio(srv)
}

func runStats(args []string) error {
	analyzer, err := cliAnalyzer(args)
	if err != nil {
		return err
	}
	stats, err := analyzer.BasicStats()
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runWords(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	analyzer, _, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return err
	}
	words, err := analyzer.WordFrequency(opts.top)
	if err != nil {
		return err
	}
	return printJSON(words)
}

func runConversations(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	analyzer, _, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return err
	}
	stats, err := analyzer.ConversationStats(opts.top)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runContacts(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	analyzer, _, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return err
	}
	contacts, err := analyzer.ListContacts(opts.limit)
	if err != nil {
		return err
	}
	return printJSON(contacts)
}

func runSearch(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.args) == 0 {
		return fmt.Errorf("usage: chatlens search <query> [--limit N]")
	}
	analyzer, _, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return err
	}
	results, err := analyzer.SearchMessages(opts.args[0], opts.limit)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runConversation(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(opts.args) == 0 {
		return fmt.Errorf("usage: chatlens conversation <contact> [--limit N]")
	}
	analyzer, _, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return err
	}
	conv, err := analyzer.Conversation(opts.args[0], opts.limit, 0)
	if err != nil {
		return err
	}
	return printJSON(conv)
}

func runExport(args []string) error {
	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	analyzer, cfg, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return err
	}
	snapshot, err := analyzer.Snapshot()
	if err != nil {
		return err
	}
	path := cfg.ExportPath.Value
	if len(opts.args) > 0 {
		path = opts.args[0]
	}
	if err := analyze.WriteSnapshot(path, snapshot); err != nil {
		return err
	}
	fmt.Printf("Stats exported to %s\n", path)
	return nil
}

func cliAnalyzer(args []string) (*analyze.Analyzer, error) {
	opts, err := parseArgs(args)
	if err != nil {
		return nil, err
	}
	analyzer, _, err := loadAnalyzer(opts, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return analyzer, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printUsage() {
	fmt.Printf(`chatlens %s - local message-store analytics over MCP

Usage:
  chatlens <command> [arguments]

Commands:
  serve                    Serve analytics as MCP tools over stdio
  stats                    Print basic message statistics
  words                    Print word frequency [--top N]
  conversations            Print per-contact conversation stats [--top N]
  contacts                 List contacts by message count [--limit N]
  search <query>           Search message text [--limit N]
  conversation <contact>   Print a conversation window [--limit N]
  export [path]            Export stats snapshot to JSON
  version                  Print version

Flags:
  --db <path>       Message store path (default: ~/Library/Messages/chat.db)
  --config <path>   Config file (default: ~/.chatlens/config.yaml)
  --verbose         Debug logging (serve)
  -h, --help        Show this help message

All analysis runs locally; message content never leaves the machine.
`, version)
}
