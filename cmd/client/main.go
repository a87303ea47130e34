// Package main implements the nano-image command line companion. It submits
// generation jobs to the server, tracks them in a local ledger file and
// watches active jobs until they finish.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mgnegypt/nano-image/internal/client"
	"github.com/mgnegypt/nano-image/internal/ledger"
	"github.com/mgnegypt/nano-image/internal/platform/logger"
)

const usage = `Usage: client <command> [arguments]

Commands:
  generate -account <id> -prompt <text>              submit a generation job
  edit     -account <id> -upload <id> -prompt <text> submit an edit job
  watch                                              poll active jobs until they finish
  list                                               print tracked jobs, newest first
  clear                                              drop finished jobs from the ledger

Environment:
  NANOIMG_CLIENT_SERVER_URL  server base URL (default http://localhost:8080)
  NANOIMG_CLIENT_TOKEN       bearer token (required)
  NANOIMG_CLIENT_LEDGER      ledger file path (default ~/.nano-image/tasks.json)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	serverURL := envOr("NANOIMG_CLIENT_SERVER_URL", "http://localhost:8080")
	token := os.Getenv("NANOIMG_CLIENT_TOKEN")
	if token == "" {
		return fmt.Errorf("NANOIMG_CLIENT_TOKEN is required")
	}

	ledgerPath := os.Getenv("NANOIMG_CLIENT_LEDGER")
	if ledgerPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		ledgerPath = filepath.Join(home, ".nano-image", "tasks.json")
	}
	if err := os.MkdirAll(filepath.Dir(ledgerPath), 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	log := logger.Setup(envOr("NANOIMG_CLIENT_LOG_LEVEL", "warn"))
	taskLedger := ledger.New(ledger.NewFileStorage(ledgerPath), log)
	api := client.NewClient(serverURL, token, nil)

	ctx := context.Background()

	switch command {
	case "generate":
		return runGenerate(ctx, api, taskLedger, args)
	case "edit":
		return runEdit(ctx, api, taskLedger, args)
	case "watch":
		return runWatch(ctx, api, taskLedger, log)
	case "list":
		return runList(taskLedger)
	case "clear":
		return taskLedger.ClearCompleted()
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runGenerate(ctx context.Context, api *client.Client, taskLedger *ledger.Ledger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	account := fs.String("account", "", "account ID to submit against")
	prompt := fs.String("prompt", "", "generation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" || *prompt == "" {
		return fmt.Errorf("-account and -prompt are required")
	}

	task, err := api.Generate(ctx, *account, *prompt)
	if err != nil {
		return err
	}
	rec, err := taskLedger.Add(ledger.KindGenerate, task.RemoteID, task.Prompt)
	if err != nil {
		return err
	}
	fmt.Printf("submitted %s (%s)\n", rec.RemoteID, rec.LocalID)
	return nil
}

func runEdit(ctx context.Context, api *client.Client, taskLedger *ledger.Ledger, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	account := fs.String("account", "", "account ID to submit against")
	upload := fs.String("upload", "", "stored upload ID to edit")
	prompt := fs.String("prompt", "", "edit prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *account == "" || *upload == "" || *prompt == "" {
		return fmt.Errorf("-account, -upload and -prompt are required")
	}

	task, err := api.Edit(ctx, *account, *upload, *prompt)
	if err != nil {
		return err
	}
	rec, err := taskLedger.Add(ledger.KindEdit, task.RemoteID, task.Prompt)
	if err != nil {
		return err
	}
	fmt.Printf("submitted %s (%s)\n", rec.RemoteID, rec.LocalID)
	return nil
}

// watchNotifier prints finished records and cancels the watch once the
// ledger has no active records left.
type watchNotifier struct {
	ledger *ledger.Ledger
	cancel context.CancelFunc
}

func (n *watchNotifier) TaskFinished(rec ledger.Record) {
	if rec.Status.IsTerminal() && rec.ErrorMessage != "" {
		fmt.Printf("%s %s: %s\n", rec.RemoteID, rec.Status, rec.ErrorMessage)
	} else {
		fmt.Printf("%s %s %s\n", rec.RemoteID, rec.Status, rec.ResultURL)
	}
	if len(n.ledger.Active()) == 0 {
		n.cancel()
	}
}

func runWatch(ctx context.Context, api *client.Client, taskLedger *ledger.Ledger, log *slog.Logger) error {
	if len(taskLedger.Active()) == 0 {
		fmt.Println("no active jobs")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	notifier := &watchNotifier{ledger: taskLedger, cancel: cancel}
	poller := ledger.NewPoller(taskLedger, api, notifier, ledger.DefaultPollInterval, log)

	if err := poller.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runList(taskLedger *ledger.Ledger) error {
	records := taskLedger.Records()
	if len(records) == 0 {
		fmt.Println("no tracked jobs")
		return nil
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-10s  %-8s  %s", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Status, rec.Kind, rec.Prompt)
		if rec.ResultURL != "" {
			line += "  " + rec.ResultURL
		}
		fmt.Println(line)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
