package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskboard/domain/dto"
	"taskboard/pkg/boardclient"
	"taskboard/pkg/logger"
)

type globalFlags struct {
	url                string
	token              string
	project            string
	debounce           time.Duration
	globalSingleFlight bool
}

var flags globalFlags

func main() {
	rootCmd := &cobra.Command{
		Use:   "boardctl",
		Short: "Task board client",
		Long:  "boardctl keeps a local mirror of the task board and sends guarded mutations.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: "warn", Format: "text", Output: "stdout"})
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.url, "url", envOr("BOARD_URL", "http://localhost:8080"), "Board API base URL")
	pf.StringVar(&flags.token, "token", os.Getenv("BOARD_TOKEN"), "Bearer token")
	pf.StringVar(&flags.project, "project", "", "Limit to one project id")
	pf.DurationVar(&flags.debounce, "debounce", boardclient.DefaultDebounce, "Status change debounce")
	pf.BoolVar(&flags.globalSingleFlight, "global-single-flight", false, "Allow one status request at a time across all tasks")

	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(splitCmd())
	rootCmd.AddCommand(logCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newClient builds a client from the persistent flags
func newClient(onEvent func(*dto.TaskEvent), onError func(uuid.UUID, error)) (*boardclient.Client, error) {
	cfg := boardclient.Config{
		BaseURL: flags.url,
		Token:   flags.token,
		Guard: boardclient.GuardOptions{
			Debounce:           flags.debounce,
			GlobalSingleFlight: flags.globalSingleFlight,
			OnError:            onError,
		},
		OnEvent: onEvent,
	}
	if flags.project != "" {
		id, err := uuid.Parse(flags.project)
		if err != nil {
			return nil, fmt.Errorf("invalid --project: %w", err)
		}
		cfg.ProjectID = &id
	}
	return boardclient.NewClient(cfg), nil
}

func parseID(arg, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid %s id: %s", name, arg)
	}
	return id, nil
}
