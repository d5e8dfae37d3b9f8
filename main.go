package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"assistui/backend"
	"assistui/config"
	"assistui/devserver"
	"assistui/exchange"
	"assistui/model"
	"assistui/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

type globalFlags struct {
	apiURL string
	stream bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "assistui",
		Short:         "Terminal chat client for the electronics product assistant",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "backend base URL (overrides settings and "+config.EnvAPIURL+")")
	root.PersistentFlags().BoolVar(&flags.stream, "stream", false, "start with streaming replies enabled")

	root.AddCommand(
		newAskCommand(flags),
		newPingCommand(flags),
		newServeCommand(),
	)
	return root
}

// loadConfig resolves configuration and applies command line flags on top.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	config.InitDebugLog(cfg.DataDir())

	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = flags.apiURL
	}
	if cmd.Flags().Changed("stream") {
		cfg.Streaming = flags.stream
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
	isFirstRun := !config.FileExists(config.GetSettingsFilePath())

	// An explicit backend means there is nothing to ask
	if os.Getenv(config.EnvAPIURL) != "" || cmd.Flags().Changed("api-url") {
		isFirstRun = false
	}

	if isFirstRun {
		finalModel, err := tea.NewProgram(ui.NewWelcomeModel(), tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("error running welcome wizard: %w", err)
		}
		if wm, ok := finalModel.(ui.WelcomeModel); ok && !wm.IsComplete() {
			return nil
		}
	}

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return showStartupError("Configuration Error", err)
	}

	if ok, warning := cfg.KeyBindings.Validate(); !ok {
		return showStartupError("Keybinding Error", errors.New(warning))
	} else if warning != "" {
		config.DebugLog.Warn().Msg(warning)
	}

	client, err := backend.NewClient(cfg.BaseURL())
	if err != nil {
		return showStartupError("Configuration Error", err)
	}

	config.DebugLog.Info().
		Str("version", Version).
		Str("api_url", client.BaseURL()).
		Bool("streaming", cfg.Streaming).
		Msg("starting")

	conv := model.NewConversation(cfg.Greeting)
	view := ui.NewAppView(cfg, conv, exchange.NewClient(client, conv), client)

	if _, err := tea.NewProgram(view, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func showStartupError(title string, cause error) error {
	modal := ui.NewErrorModal(title, cause.Error())
	if _, err := tea.NewProgram(modal, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cause
}

func newAskCommand(flags *globalFlags) *cobra.Command {
	var modeName string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Long: "Send one message to the backend and print the assistant's reply. " +
			"With --stream the reply is printed as it arrives.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			client, err := backend.NewClient(cfg.BaseURL())
			if err != nil {
				return err
			}

			mode := model.ModeFromStreaming(cfg.Streaming)
			if modeName != "" {
				if mode, err = model.ParseMode(modeName); err != nil {
					return err
				}
			}

			conv := model.NewConversation(cfg.Greeting)
			outcome := ask(cmd.Context(), cmd.OutOrStdout(), exchange.NewClient(client, conv), conv,
				strings.Join(args, " "), mode)
			return outcome.Err
		},
	}

	cmd.Flags().StringVar(&modeName, "mode", "", "reply mode: atomic or incremental (overrides --stream)")
	return cmd
}

// ask runs one exchange and copies assistant text to out as it is applied.
func ask(ctx context.Context, out io.Writer, client *exchange.Client, conv *model.Conversation, text string, mode model.Mode) exchange.Outcome {
	first := conv.Len()
	lastIndex, printed := -1, 0

	conv.Subscribe(func(c model.Change) {
		if c.Kind == model.ChangeLoading || c.Index < first {
			return
		}
		msg, ok := conv.Last()
		if !ok || !msg.IsAssistant() {
			return
		}
		if c.Index != lastIndex {
			if lastIndex >= 0 {
				fmt.Fprintln(out)
			}
			lastIndex, printed = c.Index, 0
		}
		fmt.Fprint(out, msg.Content[printed:])
		printed = len(msg.Content)
	})

	outcome := client.Send(ctx, text, mode)
	if lastIndex >= 0 {
		fmt.Fprintln(out)
	}
	return outcome
}

func newPingCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			client, err := backend.NewClient(cfg.BaseURL())
			if err != nil {
				return err
			}

			status, err := client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s %s)\n", client.BaseURL(), status.Status, status.Service, status.Version)
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	var (
		addr      string
		wordDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development backend",
		Long: "Run a stub backend that speaks the chat protocol and echoes every message. " +
			"Useful for trying the client without the real service.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				With().Timestamp().Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			server := devserver.NewServer(addr, devserver.Options{WordDelay: wordDelay, Logger: logger})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case <-ctx.Done():
				logger.Info().Msg("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", devserver.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&wordDelay, "word-delay", devserver.DefaultWordDelay, "pause between streamed words")
	return cmd
}
