package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-api-helper/internal/app"
	"github.com/samvad-hq/samvad-api-helper/internal/commands"
	"github.com/samvad-hq/samvad-api-helper/internal/config"
	"github.com/samvad-hq/samvad-api-helper/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "apihelper: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "apihelper",
	Short: "Forward HTTP requests on behalf of the desktop frontend",
	Long: `apihelper sends HTTP requests with optional custom trust material
(client certificate, CA bundle, verification bypass) and returns the
response as JSON.

Examples:
  apihelper serve                      # Run the loopback command bridge
  apihelper send -f request.yaml       # Send one request and print the response
  apihelper echo hello                 # Check the command wiring`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the command bridge until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withHelper(func(ctx context.Context, h *app.Helper) error {
			if err := h.Serve(ctx, announceReady(cmd.OutOrStdout())); err != nil {
				return fmt.Errorf("bridge run: %w", err)
			}
			return nil
		})
	},
}

var (
	requestFile    string
	requestTimeout int64
)

var sendCmd = &cobra.Command{
	Use:   "send -f <request.yaml|request.json>",
	Short: "Send one request described in a file and print the response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reqCfg, err := loadRequestFile(requestFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("timeout") {
			reqCfg.TimeoutSeconds = &requestTimeout
		}
		args, err := json.Marshal(map[string]any{"config": reqCfg})
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		return invokeAndPrint(commands.CommandSendRequest, args)
	},
}

var echoCmd = &cobra.Command{
	Use:   "echo <msg>",
	Short: "Return the message unchanged",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := json.Marshal(map[string]string{"msg": args[0]})
		if err != nil {
			return err
		}
		return invokeAndPrint(commands.CommandEcho, payload)
	},
}

func init() {
	sendCmd.Flags().StringVarP(&requestFile, "file", "f", "", "request file (YAML or JSON)")
	sendCmd.Flags().Int64Var(&requestTimeout, "timeout", 0, "per-request timeout in seconds (0 disables)")
	_ = sendCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, sendCmd, echoCmd)
}

// readyLine is written once to stdout when the bridge accepts connections so
// the launching frontend learns the address and token.
type readyLine struct {
	Event string `json:"event"`
	Addr  string `json:"addr"`
	Token string `json:"token"`
}

func announceReady(w io.Writer) func(addr, token string) {
	return func(addr, token string) {
		_ = json.NewEncoder(w).Encode(readyLine{Event: "ready", Addr: addr, Token: token})
	}
}

// withHelper loads config, initializes logging and runs fn with a helper
// bound to a signal-aware context.
func withHelper(fn func(ctx context.Context, h *app.Helper) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("apihelper starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := app.NewHelper(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize helper", "error", err)
		return err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			logger.WarnObj("helper close failed", "error", cerr)
		}
	}()

	return fn(ctx, h)
}

// invokeAndPrint runs one command and writes its JSON result, or the failure
// shape, to stdout.
func invokeAndPrint(name string, args json.RawMessage) error {
	return withHelper(func(ctx context.Context, h *app.Helper) error {
		out, err := h.Commands().Invoke(ctx, name, args)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err != nil {
			f := commands.FailureOf(err)
			if encErr := enc.Encode(f); encErr != nil {
				return encErr
			}
			return fmt.Errorf("%s failed (%s)", name, f.Kind)
		}
		return enc.Encode(out)
	})
}
