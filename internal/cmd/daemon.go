package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/bridge"
	"github.com/meetmind/meetmind/internal/config"
	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/logger"
	"github.com/meetmind/meetmind/internal/summarize"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the recording daemon",
	Long: `Run the recording daemon. It accepts newline-delimited JSON commands on a
Unix socket and, unless disabled, the same commands over the local HTTP bridge.
Captions and chat snapshots are segmented into utterances and written through to
the local store as they are committed.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().Bool("no-bridge", false, "disable the HTTP bridge")
	daemonCmd.Flags().String("bridge-addr", "", "HTTP bridge listen address")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	setupLogging(cfg, os.Stderr)
	log := logger.With("daemon")

	if noBridge, _ := cmd.Flags().GetBool("no-bridge"); noBridge {
		cfg.Bridge.Enabled = false
	}
	if addr, _ := cmd.Flags().GetString("bridge-addr"); addr != "" {
		cfg.Bridge.Addr = addr
	}

	faults := fault.New(store)
	defer faults.Close()

	opts := daemon.HandlerOptions{
		Store:           store,
		Faults:          faults,
		ShrinkThreshold: cfg.Segmentation.ShrinkThreshold,
	}
	endpoint, err := summarize.NewEndpoint(cfg.Summarize)
	if err != nil {
		log.Warn().Err(err).Msg("summarization disabled")
	} else {
		d := summarize.NewDispatcher(store, endpoint, policyFrom(cfg.Summarize))
		d.Faults = faults
		opts.Summarizer = d
	}

	hub := daemon.NewHub()
	opts.Events = hub
	handler := daemon.NewHandler(opts)

	var access bridge.Access
	if cfg.Bridge.Enabled {
		if access, err = bridgeAccess(cfg.Bridge); err != nil {
			return err
		}
		if len(access.AllowedOrigins) == 0 {
			log.Warn().Msg("bridge: no allowed origins configured, browser requests will be refused")
		}
	}

	ln, err := daemon.Listen(cfg.SocketPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	running := 1
	go func() { errCh <- daemon.NewServer(handler, hub).Serve(ctx, ln) }()
	if cfg.Bridge.Enabled {
		running++
		go func() { errCh <- bridge.New(handler, hub, access).Listen(ctx, cfg.Bridge.Addr) }()
	}

	// The first listener to return stops the other.
	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
		cancel()
	}

	handler.Shutdown()
	if errors.Is(firstErr, context.Canceled) {
		firstErr = nil
	}
	log.Info().Msg("daemon stopped")
	return firstErr
}

// bridgeAccess returns the bridge access rules. Without a configured token one
// is generated once and kept in the bridge token file.
func bridgeAccess(cfg config.BridgeConfig) (bridge.Access, error) {
	access := bridge.Access{AllowedOrigins: cfg.AllowedOrigins, Token: cfg.Token}
	if access.Token != "" {
		return access, nil
	}

	path := config.BridgeTokenPath()
	data, err := os.ReadFile(path)
	if err == nil && len(strings.TrimSpace(string(data))) > 0 {
		access.Token = strings.TrimSpace(string(data))
		return access, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return access, fmt.Errorf("read bridge token: %w", err)
	}

	access.Token = uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return access, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(access.Token+"\n"), 0600); err != nil {
		return access, fmt.Errorf("write bridge token: %w", err)
	}
	logger.Infof("bridge token written to %s", path)
	return access, nil
}

func policyFrom(cfg config.SummarizeConfig) summarize.Policy {
	p := summarize.DefaultPolicy()
	p.MinContent = cfg.MinContent
	p.MaxContent = cfg.MaxContent
	p.Pacing = cfg.Pacing
	return p
}
