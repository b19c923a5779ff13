package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fincast/internal/cli"
	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/daemon"
)

// serveRuntime is written by a running feed server so that status and stop
// can find it.
type serveRuntime struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	StorePath string    `json:"store_path"`
}

var (
	flagServeAddr         string
	flagServeInterval     time.Duration
	flagServeDetach       bool
	flagServeRuntimeFile  string
	flagServeLogFile      string
	flagServeEventsBuffer int
	flagServeChild        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the projection over HTTP with a live event stream",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show feed server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running feed server",
	RunE:  runServeStop,
}

func init() {
	defaultRuntime := filepath.Join(config.DataDir(), "fincast-serve.json")
	defaultLog := filepath.Join(config.DataDir(), "fincast-serve.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().DurationVar(&flagServeInterval, "interval", 0, "Store polling interval (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServeRuntimeFile, "runtime-file", defaultRuntime, "Runtime file holding the server pid and address")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	serveCmd.PersistentFlags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

// serveAddr resolves --addr against the config.
func serveAddr(cfg config.Config) string {
	if flagServeAddr != "" {
		return flagServeAddr
	}
	return cfg.Serve.Addr
}

func runServe(cmd *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid serve launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if flagServeDetach {
		return startServeDetached(cfg)
	}
	return runServeForeground(cmd, cfg)
}

func startServeDetached(cfg config.Config) error {
	if rt, ok := liveServer(flagServeRuntimeFile); ok {
		return fmt.Errorf("feed server already running (pid %d)", rt.PID)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create server log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open server log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Stdin = nil
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started feed server (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Runtime file: %s\n", flagServeRuntimeFile)
	fmt.Printf("  API: http://%s/v1/status\n", serveAddr(cfg))
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServeForeground(cmd *cobra.Command, cfg config.Config) error {
	if rt, ok := liveServer(flagServeRuntimeFile); ok {
		return fmt.Errorf("feed server already running (pid %d)", rt.PID)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeRuntimeFile), 0o750); err != nil {
		return fmt.Errorf("create server directory: %w", err)
	}

	defaults, err := defaultState(cfg, time.Now())
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	addr := serveAddr(cfg)
	if err := writeRuntime(flagServeRuntimeFile, serveRuntime{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		StorePath: st.Path(),
	}); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServeRuntimeFile) }()

	interval := cfg.PollInterval()
	if flagServeInterval > 0 {
		interval = flagServeInterval
	}

	// Without --verbose or --quiet the server logs at info, not warn.
	logger := newLogger(os.Stderr)
	if logger.GetLevel() == zerolog.WarnLevel {
		logger = logger.Level(zerolog.InfoLevel)
	}

	svc := daemon.New(st, daemon.Config{
		Addr:         addr,
		Interval:     interval,
		EventsBuffer: flagServeEventsBuffer,
		Stride:       cfg.Chart.Stride,
		StorePath:    st.Path(),
		Defaults:     defaults,
	}, logger)

	fmt.Printf("  fincast feed listening on http://%s\n", addr)
	fmt.Printf("  Polling %s every %s\n", st.Path(), interval)
	fmt.Printf("  Stop with: fincast serve stop --runtime-file %s\n", flagServeRuntimeFile)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	rt, ok := liveServer(flagServeRuntimeFile)
	if !ok {
		fmt.Printf("  Feed server: not running\n")
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := rt.Addr
	if flagServeAddr != "" || addr == "" {
		addr = serveAddr(cfg)
	}
	cur := cfg.Appearance.Currency

	fmt.Printf("  Server PID: %d\n", rt.PID)
	fmt.Printf("  Address: http://%s\n", addr)
	fmt.Printf("  Up since: %s\n", rt.StartedAt.Local().Format(time.RFC3339))

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s\n", st.LastPollAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Poll count: %d\n", st.PollCount)
	fmt.Printf("  Store: %s (revision %d)\n", st.StorePath, st.Projection.Revision)
	fmt.Printf("  Year: %d\n", st.Projection.Year)
	fmt.Printf("  Year end: forecast %s, real %s\n",
		cli.FormatAmount(st.Projection.YearEndForecast, cur), cli.FormatAmount(st.Projection.YearEndReal, cur))
	if st.Projection.CurrentDelta.Valid {
		fmt.Printf("  Difference today: %s\n", cli.FormatSigned(st.Projection.CurrentDelta.Decimal, cur))
	}
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	rt, ok := liveServer(flagServeRuntimeFile)
	if !ok {
		_ = os.Remove(flagServeRuntimeFile)
		return errors.New("feed server is not running")
	}

	proc, err := os.FindProcess(rt.PID)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(rt.PID) {
			_ = os.Remove(flagServeRuntimeFile)
			fmt.Printf("  Stopped feed server (pid %d)\n", rt.PID)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("feed server (pid %d) did not exit in time", rt.PID)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// liveServer reports the server recorded in path, if its process still runs.
func liveServer(path string) (serveRuntime, bool) {
	rt, err := readRuntime(path)
	if err != nil {
		return rt, false
	}
	return rt, processAlive(rt.PID)
}

func writeRuntime(path string, rt serveRuntime) error {
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readRuntime(path string) (serveRuntime, error) {
	var rt serveRuntime
	//nolint:gosec // runtime path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return rt, err
	}
	if err := json.Unmarshal(data, &rt); err != nil {
		return rt, fmt.Errorf("runtime file %s: %w", path, err)
	}
	if rt.PID <= 0 {
		return rt, fmt.Errorf("runtime file %s: invalid pid %d", path, rt.PID)
	}
	return rt, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
