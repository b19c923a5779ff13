package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincast/internal/config"
	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/store"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		arg  string
		n    int
		want int
		ok   bool
	}{
		{"1", 3, 0, true},
		{" 3 ", 3, 2, true},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"x", 3, 0, false},
		{"1", 0, 0, false},
	}
	for _, tt := range tests {
		got, err := parseIndex(tt.arg, tt.n)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("parseIndex(%q, %d) = %d, %v; want %d", tt.arg, tt.n, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, model.ErrNoSuchEntry) {
			t.Errorf("parseIndex(%q, %d) err = %v, want ErrNoSuchEntry", tt.arg, tt.n, err)
		}
	}
}

func TestDefaultState(t *testing.T) {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	cfg := config.DefaultConfig()
	st, err := defaultState(cfg, now)
	if err != nil {
		t.Fatal(err)
	}
	if st.Year != 2026 || !st.InitialBalance.IsZero() {
		t.Errorf("defaults = %d %s, want 2026 0", st.Year, st.InitialBalance)
	}

	cfg.General.DefaultYear = 2024
	cfg.General.DefaultInitialBalance = "1500.25"
	st, err = defaultState(cfg, now)
	if err != nil {
		t.Fatal(err)
	}
	if st.Year != 2024 || !st.InitialBalance.Equal(decimal.RequireFromString("1500.25")) {
		t.Errorf("configured defaults = %d %s", st.Year, st.InitialBalance)
	}

	cfg.General.DefaultYear = 99999
	if _, err := defaultState(cfg, now); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad default year err = %v, want ErrValidation", err)
	}
}

func TestSessionMutate(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "fincast.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st.Close() }()

	logger := zerolog.Nop()
	s := &session{
		cfg:   config.DefaultConfig(),
		store: st,
		state: model.State{Year: 2025},
		log:   &logger,
	}

	err = s.mutate("rule added", func(m *model.State) error {
		return m.AddRule(model.MonthlyRule{Amount: decimal.NewFromInt(-50), DayOfMonth: 31, ActiveFrom: model.NewDate(2025, 1, 1)})
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.mutate("rule added", func(m *model.State) error {
		return m.AddRule(model.MonthlyRule{Amount: decimal.NewFromInt(1), DayOfMonth: 40, ActiveFrom: model.NewDate(2025, 1, 1)})
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("invalid rule err = %v, want ErrValidation", err)
	}

	loaded, err := st.Load(model.State{Year: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.MonthlyRules) != 1 || len(s.state.MonthlyRules) != 1 {
		t.Errorf("rules stored = %d, in session = %d, want 1 and 1", len(loaded.MonthlyRules), len(s.state.MonthlyRules))
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := newSetupValues(cfg)
	v.year, v.balance, v.stride, v.theme = "2025", "1000,50", "7", "tokyo-night"
	if err := v.apply(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.General.DefaultYear != 2025 || cfg.General.DefaultInitialBalance != "1000.5" || cfg.Chart.Stride != 7 {
		t.Errorf("applied config = %+v", cfg.General)
	}

	v.year = ""
	if err := v.apply(&cfg); err != nil || cfg.General.DefaultYear != 0 {
		t.Errorf("blank year = %d, %v; want 0", cfg.General.DefaultYear, err)
	}

	for _, bad := range []setupValues{
		{year: "20x5", stride: "2"},
		{balance: "lots", stride: "2"},
		{stride: "0"},
	} {
		c := config.DefaultConfig()
		if err := bad.apply(&c); err == nil {
			t.Errorf("apply(%+v) accepted bad input", bad)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	defer func() { flagQuiet, flagVerbose = false, false }()

	tests := []struct {
		quiet, verbose bool
		want           zerolog.Level
	}{
		{false, false, zerolog.WarnLevel},
		{false, true, zerolog.DebugLevel},
		{true, true, zerolog.Disabled},
	}
	for _, tt := range tests {
		flagQuiet, flagVerbose = tt.quiet, tt.verbose
		var buf bytes.Buffer
		if got := newLogger(&buf).GetLevel(); got != tt.want {
			t.Errorf("quiet=%v verbose=%v -> %s, want %s", tt.quiet, tt.verbose, got, tt.want)
		}
	}

	flagQuiet, flagVerbose = false, false
	var buf bytes.Buffer
	l := newLogger(&buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestRuntimeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "serve.json")

	if _, ok := liveServer(path); ok {
		t.Error("missing runtime file reported a live server")
	}

	want := serveRuntime{PID: os.Getpid(), Addr: "127.0.0.1:9000", StorePath: "/tmp/x.db"}
	if err := writeRuntime(path, want); err != nil {
		t.Fatal(err)
	}
	got, ok := liveServer(path)
	if !ok || got.PID != want.PID || got.Addr != want.Addr || got.StorePath != want.StorePath {
		t.Errorf("liveServer = %+v, %v", got, ok)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"pid":0}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readRuntime(bad); err == nil {
		t.Error("readRuntime accepted pid 0")
	}
	if _, ok := liveServer(bad); ok {
		t.Error("invalid runtime file reported a live server")
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	if strings.Join(got, " ") != "serve --addr :9000" {
		t.Errorf("filterDetachArg = %v", got)
	}
}
