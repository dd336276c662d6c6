// Package main provides the arena simulator binary that plays scripted
// encounters between combatants and reports each fight's outcome.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/bladecore/internal/arena"
	"github.com/cory-johannsen/bladecore/internal/config"
	"github.com/cory-johannsen/bladecore/internal/content"
	"github.com/cory-johannsen/bladecore/internal/game/dice"
	"github.com/cory-johannsen/bladecore/internal/observability"
	"github.com/cory-johannsen/bladecore/internal/scripting"
	"github.com/cory-johannsen/bladecore/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	encounterID := flag.String("encounter", "", "encounter to play; empty plays every encounter")
	contentDir := flag.String("content", "", "content root; overrides simulation.content_dir")
	scriptDir := flag.String("scripts", "", "Lua hook directory; overrides simulation.script_dir")
	realtime := flag.Bool("realtime", false, "pace ticks against the wall clock")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *contentDir != "" {
		cfg.Simulation.ContentDir = *contentDir
	}
	if *scriptDir != "" {
		cfg.Simulation.ScriptDir = *scriptDir
	}
	cfg.Simulation.Realtime = cfg.Simulation.Realtime || *realtime

	logger, err := observability.NewLogger(cfg.Logging, "arenasim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	if cfg.Simulation.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Simulation.MaxDuration)
		defer cancel()
	}

	lib, err := content.Load(ctx, cfg.Simulation.ContentDir, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	src := dice.NewCryptoSource()
	scripts, err := loadScripts(cfg, src, logger)
	if err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}
	if scripts != nil {
		defer scripts.Close()
	}

	matches, err := buildMatches(lib, *encounterID, cfg, src, scripts, logger)
	if err != nil {
		logger.Fatal("building matches", zap.Error(err))
	}

	logger.Info("simulator initialized",
		zap.Int("matches", len(matches)),
		zap.Int("tick_rate", cfg.Simulation.TickRate),
		zap.Bool("realtime", cfg.Simulation.Realtime),
		zap.Duration("startup", time.Since(start)),
	)

	if cfg.Simulation.Realtime {
		err = runRealtime(ctx, cfg, matches, logger)
	} else {
		err = runFast(ctx, cfg, matches)
	}
	for _, nm := range matches {
		logSummary(logger, nm.id, nm.match.Summary())
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("simulator finished", zap.Duration("elapsed", time.Since(start)))
}

type namedMatch struct {
	id    string
	match *arena.Match
}

// loadScripts returns nil when scripting is disabled or the script
// directory does not exist.
func loadScripts(cfg config.Config, src dice.Source, logger *zap.Logger) (*scripting.Manager, error) {
	dir := cfg.Simulation.ScriptDir
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		logger.Info("script directory missing, scripting disabled", zap.String("dir", dir))
		return nil, nil
	}
	mgr := scripting.NewManager(src, logger, cfg.Simulation.ScriptInstructionLimit)
	if err := mgr.LoadDir(dir); err != nil {
		mgr.Close()
		return nil, err
	}
	return mgr, nil
}

func buildMatches(lib *content.Library, only string, cfg config.Config, src dice.Source, scripts *scripting.Manager, logger *zap.Logger) ([]namedMatch, error) {
	ids := lib.EncounterIDs()
	if only != "" {
		if _, ok := lib.Encounter(only); !ok {
			return nil, fmt.Errorf("encounter %q not found", only)
		}
		ids = []string{only}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no encounters under %q", cfg.Simulation.ContentDir)
	}

	matches := make([]namedMatch, 0, len(ids))
	for _, id := range ids {
		enc, _ := lib.Encounter(id)
		opts := arena.Options{
			Rules:        cfg.Combatant.Rules(),
			Input:        cfg.Input.Settings(),
			Damping:      cfg.Combatant.KnockbackDamping,
			KillExp:      killExp(cfg.Combatant.KillExp),
			RichManaZone: cfg.Simulation.RichManaZone,
			Source:       src,
			Logger:       logger,
		}
		if scripts != nil {
			opts.Selector = scripts
		}
		m, err := arena.NewMatch(lib, enc, opts)
		if err != nil {
			return nil, err
		}
		matches = append(matches, namedMatch{id: id, match: m})
	}
	return matches, nil
}

// killExp maps the config's "0 disables" onto the arena's "negative disables".
func killExp(v int) int {
	if v == 0 {
		return -1
	}
	return v
}

// runRealtime drives every match from one wall-clock ticker under the
// service lifecycle, so SIGINT or SIGTERM ends the run cleanly.
func runRealtime(ctx context.Context, cfg config.Config, matches []namedMatch, logger *zap.Logger) error {
	step := cfg.Simulation.Step()
	runner := arena.NewRunner(cfg.Simulation.Interval(), logger)
	for _, nm := range matches {
		m := nm.match
		runner.Register(nm.id, func(float64) bool { return m.Step(step) })
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("simulation", server.NewContextService(runner.Run))
	return lifecycle.Run(ctx)
}

// runFast plays the matches concurrently without pacing.
func runFast(ctx context.Context, cfg config.Config, matches []namedMatch) error {
	step := cfg.Simulation.Step()
	g, gctx := errgroup.WithContext(ctx)
	for _, nm := range matches {
		m := nm.match
		g.Go(func() error {
			for m.Step(step) {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("encounter %q: %w", nm.id, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func logSummary(logger *zap.Logger, id string, s arena.Summary) {
	logger.Info("encounter result",
		zap.String("encounter", id),
		zap.String("winner", s.Winner),
		zap.Float64("elapsed", s.Elapsed),
		zap.Int("ticks", s.Ticks),
		zap.Int("effects", s.Effects),
	)
	for _, st := range s.Standings {
		logger.Info("standing",
			zap.String("encounter", id),
			zap.String("name", st.Name),
			zap.String("team", st.Team),
			zap.Bool("alive", st.Alive),
			zap.Float64("health", st.Health),
			zap.Float64("max_health", st.MaxHealth),
			zap.Int("level", st.Level),
			zap.Int("hits_taken", st.HitsTaken),
			zap.Int("damage_taken", st.DamageTaken),
			zap.Int("damage_dealt", st.DamageDealt),
			zap.Int("kills", st.Kills),
			zap.Int("exp", st.Exp),
		)
	}
}
