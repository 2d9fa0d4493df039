package main

import (
	"flag"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stagehand-run/stagehand/internal/config"
	"github.com/stagehand-run/stagehand/internal/logging"
	"github.com/stagehand-run/stagehand/internal/scheduler"
	"github.com/stagehand-run/stagehand/internal/server"
	"github.com/stagehand-run/stagehand/internal/stage"
	"github.com/stagehand-run/stagehand/internal/stages/journal"
	"github.com/stagehand-run/stagehand/internal/stages/pulse"
	"github.com/stagehand-run/stagehand/internal/stages/script"
)

func main() {
	configPath := flag.String("config", "", "path to a host config file (toml)")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg := config.DefaultHostConfig()
	if *configPath != "" {
		loaded, err := config.LoadHostConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load host config")
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded host config")
	}

	sched := scheduler.New()
	if err := addConfiguredStages(sched, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to attach initial stages")
	}
	log.Info().Int("stages", sched.Len()).Msg("stagehand started")

	// The scheduler is single-threaded; the status server reads through a
	// mutex-guarded snapshot the tick loop refreshes.
	var (
		snapMu sync.RWMutex
		snap   server.Snapshot
	)
	refresh := func(ticks uint64, done bool) {
		ids := sched.Attached()
		attached := make([]uint64, len(ids))
		for i, id := range ids {
			attached[i] = uint64(id)
		}
		snapMu.Lock()
		snap = server.Snapshot{Attached: attached, Ticks: ticks, Done: done}
		snapMu.Unlock()
	}
	refresh(0, false)

	if cfg.Server.Enabled {
		srv := server.New(cfg.Server.Addr, cfg.Server.CorsOrigins, func() server.Snapshot {
			snapMu.RLock()
			defer snapMu.RUnlock()
			return snap
		})
		go func() {
			log.Info().Str("addr", cfg.Server.Addr).Msg("status server started")
			if err := srv.Run(); err != nil {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	interval := time.Duration(cfg.Runtime.TickIntervalMS) * time.Millisecond
	var ticks uint64
	for {
		done := sched.Tick()
		ticks++
		refresh(ticks, done)
		if done {
			log.Info().Uint64("ticks", ticks).Msg("scheduler drained")
			return
		}
		if cfg.Runtime.MaxTicks > 0 && ticks >= uint64(cfg.Runtime.MaxTicks) {
			log.Warn().Uint64("ticks", ticks).Msg("tick budget exhausted")
			return
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

func addConfiguredStages(sched *scheduler.Scheduler, cfg config.HostConfig) error {
	if cfg.Stages.Pulse.Enabled {
		var opts []pulse.Option
		if cfg.Stages.Pulse.LifetimeTicks > 0 {
			strategy := stage.Synchronous
			if cfg.Stages.Pulse.DeferredSwap {
				strategy = stage.Deferred
			}
			opts = append(opts, pulse.WithLifetime(cfg.Stages.Pulse.LifetimeTicks, strategy))
		}
		if err := sched.Add(pulse.New(opts...)); err != nil {
			return err
		}
	}
	if cfg.Stages.Journal.Enabled {
		// The journal opens its database during attach and is poll-ready
		// right away, so it joins the chain on the next tick.
		if err := sched.AddWith(journal.New(cfg.Stages.Journal.Path), stage.Deferred); err != nil {
			return err
		}
	}
	if cfg.Stages.Script.Enabled {
		if err := sched.Add(script.New(cfg.Stages.Script.Path)); err != nil {
			return err
		}
	}
	return nil
}
