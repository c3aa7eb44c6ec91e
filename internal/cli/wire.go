package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/ai"
	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/engine"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/dmitrijs2005/taskkeeper/internal/identity"
	"github.com/dmitrijs2005/taskkeeper/internal/localdb"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/media"
	"github.com/dmitrijs2005/taskkeeper/internal/prefs"
	"github.com/dmitrijs2005/taskkeeper/internal/store"
	"github.com/dmitrijs2005/taskkeeper/internal/store/memory"
	"github.com/dmitrijs2005/taskkeeper/internal/store/postgres"
)

// dataDir holds on-device files given as bare names.
const dataDir = ".taskkeeper"

// NewFromConfig wires the production dependencies described by cfg. The
// returned cleanup closes the stores in reverse order of opening.
//
// Without a database DSN the engine runs against an in-memory store. A
// missing preference database or avatar storage only disables that feature.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	bridge, err := SelectBridge(ctx, cfg, logger, time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("launch error: %w", err)
	}

	var st store.Store
	if cfg.Standalone() {
		logger.Info(ctx, "no database configured, using in-memory store")
		st = memory.New()
	} else {
		pg, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db init error: %w", err)
		}
		st = pg
	}
	closers := []func() error{st.Close}

	var backend prefs.Backend
	prefsDSN, err := filex.LocalPath(dataDir, cfg.PrefsDSN)
	if err != nil {
		logger.Warn(ctx, "data directory unavailable", "err", err)
		prefsDSN = cfg.PrefsDSN
	}
	if local, err := localdb.Open(ctx, prefsDSN); err != nil {
		logger.Warn(ctx, "preference storage unavailable", "dsn", prefsDSN, "err", err)
	} else {
		backend = local.Metadata
		closers = append(closers, local.Close)
	}

	deps := Deps{
		Engine:      engine.New(st, identity.NewResolver(bridge.User()), logger),
		Prefs:       prefs.New(backend, logger),
		Bridge:      bridge,
		Logger:      logger,
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: IsInteractive(os.Stdin),
	}

	if cfg.AIBaseURL != "" {
		deps.AI = ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AITimeout, logger)
	}

	if cfg.S3Bucket != "" {
		avatars, err := media.NewAvatarStorage(ctx, media.Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			BaseEndpoint: cfg.S3BaseEndpoint,
		}, logger)
		if err != nil {
			logger.Warn(ctx, "avatar storage unavailable", "err", err)
		} else {
			deps.Avatars = avatars
		}
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn(context.Background(), "close failed", "err", err)
			}
		}
	}
	return NewApp(deps), cleanup, nil
}
