package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/hostbridge"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// SelectBridge builds the host bridge from the launch configuration. Signed
// host init data wins over a launcher token; with neither the client runs
// standalone. An invalid source is an error, not a silent downgrade.
func SelectBridge(ctx context.Context, cfg *config.Config, logger logging.Logger, now time.Time) (hostbridge.Bridge, error) {
	switch {
	case cfg.InitData != "":
		launch, err := hostbridge.ParseInitData(cfg.InitData, cfg.BotToken, cfg.InitDataMaxAge, now)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "launched from host init data")
		return hostbridge.NewSession(*launch, logger), nil

	case cfg.LaunchToken != "":
		launch, err := hostbridge.ParseLaunchToken(cfg.LaunchToken, []byte(cfg.LaunchSecret))
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "launched from launcher token")
		return hostbridge.NewSession(*launch, logger), nil

	default:
		return hostbridge.Standalone{}, nil
	}
}
