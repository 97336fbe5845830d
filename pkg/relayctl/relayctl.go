// Package relayctl wires the logger, the hidapi transport and the relay
// service together for one invocation.
package relayctl

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/relayhid/relayctl/internal/hidtrans/hidapi"
	"github.com/relayhid/relayctl/internal/relaysvc"
)

type App struct {
	log     *zap.Logger
	backend *hidapi.Backend
	svc     *relaysvc.Service
}

func NewApp(cfg Config, verbose bool, out, errOut io.Writer) (*App, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !verbose {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	backend := hidapi.NewBackend(logger.Named("hid"))
	svc := relaysvc.New(logger.Named("relay"), backend, cfg.Profiles,
		relaysvc.WithOutput(out),
		relaysvc.WithErrOutput(errOut),
	)
	return &App{
		log:     logger,
		backend: backend,
		svc:     svc,
	}, nil
}

// Run executes one request against freshly discovered relays. All state is
// rebuilt from live device enumeration; nothing persists across runs.
func (a *App) Run(req relaysvc.Request) error {
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("error initializing hidapi: %w", err)
	}
	defer a.backend.Exit()
	defer a.log.Sync()
	return a.svc.Run(req)
}
