package main

import (
	"context"
	stdlog "log"

	"github.com/txix-open/isp-kit/log"
	"github.com/txix-open/isp-kit/shutdown"
	"skeb-gate-service/assembly"
	"skeb-gate-service/conf"
)

func main() {
	config, err := conf.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	logger, err := log.New(log.WithLevel(config.Logging.LogLevel))
	if err != nil {
		stdlog.Fatal(err)
	}

	ctx := context.Background()

	assembly, err := assembly.New(config, logger)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	shutdown.On(func() {
		logger.Info(ctx, "starting shutdown")
		err := assembly.Close()
		if err != nil {
			logger.Error(ctx, err)
		}
		logger.Info(ctx, "shutdown completed")
	})

	logger.Info(ctx, "starting server", log.String("bindAddress", config.BindAddress))
	err = assembly.ListenAndServe()
	if err != nil {
		logger.Fatal(ctx, err)
	}
}
