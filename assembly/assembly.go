package assembly

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/log"
	"skeb-gate-service/conf"
)

type Assembly struct {
	config   conf.Local
	server   *http.Server
	logger   *log.Adapter
	redisCli redis.UniversalClient
}

func New(config conf.Local, logger *log.Adapter) (*Assembly, error) {
	var redisCli redis.UniversalClient
	if config.Redis != nil {
		redisCli = redis.NewClient(&redis.Options{
			Addr:     config.Redis.Address,
			Username: config.Redis.Username,
			Password: config.Redis.Password,
		})
	}

	locator := NewLocator(logger)
	server := http.NewServer(logger)
	server.Upgrade(locator.Handler(config, redisCli))

	return &Assembly{
		config:   config,
		server:   server,
		logger:   logger,
		redisCli: redisCli,
	}, nil
}

func (a *Assembly) ListenAndServe() error {
	return a.server.ListenAndServe(a.config.BindAddress)
}

func (a *Assembly) Close() error {
	err := a.server.Shutdown(context.Background())
	if err != nil {
		return err
	}
	if a.redisCli != nil {
		return a.redisCli.Close()
	}
	return nil
}
