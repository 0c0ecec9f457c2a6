package assembly

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
	"skeb-gate-service/conf"
	"skeb-gate-service/handler"
	"skeb-gate-service/middleware"
	"skeb-gate-service/repository"
	"skeb-gate-service/routes"
	"skeb-gate-service/service"
	"skeb-gate-service/skeb"
	"skeb-gate-service/static"
)

type Locator struct {
	logger log.Logger
}

func NewLocator(logger log.Logger) Locator {
	return Locator{
		logger: logger,
	}
}

func (l Locator) Handler(config conf.Local, redisCli redis.UniversalClient) http.Handler {
	skebCli := skeb.NewClient(
		httpcli.New(),
		config.SkebUrls,
		time.Duration(config.RequestTimeoutInSec)*time.Second,
	)

	var windowRepo service.WindowRepo
	if redisCli != nil {
		windowRepo = repository.NewRedisWindow(redisCli)
	} else {
		windowRepo = repository.NewMemoryWindow(config.RateLimit.MaxTrackedIdentities)
	}
	rateLimit := service.NewRateLimit(windowRepo, config.RateLimit)

	aggregator := service.NewWorks(skebCli)

	return routes.Handler(
		routes.Handlers{
			Static:      handler.NewStatic(static.Page),
			User:        handler.NewUser(skebCli),
			Works:       handler.NewWorks(skebCli, aggregator),
			InvalidPath: handler.NewInvalidPath(),
		},
		routes.Config{
			Logger:           l.logger,
			RequestLogEnable: config.Logging.RequestLogEnable,
			RateLimit:        middleware.RateLimit(rateLimit, config.RateLimit.TrustForwardedFor),
		},
	)
}
