package report

import (
	"go.uber.org/fx"

	"github.com/JWax21/cleanbox-cron/internal/report/repository"
)

var Module = fx.Module("report",
	fx.Provide(repository.NewGormSink),
)
