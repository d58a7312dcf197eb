package draftbox

import (
	"go.uber.org/fx"

	"github.com/JWax21/cleanbox-cron/internal/draftbox/repository"
)

var Module = fx.Module("draftbox",
	fx.Provide(repository.NewMongoSource),
)
