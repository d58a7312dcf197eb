package job

import "go.uber.org/fx"

var Module = fx.Module("job",
	fx.Provide(NewDemand),
	fx.Provide(NewFrequency),
	fx.Provide(NewOrders),
	fx.Provide(NewRegistry),
)
