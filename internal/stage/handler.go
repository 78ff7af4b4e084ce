package stage

import (
	"context"

	"storyreel/internal/episode"
)

// Handler is one step of the episode pipeline. Execute runs the stage for
// an episode; HealthCheck reports, without side effects, whether it could.
type Handler interface {
	Name() string
	Execute(context.Context, episode.Episode) error
	HealthCheck(context.Context) Health
}
