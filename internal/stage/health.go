package stage

// Health is a stage's readiness report, surfaced by `storyreel preflight`.
// Detail explains a failure, or summarizes what a ready stage will use.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a ready stage with an optional summary.
func Healthy(name, detail string) Health {
	return Health{Name: name, Ready: true, Detail: detail}
}

// Unhealthy reports a stage that cannot run, with the reason.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}
