// Package preflight provides readiness checks for the external tools,
// directories and stages storyreel depends on.
//
// Stage readiness comes from each stage's HealthCheck, so the credential and
// asset rules live next to the code that needs them. Health checks only
// confirm configuration; they never call the language model or speech
// endpoints.
package preflight
