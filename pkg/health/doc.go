// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] in parallel and answers
// 503 when any of them fails:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "routes": health.TableCheck(table),
//	}))
//
// Both handlers answer plain text, or JSON when the client sends
// "Accept: application/json" or "?format=json":
//
//	{"status":"unhealthy","checks":{"routes":{"status":"unhealthy","error":"health: no routes loaded"}}}
//
// Checks share one timeout (5s by default, see [WithTimeout]).
package health
