/*
Package observability turns engine lifecycle hooks into telemetry.

Metrics exposes Prometheus counters fed by domain.LifecycleHooks, and
LogHooks emits one structured log record per transition. Both are plain hook
sets, so hosts combine them with LifecycleHooks.Merge.
*/
package observability
