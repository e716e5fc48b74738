/*
Package monitoring provides Prometheus metrics for the file gateway.

# Overview

Metrics live on a private registry so several servers (and tests) can
coexist in one process. The registry is exposed by Handler.

# Features

- HTTP request metrics (latency, throughput, size)
- Gateway operation metrics by kind and outcome
- Access denials by reason
- Bulk item outcomes
- Uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "copy")
	// ... perform operation ...
	timer.Stop(err)
*/
package monitoring
