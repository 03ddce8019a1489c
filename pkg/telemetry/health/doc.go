// Package health provides liveness, readiness and version endpoints for the
// ismp client's telemetry server.
//
// Components register checks on a Checker:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("spool_inbox", func(ctx context.Context) error {
//	    _, err := os.Stat(inbox)
//	    return err
//	})
//
// /health always answers 200 while the process is running. /ready runs every
// registered check concurrently and answers 503 when any of them fails:
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "config": {"status": "ok"},
//	        "spool_inbox": {"status": "unhealthy", "message": "stat ./spool/inbox: no such file or directory"}
//	    },
//	    "timestamp": "2026-10-18T10:30:00Z"
//	}
package health
