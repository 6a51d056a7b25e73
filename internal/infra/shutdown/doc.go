// Package shutdown coordinates graceful process termination.
//
// Components register named hooks with OnShutdown. Wait blocks until
// SIGINT, SIGTERM or context cancellation, then runs the hooks in reverse
// registration order under a shared timeout:
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("redis", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
