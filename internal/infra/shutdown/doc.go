// Package shutdown coordinates graceful shutdown of hashguard-server.
//
// Hooks registered with OnShutdown run in reverse registration order under
// a shared timeout once SIGINT/SIGTERM arrives or the run context ends.
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown(httpServer.Shutdown)
//	g.Go(func() error { return h.Run(ctx) })
package shutdown
