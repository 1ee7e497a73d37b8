// Package server runs the main and application HTTP servers.
//
// Architecture:
//   - RouteProvider: contributes a static route table to one server role
//   - Manager: binds both listeners, then serves them until shutdown
//
// Both listeners are bound before either serves a request. A bind failure on
// one side closes the other, so a partial deployment never becomes reachable.
// Once serving, the first runtime failure shuts down the sibling and is
// returned from Run.
//
// Usage:
//
//	h := api.NewHandlers()
//	mgr := server.NewManager(cfg.Server, logger,
//	    server.NewMainProvider(h),
//	    server.NewAppProvider(h),
//	)
//	err := mgr.Run(ctx) // returns nil after ctx is cancelled
package server
