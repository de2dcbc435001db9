// Package router implements the routekit router core.
//
// The router owns the single process-wide RouterState: the current
// location plus its route match. Every change flows through one pipeline:
//
//	navigate / external event
//	    → beforeNavigate hooks (allow / deny / redirect)
//	    → history write (programmatic navigations only)
//	    → new state computed via the route table
//	    → subscribers notified synchronously, in subscription order
//
// The core is single-threaded cooperative: navigate is synchronous end to
// end, there is no in-flight navigation to cancel, and a navigate to the
// current pathname without force is a no-op. Re-entrant navigations from
// inside a subscriber are queued and run after the current notification
// completes, in submission order.
//
// # Usage
//
//	r, err := router.New(router.Config{
//	    History: history.NewMemory("/"),
//	    Routes: []router.RouteDef{
//	        {Pattern: "/", Component: "home"},
//	        {Pattern: "/users/:id", Component: "user"},
//	    },
//	})
//	if err != nil { ... }
//	if err := r.Start(); err != nil { ... }
//
//	unsubscribe := r.Subscribe(func(s *router.State) { ... })
//	defer unsubscribe()
//
//	err = r.Navigate("/users/42?tab=info")
package router
