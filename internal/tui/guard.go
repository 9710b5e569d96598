package tui

// Guard resolves the route to render for a requested route.
// Protected routes without a session resolve to RouteLogin; the login route
// with a session resolves to RouteDashboard. It is pure and cheap, so callers
// run it on every navigation and every render.
func Guard(requested Route, authenticated bool) Route {
	if !authenticated {
		if requested.Protected() {
			return RouteLogin
		}
		return requested
	}
	if requested == RouteLogin {
		return RouteDashboard
	}
	return requested
}
