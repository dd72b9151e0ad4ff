package gate

// Option applies a configuration option to a Gate.
type Option func(*Gate)

// WithMaxSessions bounds the number of live sessions. Values <= 0 mean
// unbounded.
func WithMaxSessions(n int) Option {
	return func(g *Gate) {
		g.maxSessions = n
	}
}

// WithTokenSource overrides how session tokens are generated.
func WithTokenSource(fn func() string) Option {
	return func(g *Gate) {
		if fn != nil {
			g.newToken = fn
		}
	}
}
