package session

import (
	"go.uber.org/zap"

	"github.com/zimin2020/polarbear/pkg/config"
)

// Context carries the process-wide collaborators into the core. It is
// built once at startup and passed in explicitly; nothing in the core
// reaches into ambient global state.
type Context struct {
	Logger *zap.Logger
	Config config.Config
}

// DefaultContext returns a context with a no-op logger and the built-in
// configuration.
func DefaultContext() Context {
	return Context{Logger: zap.NewNop(), Config: config.Default()}
}

func (c Context) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
