package logging

import "go.uber.org/zap"

// Named returns the global sugared logger scoped to a component. It follows
// the logger installed by config.New.
func Named(component string) *zap.SugaredLogger {
	return zap.S().Named(component)
}

// Or returns l, or the component logger when l is nil.
func Or(l *zap.SugaredLogger, component string) *zap.SugaredLogger {
	if l != nil {
		return l
	}
	return Named(component)
}
