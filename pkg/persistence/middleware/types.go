package middleware

import "github.com/aretw0/hbnb/pkg/ports"

// Middleware allows wrapping a Backend to add behavior.
type Middleware func(ports.Backend) ports.Backend

// Chain wraps b so that the first middleware is the outermost one.
func Chain(b ports.Backend, mws ...Middleware) ports.Backend {
	for i := len(mws) - 1; i >= 0; i-- {
		b = mws[i](b)
	}
	return b
}
