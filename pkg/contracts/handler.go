package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP surface of the service. pkg/app
// registers each one on the shared router before the middleware chain wraps it.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
