package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
