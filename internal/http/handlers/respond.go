package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/http/middlewares"
	"github.com/kumarshivu12/advanced-todo/internal/http/response"
)

// HandlerFunc is an endpoint that reports its outcome instead of writing it.
type HandlerFunc func(ctx *gin.Context) (*response.Result, error)

// AuthedFunc is an endpoint behind RequireAuth. me is the caller.
type AuthedFunc func(ctx *gin.Context, me user.Public) (*response.Result, error)

// Handle is the single place results and errors become the JSON envelope.
func Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := fn(ctx)
		if err != nil {
			response.WriteError(ctx, err)
			return
		}
		response.Write(ctx, res)
	}
}

// Authed hands the identity attached by the auth middleware to fn.
func Authed(fn AuthedFunc) gin.HandlerFunc {
	return Handle(func(ctx *gin.Context) (*response.Result, error) {
		me, ok := middlewares.IdentityFromContext(ctx)
		if !ok {
			return nil, response.Unauthorized("unauthorized request")
		}
		return fn(ctx, me)
	})
}
