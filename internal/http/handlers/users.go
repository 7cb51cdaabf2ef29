package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/http/response"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// CurrentUser echoes the identity resolved by the auth middleware.
func (h *UserHandler) CurrentUser(ctx *gin.Context, me user.Public) (*response.Result, error) {
	return response.OK(me, "user fetched successfully"), nil
}
