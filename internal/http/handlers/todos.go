package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/config"
	"github.com/kumarshivu12/advanced-todo/internal/domain/ids"
	"github.com/kumarshivu12/advanced-todo/internal/domain/todo"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/http/response"
)

const (
	msgInvalidTodoID = "invalid todo id"
	msgNotOwner      = "unauthorized request"
	msgDuplicateTodo = "todo already existed"
)

type TodoStore interface {
	Create(ctx context.Context, t todo.Todo) (todo.Todo, error)
	ExistsTitle(ctx context.Context, owner, title string) (bool, error)
	GetByID(ctx context.Context, id string) (todo.Todo, error)
	Update(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error)
}

type TodoHandler struct {
	todos TodoStore
	now   func() time.Time
}

func NewTodoHandler(todos TodoStore) *TodoHandler {
	return &TodoHandler{
		todos: todos,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type CreateTodoRequest struct {
	Title       string         `json:"title" binding:"required,notblank"`
	Description string         `json:"description" binding:"required,notblank"`
	Priority    *todo.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	StartDate   *Date          `json:"startDate"`
	EndDate     *Date          `json:"endDate"`
}

type UpdateTodoRequest struct {
	Title       string         `json:"title" binding:"required,notblank"`
	Description string         `json:"description" binding:"required,notblank"`
	Priority    *todo.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	StartDate   *Date          `json:"startDate"`
	EndDate     *Date          `json:"endDate"`
	Status      *bool          `json:"status"`
}

func (h *TodoHandler) Create(ctx *gin.Context, me user.Public) (*response.Result, error) {
	var req CreateTodoRequest

	if err := BindJSON(ctx, &req); err != nil {
		return nil, err
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	title := strings.TrimSpace(req.Title)

	exists, err := h.todos.ExistsTitle(cctx, me.ID, title)
	if err != nil {
		return nil, response.Internal("something went wrong while creating todo", err)
	}
	if exists {
		return nil, response.Conflict(msgDuplicateTodo)
	}

	t := todo.New(todo.CreateParams{
		Owner:       me.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Priority:    req.Priority,
		StartDate:   req.StartDate.timePtr(),
		EndDate:     req.EndDate.timePtr(),
	}, h.now())

	created, err := h.todos.Create(cctx, t)
	if err != nil {
		if errors.Is(err, todo.ErrDuplicateTitle) {
			return nil, response.Conflict(msgDuplicateTodo)
		}
		return nil, response.Internal("something went wrong while creating todo", err)
	}

	return response.OK(created, "todo created successfully"), nil
}

// loadOwned fetches the todo and checks that me owns it. A missing record and
// a foreign one are reported the same way.
func (h *TodoHandler) loadOwned(ctx context.Context, id string, me user.Public) (todo.Todo, error) {
	t, err := h.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			return todo.Todo{}, response.BadRequest(msgNotOwner)
		}
		return todo.Todo{}, response.Internal("something went wrong while fetching todo", err)
	}

	if t.Owner != me.ID {
		return todo.Todo{}, response.BadRequest(msgNotOwner)
	}

	return t, nil
}

func (h *TodoHandler) Update(ctx *gin.Context, me user.Public) (*response.Result, error) {
	id := ctx.Param("todoId")
	if !ids.Valid(id) {
		return nil, response.BadRequest(msgInvalidTodoID)
	}

	var req UpdateTodoRequest

	if err := BindJSON(ctx, &req); err != nil {
		return nil, err
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.loadOwned(cctx, id, me); err != nil {
		return nil, err
	}

	updated, err := h.todos.Update(cctx, id, todo.UpdateParams{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Priority:    req.Priority,
		StartDate:   req.StartDate.timePtr(),
		EndDate:     req.EndDate.timePtr(),
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, todo.ErrDuplicateTitle):
			return nil, response.Conflict(msgDuplicateTodo)
		case errors.Is(err, todo.ErrNotFound):
			return nil, response.BadRequest(msgNotOwner)
		}
		return nil, response.Internal("something went wrong while updating todo", err)
	}

	return response.OK(updated, "todo updated successfully"), nil
}

func (h *TodoHandler) Delete(ctx *gin.Context, me user.Public) (*response.Result, error) {
	id := ctx.Param("todoId")
	if !ids.Valid(id) {
		return nil, response.BadRequest(msgInvalidTodoID)
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.loadOwned(cctx, id, me); err != nil {
		return nil, err
	}

	if err := h.todos.Delete(cctx, id); err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			return nil, response.BadRequest(msgNotOwner)
		}
		return nil, response.Internal("something went wrong while deleting todo", err)
	}

	return response.OK(gin.H{}, "todo deleted successfully"), nil
}

// List accepts ?tab=, ?priority=["low","high"] and ?order=.
func (h *TodoHandler) List(ctx *gin.Context, me user.Public) (*response.Result, error) {
	priorities, err := todo.ParsePriorities(ctx.Query("priority"))
	if err != nil {
		return nil, response.BadRequest("invalid priority filter")
	}

	q := todo.BuildListQuery(me.ID, todo.Tab(ctx.Query("tab")), priorities, ctx.Query("order"), h.now())

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.todos.List(cctx, q)
	if err != nil {
		return nil, response.Internal("something went wrong while fetching todos", err)
	}

	if items == nil {
		items = []todo.Todo{}
	}

	return response.OK(items, "todos fetched successfully"), nil
}
