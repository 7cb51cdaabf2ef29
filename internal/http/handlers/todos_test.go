package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/domain/ids"
	"github.com/kumarshivu12/advanced-todo/internal/domain/todo"
	"github.com/kumarshivu12/advanced-todo/internal/domain/user"
	"github.com/kumarshivu12/advanced-todo/internal/http/handlers"
	"github.com/kumarshivu12/advanced-todo/internal/http/middlewares"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope: %v body=%s", err, w.Body.String())
	}
	if env.StatusCode != w.Code {
		t.Fatalf("envelope statusCode %d does not match http status %d", env.StatusCode, w.Code)
	}
	return env
}

// Fake repository implementation of the handlers.TodoStore interface

type fakeTodosRepo struct {
	createFn      func(ctx context.Context, t todo.Todo) (todo.Todo, error)
	existsTitleFn func(ctx context.Context, owner, title string) (bool, error)
	getFn         func(ctx context.Context, id string) (todo.Todo, error)
	updateFn      func(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error)
	deleteFn      func(ctx context.Context, id string) error
	listFn        func(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error)
}

func (f *fakeTodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	t.ID = ids.New()
	return t, nil
}

func (f *fakeTodosRepo) ExistsTitle(ctx context.Context, owner, title string) (bool, error) {
	if f.existsTitleFn != nil {
		return f.existsTitleFn(ctx, owner, title)
	}
	return false, nil
}

func (f *fakeTodosRepo) GetByID(ctx context.Context, id string) (todo.Todo, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return todo.Todo{}, todo.ErrNotFound
}

func (f *fakeTodosRepo) Update(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}
	return todo.Todo{}, nil
}

func (f *fakeTodosRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTodosRepo) List(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error) {
	if f.listFn != nil {
		return f.listFn(ctx, q)
	}
	return nil, nil
}

var testUser = user.Public{ID: ids.New(), Name: "Ada", Email: "ada@example.com"}

// setupAuthedRouter mounts one handler behind a stub that plays the auth
// middleware.
func setupAuthedRouter(method, path string, me user.Public, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		c.Set(middlewares.CtxIdentity, me)
		c.Next()
	}, h)

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTodoHandler(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		repo        *fakeTodosRepo
		wantStatus  int
		wantMessage string
		check       func(t *testing.T, got todo.Todo)
	}{
		{
			name:        "defaults applied",
			body:        `{"title":"  write report ","description":"q3"}`,
			repo:        &fakeTodosRepo{},
			wantStatus:  http.StatusOK,
			wantMessage: "todo created successfully",
			check: func(t *testing.T, got todo.Todo) {
				if got.Title != "write report" {
					t.Fatalf("title should be trimmed, got %q", got.Title)
				}
				if got.Priority != todo.PriorityHigh {
					t.Fatalf("priority: got %q want high", got.Priority)
				}
				if got.Status {
					t.Fatalf("status should default to false")
				}
				if got.Owner != testUser.ID {
					t.Fatalf("owner: got %q want %q", got.Owner, testUser.ID)
				}
				if got.StartDate.IsZero() || !got.StartDate.Equal(got.EndDate) {
					t.Fatalf("dates should default to creation time: %v %v", got.StartDate, got.EndDate)
				}
			},
		},
		{
			name:        "explicit fields",
			body:        `{"title":"t","description":"d","priority":"low","startDate":"2030-01-02T00:00:00Z","endDate":"2030-01-03T00:00:00Z"}`,
			repo:        &fakeTodosRepo{},
			wantStatus:  http.StatusOK,
			wantMessage: "todo created successfully",
			check: func(t *testing.T, got todo.Todo) {
				if got.Priority != todo.PriorityLow {
					t.Fatalf("priority: got %q", got.Priority)
				}
				if !got.EndDate.Equal(time.Date(2030, 1, 3, 0, 0, 0, 0, time.UTC)) {
					t.Fatalf("endDate: got %v", got.EndDate)
				}
			},
		},
		{
			name:        "date only values",
			body:        `{"title":"t","description":"d","startDate":"2030-01-02","endDate":"2030-01-05T18:30"}`,
			repo:        &fakeTodosRepo{},
			wantStatus:  http.StatusOK,
			wantMessage: "todo created successfully",
			check: func(t *testing.T, got todo.Todo) {
				if !got.StartDate.Equal(time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)) {
					t.Fatalf("startDate: got %v", got.StartDate)
				}
				if !got.EndDate.Equal(time.Date(2030, 1, 5, 18, 30, 0, 0, time.UTC)) {
					t.Fatalf("endDate: got %v", got.EndDate)
				}
			},
		},
		{
			name:        "unparseable date",
			body:        `{"title":"t","description":"d","startDate":"01/02/2030"}`,
			repo:        &fakeTodosRepo{},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
		{
			name:        "blank description",
			body:        `{"title":"t","description":"   "}`,
			repo:        &fakeTodosRepo{},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "all fields required",
		},
		{
			name: "duplicate title",
			body: `{"title":"t","description":"d"}`,
			repo: &fakeTodosRepo{
				existsTitleFn: func(ctx context.Context, owner, title string) (bool, error) { return true, nil },
			},
			wantStatus:  http.StatusConflict,
			wantMessage: "todo already existed",
		},
		{
			name: "duplicate title lost race",
			body: `{"title":"t","description":"d"}`,
			repo: &fakeTodosRepo{
				createFn: func(ctx context.Context, t todo.Todo) (todo.Todo, error) { return todo.Todo{}, todo.ErrDuplicateTitle },
			},
			wantStatus:  http.StatusConflict,
			wantMessage: "todo already existed",
		},
		{
			name: "store failure",
			body: `{"title":"t","description":"d"}`,
			repo: &fakeTodosRepo{
				createFn: func(ctx context.Context, t todo.Todo) (todo.Todo, error) { return todo.Todo{}, errors.New("db down") },
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewTodoHandler(tt.repo)
			r := setupAuthedRouter(http.MethodPost, "/todo", testUser, handlers.Authed(h.Create))

			w := doJSON(r, http.MethodPost, "/todo", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			env := decodeEnvelope(t, w)
			if tt.wantMessage != "" && env.Message != tt.wantMessage {
				t.Fatalf("message: got %q want %q", env.Message, tt.wantMessage)
			}

			if tt.check != nil {
				var got todo.Todo
				if err := json.Unmarshal(env.Data, &got); err != nil {
					t.Fatalf("decode todo: %v", err)
				}
				tt.check(t, got)
			}
		})
	}
}

func TestUpdateTodoHandler(t *testing.T) {
	todoID := ids.New()
	other := ids.New()

	owned := func(ctx context.Context, id string) (todo.Todo, error) {
		return todo.Todo{ID: id, Owner: testUser.ID, Title: "old"}, nil
	}

	tests := []struct {
		name        string
		id          string
		body        string
		repo        *fakeTodosRepo
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "invalid id",
			id:          "not-an-id",
			body:        `{"title":"t","description":"d"}`,
			repo:        &fakeTodosRepo{getFn: func(ctx context.Context, id string) (todo.Todo, error) { panic("lookup before id validation") }},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid todo id",
		},
		{
			name:        "missing fields",
			id:          todoID,
			body:        `{"title":"t"}`,
			repo:        &fakeTodosRepo{getFn: owned},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "all fields required",
		},
		{
			name:        "not found",
			id:          todoID,
			body:        `{"title":"t","description":"d"}`,
			repo:        &fakeTodosRepo{},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "unauthorized request",
		},
		{
			name: "foreign owner",
			id:   todoID,
			body: `{"title":"t","description":"d"}`,
			repo: &fakeTodosRepo{
				getFn: func(ctx context.Context, id string) (todo.Todo, error) {
					return todo.Todo{ID: id, Owner: other}, nil
				},
				updateFn: func(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
					panic("update must not run for a foreign todo")
				},
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "unauthorized request",
		},
		{
			name: "rename onto existing title",
			id:   todoID,
			body: `{"title":"t","description":"d"}`,
			repo: &fakeTodosRepo{
				getFn: owned,
				updateFn: func(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
					return todo.Todo{}, todo.ErrDuplicateTitle
				},
			},
			wantStatus:  http.StatusConflict,
			wantMessage: "todo already existed",
		},
		{
			name: "success passes optional fields through",
			id:   todoID,
			body: `{"title":"t","description":"d","status":true,"priority":"medium"}`,
			repo: &fakeTodosRepo{
				getFn: owned,
				updateFn: func(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
					if p.Status == nil || !*p.Status {
						return todo.Todo{}, errors.New("status not passed")
					}
					if p.Priority == nil || *p.Priority != todo.PriorityMedium {
						return todo.Todo{}, errors.New("priority not passed")
					}
					if p.StartDate != nil || p.EndDate != nil {
						return todo.Todo{}, errors.New("dates should be left alone")
					}
					return todo.Todo{ID: id, Owner: testUser.ID, Title: p.Title, Status: true}, nil
				},
			},
			wantStatus:  http.StatusOK,
			wantMessage: "todo updated successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewTodoHandler(tt.repo)
			r := setupAuthedRouter(http.MethodPatch, "/todo/:todoId", testUser, handlers.Authed(h.Update))

			w := doJSON(r, http.MethodPatch, "/todo/"+tt.id, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			env := decodeEnvelope(t, w)
			if env.Message != tt.wantMessage {
				t.Fatalf("message: got %q want %q", env.Message, tt.wantMessage)
			}
		})
	}
}

func TestDeleteTodoHandler(t *testing.T) {
	todoID := ids.New()

	tests := []struct {
		name       string
		id         string
		owner      string
		wantStatus int
		wantDelete bool
	}{
		{name: "owner deletes", id: todoID, owner: testUser.ID, wantStatus: http.StatusOK, wantDelete: true},
		{name: "foreign owner", id: todoID, owner: ids.New(), wantStatus: http.StatusBadRequest},
		{name: "invalid id", id: "123", owner: testUser.ID, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			repo := &fakeTodosRepo{
				getFn: func(ctx context.Context, id string) (todo.Todo, error) {
					return todo.Todo{ID: id, Owner: tt.owner}, nil
				},
				deleteFn: func(ctx context.Context, id string) error {
					deleted = true
					return nil
				},
			}

			h := handlers.NewTodoHandler(repo)
			r := setupAuthedRouter(http.MethodDelete, "/todo/:todoId", testUser, handlers.Authed(h.Delete))

			w := doJSON(r, http.MethodDelete, "/todo/"+tt.id, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if deleted != tt.wantDelete {
				t.Fatalf("deleted=%v want %v", deleted, tt.wantDelete)
			}

			env := decodeEnvelope(t, w)
			if tt.wantDelete && string(env.Data) != "{}" {
				t.Fatalf("data: got %s want {}", env.Data)
			}
		})
	}
}

func TestListTodosHandler(t *testing.T) {
	t.Run("builds query from parameters", func(t *testing.T) {
		var got todo.ListQuery
		repo := &fakeTodosRepo{
			listFn: func(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error) {
				got = q
				return nil, nil
			},
		}

		h := handlers.NewTodoHandler(repo)
		r := setupAuthedRouter(http.MethodGet, "/todo", testUser, handlers.Authed(h.List))

		w := doJSON(r, http.MethodGet, `/todo?tab=overdue&order=oldest&priority=%5B%22low%22%5D`, "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}

		env := decodeEnvelope(t, w)
		if env.Message != "todos fetched successfully" {
			t.Fatalf("message: got %q", env.Message)
		}
		if string(env.Data) != "[]" {
			t.Fatalf("empty list should encode as [], got %s", env.Data)
		}

		if got.Filter.Owner != testUser.ID {
			t.Fatalf("owner filter: got %q", got.Filter.Owner)
		}
		if got.Filter.EndBefore == nil {
			t.Fatalf("overdue tab should constrain endDate")
		}
		if len(got.Filter.Priorities) != 1 || got.Filter.Priorities[0] != todo.PriorityLow {
			t.Fatalf("priorities: got %v", got.Filter.Priorities)
		}
		if got.Sort != (todo.Sort{Field: todo.SortByUpdatedAt, Desc: true}) {
			t.Fatalf("sort: got %+v", got.Sort)
		}
	})

	t.Run("empty priority array constrains", func(t *testing.T) {
		var got todo.ListQuery
		repo := &fakeTodosRepo{
			listFn: func(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error) {
				got = q
				return nil, nil
			},
		}

		h := handlers.NewTodoHandler(repo)
		r := setupAuthedRouter(http.MethodGet, "/todo", testUser, handlers.Authed(h.List))

		w := doJSON(r, http.MethodGet, "/todo?priority=%5B%5D", "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if got.Filter.Priorities == nil || len(got.Filter.Priorities) != 0 {
			t.Fatalf("expected an empty, non-nil priority filter, got %#v", got.Filter.Priorities)
		}
	})

	t.Run("malformed priority", func(t *testing.T) {
		h := handlers.NewTodoHandler(&fakeTodosRepo{})
		r := setupAuthedRouter(http.MethodGet, "/todo", testUser, handlers.Authed(h.List))

		w := doJSON(r, http.MethodGet, "/todo?priority=low", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
		}
		if env := decodeEnvelope(t, w); env.Message != "invalid priority filter" {
			t.Fatalf("message: got %q", env.Message)
		}
	})
}

func TestAuthedWithoutIdentity(t *testing.T) {
	h := handlers.NewTodoHandler(&fakeTodosRepo{})

	r := gin.New()
	r.GET("/todo", handlers.Authed(h.List))

	w := doJSON(r, http.MethodGet, "/todo", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}
