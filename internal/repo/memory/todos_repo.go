package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kumarshivu12/advanced-todo/internal/domain/ids"
	"github.com/kumarshivu12/advanced-todo/internal/domain/todo"
)

type TodosRepo struct {
	mu    sync.RWMutex
	items map[string]todo.Todo
}

func NewTodosRepo() *TodosRepo {
	return &TodosRepo{
		items: make(map[string]todo.Todo),
	}
}

// titleTakenLocked reports whether owner already has a todo titled title,
// ignoring the record with id skip. Caller holds r.mu.
func (r *TodosRepo) titleTakenLocked(owner, title, skip string) bool {
	for id, t := range r.items {
		if id != skip && t.Owner == owner && t.Title == title {
			return true
		}
	}
	return false
}

func (r *TodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTakenLocked(t.Owner, t.Title, "") {
		return todo.Todo{}, todo.ErrDuplicateTitle
	}

	t.ID = ids.New()
	r.items[t.ID] = t

	return t, nil
}

func (r *TodosRepo) ExistsTitle(ctx context.Context, owner, title string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.titleTakenLocked(owner, title, ""), nil
}

func (r *TodosRepo) GetByID(ctx context.Context, id string) (todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return todo.Todo{}, todo.ErrNotFound
	}
	return t, nil
}

func (r *TodosRepo) Update(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return todo.Todo{}, todo.ErrNotFound
	}
	if r.titleTakenLocked(t.Owner, p.Title, id) {
		return todo.Todo{}, todo.ErrDuplicateTitle
	}

	t = p.Apply(t, time.Now().UTC())
	r.items[id] = t

	return t, nil
}

func (r *TodosRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return todo.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TodosRepo) List(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error) {
	r.mu.RLock()
	out := make([]todo.Todo, 0)
	for _, t := range r.items {
		if q.Filter.Matches(t) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	// map iteration is random; fall back to id for a stable order on ties
	sort.SliceStable(out, func(i, j int) bool {
		if q.Sort.Less(out[i], out[j]) {
			return true
		}
		if q.Sort.Less(out[j], out[i]) {
			return false
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TodosRepo) Ping(ctx context.Context) error { return nil }
