package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kumarshivu12/advanced-todo/internal/domain/ids"
	"github.com/kumarshivu12/advanced-todo/internal/domain/todo"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
)

const todoColumns = `id, owner_id, title, description, priority, start_date, end_date, status, created_at, updated_at`

type TodosRepo struct {
	pool *pgxpool.Pool
	obs  observability.DBObserver
}

func NewTodosRepo(pool *pgxpool.Pool, obs observability.DBObserver) *TodosRepo {
	if obs == nil {
		obs = observability.NopDBObserver{}
	}
	return &TodosRepo{pool: pool, obs: obs}
}

func scanTodo(row pgx.Row, t *todo.Todo) error {
	var priority string
	err := row.Scan(&t.ID, &t.Owner, &t.Title, &t.Description, &priority, &t.StartDate, &t.EndDate, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	t.Priority = todo.Priority(priority)
	return err
}

func (r *TodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	t.ID = ids.New()

	err := r.obs.ObserveDB("todos.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO todos (`+todoColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			t.ID, t.Owner, t.Title, t.Description, string(t.Priority), t.StartDate, t.EndDate, t.Status, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return todo.Todo{}, todo.ErrDuplicateTitle
		}
		return todo.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	return t, nil
}

func (r *TodosRepo) ExistsTitle(ctx context.Context, owner, title string) (bool, error) {
	var exists bool

	err := r.obs.ObserveDB("todos.exists_title", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM todos WHERE owner_id = $1 AND title = $2)`,
			owner, title,
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check todo title: %w", err)
	}
	return exists, nil
}

func (r *TodosRepo) GetByID(ctx context.Context, id string) (todo.Todo, error) {
	var t todo.Todo

	err := r.obs.ObserveDB("todos.get", func() error {
		return scanTodo(r.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id), &t)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}
		return todo.Todo{}, fmt.Errorf("select todo: %w", err)
	}
	return t, nil
}

// Update keeps a column when its parameter is NULL.
func (r *TodosRepo) Update(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
	var priority *string
	if p.Priority != nil && *p.Priority != "" {
		s := string(*p.Priority)
		priority = &s
	}

	var t todo.Todo
	err := r.obs.ObserveDB("todos.update", func() error {
		return scanTodo(r.pool.QueryRow(
			ctx,
			`UPDATE todos
				SET title = $2,
					description = $3,
					priority = COALESCE($4, priority),
					start_date = COALESCE($5, start_date),
					end_date = COALESCE($6, end_date),
					status = COALESCE($7, status),
					updated_at = $8
			WHERE id = $1
			RETURNING `+todoColumns,
			id, p.Title, p.Description, priority, p.StartDate, p.EndDate, p.Status, time.Now().UTC(),
		), &t)
	})
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return todo.Todo{}, todo.ErrNotFound
		case isUniqueViolation(err):
			return todo.Todo{}, todo.ErrDuplicateTitle
		}
		return todo.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

func (r *TodosRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.obs.ObserveDB("todos.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return todo.ErrNotFound
	}
	return nil
}

// ListSQL renders a list query as a parameterised statement.
func ListSQL(q todo.ListQuery) (string, []any) {
	f := q.Filter

	conds := []string{"owner_id = $1"}
	args := []any{f.Owner}
	argsPosition := 2

	add := func(cond string, v any) {
		conds = append(conds, fmt.Sprintf(cond, argsPosition))
		args = append(args, v)
		argsPosition++
	}

	if f.StartAfter != nil {
		add("start_date > $%d", *f.StartAfter)
	}
	if f.StartAtOrBefore != nil {
		add("start_date <= $%d", *f.StartAtOrBefore)
	}
	if f.EndAtOrAfter != nil {
		add("end_date >= $%d", *f.EndAtOrAfter)
	}
	if f.EndBefore != nil {
		add("end_date < $%d", *f.EndBefore)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	// an empty list renders as ANY('{}') and selects nothing
	if f.Priorities != nil {
		ps := make([]string, 0, len(f.Priorities))
		for _, p := range f.Priorities {
			ps = append(ps, string(p))
		}
		add("priority = ANY($%d)", ps)
	}

	column := "updated_at"
	if q.Sort.Field == todo.SortByStartDate {
		column = "start_date"
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY ` + column + ` ` + dir + `, id ASC`

	return query, args
}

func (r *TodosRepo) List(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error) {
	query, args := ListSQL(q)

	out := make([]todo.Todo, 0)
	err := r.obs.ObserveDB("todos.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t todo.Todo
			if err := scanTodo(rows, &t); err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return out, nil
}

func (r *TodosRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
