package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kumarshivu12/advanced-todo/internal/domain/todo"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const todosCollection = "todos"

type todoDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       primitive.ObjectID `bson:"owner"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	StartDate   time.Time          `bson:"startDate"`
	EndDate     time.Time          `bson:"endDate"`
	Status      bool               `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d todoDoc) toDomain() todo.Todo {
	return todo.Todo{
		ID:          d.ID.Hex(),
		Owner:       d.Owner.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Priority:    todo.Priority(d.Priority),
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type TodosRepo struct {
	coll *mongo.Collection
	obs  observability.DBObserver
}

func NewTodosRepo(db *mongo.Database, obs observability.DBObserver) *TodosRepo {
	if obs == nil {
		obs = observability.NopDBObserver{}
	}
	return &TodosRepo{coll: db.Collection(todosCollection), obs: obs}
}

func (r *TodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	owner, err := primitive.ObjectIDFromHex(t.Owner)
	if err != nil {
		return todo.Todo{}, fmt.Errorf("invalid owner id %q: %w", t.Owner, err)
	}

	doc := todoDoc{
		ID:          primitive.NewObjectID(),
		Owner:       owner,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	err = r.obs.ObserveDB("todos.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return todo.Todo{}, todo.ErrDuplicateTitle
		}
		return todo.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *TodosRepo) ExistsTitle(ctx context.Context, owner, title string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return false, nil
	}

	var n int64
	err = r.obs.ObserveDB("todos.exists_title", func() error {
		var err error
		n, err = r.coll.CountDocuments(ctx, bson.M{"owner": oid, "title": title}, options.Count().SetLimit(1))
		return err
	})
	if err != nil {
		return false, fmt.Errorf("count todos: %w", err)
	}
	return n > 0, nil
}

func (r *TodosRepo) GetByID(ctx context.Context, id string) (todo.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return todo.Todo{}, todo.ErrNotFound
	}

	var doc todoDoc
	err = r.obs.ObserveDB("todos.get", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return todo.Todo{}, todo.ErrNotFound
		}
		return todo.Todo{}, fmt.Errorf("find todo: %w", err)
	}

	return doc.toDomain(), nil
}

func updateDoc(p todo.UpdateParams, now time.Time) bson.M {
	set := bson.M{
		"title":       p.Title,
		"description": p.Description,
		"updatedAt":   now,
	}
	if p.Priority != nil && *p.Priority != "" {
		set["priority"] = string(*p.Priority)
	}
	if p.StartDate != nil {
		set["startDate"] = *p.StartDate
	}
	if p.EndDate != nil {
		set["endDate"] = *p.EndDate
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return bson.M{"$set": set}
}

func (r *TodosRepo) Update(ctx context.Context, id string, p todo.UpdateParams) (todo.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return todo.Todo{}, todo.ErrNotFound
	}

	var doc todoDoc
	err = r.obs.ObserveDB("todos.update", func() error {
		return r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": oid},
			updateDoc(p, time.Now().UTC()),
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return todo.Todo{}, todo.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return todo.Todo{}, todo.ErrDuplicateTitle
		}
		return todo.Todo{}, fmt.Errorf("update todo: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *TodosRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return todo.ErrNotFound
	}

	var res *mongo.DeleteResult
	err = r.obs.ObserveDB("todos.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return todo.ErrNotFound
	}
	return nil
}

func (r *TodosRepo) List(ctx context.Context, q todo.ListQuery) ([]todo.Todo, error) {
	pipeline, err := ListPipeline(q)
	if err != nil {
		return nil, err
	}

	var docs []todoDoc
	err = r.obs.ObserveDB("todos.list", func() error {
		cur, err := r.coll.Aggregate(ctx, pipeline)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	out := make([]todo.Todo, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TodosRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
