package tasks

import "context"

// Repository is the storage-agnostic view of tasks used by the use cases.
// Any implementation must keep the atomicity and identity guarantees of Store.
type Repository interface {
	GetAllTasks(ctx context.Context) ([]Task, error)
	GetTaskByID(ctx context.Context, id string) (Task, bool, error)
	CreateTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, t Task) (Task, bool, error)
	DeleteTask(ctx context.Context, id string) (bool, error)
}

type storeRepository struct {
	store Store
}

// NewRepository returns a Repository that forwards every call to s.
func NewRepository(s Store) Repository {
	return &storeRepository{store: s}
}

func (r *storeRepository) GetAllTasks(ctx context.Context) ([]Task, error) {
	return r.store.List(ctx)
}

func (r *storeRepository) GetTaskByID(ctx context.Context, id string) (Task, bool, error) {
	return r.store.Get(ctx, id)
}

func (r *storeRepository) CreateTask(ctx context.Context, t Task) (Task, error) {
	return r.store.Insert(ctx, t)
}

func (r *storeRepository) UpdateTask(ctx context.Context, t Task) (Task, bool, error) {
	return r.store.Update(ctx, t)
}

func (r *storeRepository) DeleteTask(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, id)
}
