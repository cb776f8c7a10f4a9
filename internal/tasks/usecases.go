package tasks

import "context"

// UseCases bundles the single entry points through which the HTTP layer
// reaches storage.
type UseCases struct {
	List   *ListTasks
	Get    *GetTask
	Create *CreateTask
	Update *UpdateTask
	Delete *DeleteTask
}

func NewUseCases(repo Repository) UseCases {
	return UseCases{
		List:   &ListTasks{repo: repo},
		Get:    &GetTask{repo: repo},
		Create: &CreateTask{repo: repo},
		Update: &UpdateTask{repo: repo},
		Delete: &DeleteTask{repo: repo},
	}
}

type ListTasks struct{ repo Repository }

func (uc *ListTasks) Execute(ctx context.Context) ([]Task, error) {
	return uc.repo.GetAllTasks(ctx)
}

type GetTask struct{ repo Repository }

func (uc *GetTask) Execute(ctx context.Context, id string) (Task, bool, error) {
	return uc.repo.GetTaskByID(ctx, id)
}

type CreateTask struct{ repo Repository }

func (uc *CreateTask) Execute(ctx context.Context, t Task) (Task, error) {
	return uc.repo.CreateTask(ctx, t)
}

// UpdateTask does not check existence itself; a false result means the
// store had no record at t.ID.
type UpdateTask struct{ repo Repository }

func (uc *UpdateTask) Execute(ctx context.Context, t Task) (Task, bool, error) {
	return uc.repo.UpdateTask(ctx, t)
}

type DeleteTask struct{ repo Repository }

func (uc *DeleteTask) Execute(ctx context.Context, id string) (bool, error) {
	return uc.repo.DeleteTask(ctx, id)
}
