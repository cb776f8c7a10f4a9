package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
)

var (
	ErrInvalidBody = errors.New("invalid request body")
	ErrBlankTitle  = errors.New("title must not be blank")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// TaskDTO is the wire representation of a Task.
type TaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   int64  `json:"createdAt"`
}

// Pointer fields let the validator tell a missing field from a zero value.
type createTaskRequest struct {
	Title       *string `json:"title" validate:"required,notblank"`
	Description *string `json:"description" validate:"required"`
	IsCompleted *bool   `json:"isCompleted"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"required,notblank"`
	Description *string `json:"description" validate:"required"`
	IsCompleted *bool   `json:"isCompleted" validate:"required"`
}

func decodeCreateRequest(body io.Reader) (createTaskRequest, error) {
	var req createTaskRequest
	if err := decodeAndValidate(body, &req); err != nil {
		return createTaskRequest{}, err
	}
	return req, nil
}

func decodeUpdateRequest(body io.Reader) (updateTaskRequest, error) {
	var req updateTaskRequest
	if err := decodeAndValidate(body, &req); err != nil {
		return updateTaskRequest{}, err
	}
	return req, nil
}

// decodeAndValidate accepts exactly one UTF-8 JSON value; anything after it
// other than whitespace makes the body invalid.
func decodeAndValidate(body io.Reader, v any) error {
	raw, err := io.ReadAll(body)
	if err != nil || !utf8.Valid(raw) {
		return ErrInvalidBody
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(v); err != nil {
		return ErrInvalidBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrInvalidBody
	}
	if err := validate.Struct(v); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, fe := range vErrs {
				if fe.Tag() == "notblank" {
					return ErrBlankTitle
				}
			}
		}
		return ErrInvalidBody
	}
	return nil
}

// toDomain builds a brand new task: fresh id, creation time truncated to the
// millisecond so it survives the epoch-millis wire format unchanged.
func (r createTaskRequest) toDomain(now time.Time) Task {
	t := Task{
		ID:          uuid.NewString(),
		Title:       *r.Title,
		Description: *r.Description,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
	}
	if r.IsCompleted != nil {
		t.IsCompleted = *r.IsCompleted
	}
	return t
}

// toDomain replaces every mutable field and keeps the identity and creation
// time of the existing record.
func (r updateTaskRequest) toDomain(id string, createdAt time.Time) Task {
	return Task{
		ID:          id,
		Title:       *r.Title,
		Description: *r.Description,
		IsCompleted: *r.IsCompleted,
		CreatedAt:   createdAt,
	}
}

func toDTO(t Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
}

func toDTOs(ts []Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toDTO(t))
	}
	return out
}
