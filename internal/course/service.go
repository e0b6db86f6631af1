package course

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/storage"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"
)

type Service interface {
	List(ctx context.Context) ([]Course, error)
	Get(ctx context.Context, id int64) (*Course, error)
	Create(ctx context.Context, in Input, image *multipart.FileHeader) (*Course, error)
	Update(ctx context.Context, id int64, in Input, image *multipart.FileHeader) (*Course, error)
	Delete(ctx context.Context, id int64) error
	ToResponse(c *Course) Response
}

type service struct {
	repo      Repository
	uploader  *storage.Uploader
	validator *validation.Validator
	events    *events.Dispatcher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(repo Repository, uploader *storage.Uploader, v *validation.Validator, dispatcher *events.Dispatcher, m *metrics.Metrics, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		uploader:  uploader,
		validator: v,
		events:    dispatcher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context) ([]Course, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*Course, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, in Input, image *multipart.FileHeader) (*Course, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	c := &Course{Title: DefaultTitle, Description: DefaultDescription}
	apply(c, in)

	if image != nil {
		key, err := s.uploader.Save(ctx, ImagePrefix, image)
		if err != nil {
			return nil, err
		}
		c.Image = key
		s.metrics.Portal.RecordUpload(ctx, "course")
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		s.uploader.Remove(ctx, s.logger, c.Image)
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return created, nil
}

// Update applies only the fields present in in, so PUT and PATCH share it.
func (s *service) Update(ctx context.Context, id int64, in Input, image *multipart.FileHeader) (*Course, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(c, in)

	previousImage := c.Image
	if image != nil {
		key, err := s.uploader.Save(ctx, ImagePrefix, image)
		if err != nil {
			return nil, err
		}
		c.Image = key
		s.metrics.Portal.RecordUpload(ctx, "course")
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if image != nil {
			s.uploader.Remove(ctx, s.logger, c.Image)
		}
		return nil, err
	}

	if image != nil {
		s.uploader.Remove(ctx, s.logger, previousImage)
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.uploader.Remove(ctx, s.logger, c.Image)
	s.events.Emit(ctx, events.Event{Type: events.CourseDeleted, CourseID: id, ObjectID: id})
	return nil
}

func (s *service) ToResponse(c *Course) Response {
	return Response{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		Image:       s.uploader.URL(c.Image),
	}
}

func apply(c *Course, in Input) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
}
