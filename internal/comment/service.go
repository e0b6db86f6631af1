package comment

import (
	"context"
	"fmt"

	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"
)

type Service struct {
	repo      Repository
	courses   course.Repository
	validator *validation.Validator
	events    *events.Dispatcher
	metrics   *metrics.Metrics
}

func NewService(repo Repository, courses course.Repository, v *validation.Validator, dispatcher *events.Dispatcher, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		courses:   courses,
		validator: v,
		events:    dispatcher,
		metrics:   m,
	}
}

func (s *Service) List(ctx context.Context, courseID int64) ([]Comment, error) {
	exists, err := s.courses.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, course.ErrCourseNotFound
	}
	return s.repo.ListByCourse(ctx, courseID)
}

// Post stamps the comment with its author; the course is checked before the text.
func (s *Service) Post(ctx context.Context, courseID int64, author *user.User, req CreateRequest) (*Comment, error) {
	c, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Comment{
		Text:     req.Text,
		UserID:   author.ID,
		CourseID: courseID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	created.User = author
	created.Course = c

	s.metrics.Portal.RecordCommentPosted(ctx)
	s.events.Emit(ctx, events.Event{
		Type:     events.CommentCreated,
		CourseID: courseID,
		UserID:   author.ID,
		ObjectID: created.ID,
	})

	return created, nil
}
