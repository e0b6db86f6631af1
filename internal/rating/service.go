package rating

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
)

type Service struct {
	repo    Repository
	courses course.Service
	events  *events.Dispatcher
	metrics *metrics.Metrics
}

func NewService(repo Repository, courses course.Service, dispatcher *events.Dispatcher, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		courses: courses,
		events:  dispatcher,
		metrics: m,
	}
}

// ParseValue accepts integers in 1..5 written as "4" or "4.0".
func ParseValue(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, ErrInvalidValue
		}
		value = int(f)
	}
	if value < MinValue || value > MaxValue {
		return 0, ErrInvalidValue
	}
	return value, nil
}

// Submit records a new rating; an existing rating is never updated.
func (s *Service) Submit(ctx context.Context, courseID, userID int64, raw string) (*Rating, error) {
	value, err := ParseValue(raw)
	if err != nil {
		return nil, err
	}

	if _, err := s.courses.Get(ctx, courseID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRated
	}

	created, err := s.repo.Create(ctx, &Rating{
		Value:    value,
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit rating: %w", err)
	}

	s.metrics.Portal.RecordRatingSubmitted(ctx, value)
	s.events.Emit(ctx, events.Event{
		Type:     events.RatingSubmitted,
		CourseID: courseID,
		UserID:   userID,
		ObjectID: created.ID,
	})

	return created, nil
}

func (s *Service) Detail(ctx context.Context, courseID int64) (*DetailResponse, error) {
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	ratings, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	base := s.courses.ToResponse(c)
	detail := &DetailResponse{
		ID:              base.ID,
		Title:           base.Title,
		Description:     base.Description,
		CreatedAt:       base.CreatedAt,
		Image:           base.Image,
		Ratings:         make([]Response, 0, len(ratings)),
		AverageRating:   Average(ratings),
		NumberOfRatings: len(ratings),
	}
	for _, r := range ratings {
		detail.Ratings = append(detail.Ratings, Response{
			ID:     r.ID,
			Course: r.CourseID,
			User:   r.UserID,
			Rating: r.Value,
		})
	}
	return detail, nil
}
