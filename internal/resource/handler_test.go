package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haniSalm/FAST-E-Learning/internal/logger"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore[T any, PT Entity[T]] struct {
	items     map[int64]*T
	nextID    int64
	createErr error
}

func newMemStore[T any, PT Entity[T]]() *memStore[T, PT] {
	return &memStore[T, PT]{items: make(map[int64]*T)}
}

func (s *memStore[T, PT]) ListByCourse(_ context.Context, courseID int64) ([]T, error) {
	out := []T{}
	for id := int64(1); id <= s.nextID; id++ {
		if item, ok := s.items[id]; ok && PT(item).Base().CourseID == courseID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *memStore[T, PT]) Create(_ context.Context, item *T) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	PT(item).Base().ID = s.nextID
	s.items[s.nextID] = item
	return nil
}

func (s *memStore[T, PT]) GetByID(_ context.Context, id int64) (*T, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *memStore[T, PT]) Delete(_ context.Context, id int64) error {
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type fakeCourses map[int64]bool

func (c fakeCourses) Exists(_ context.Context, id int64) (bool, error) {
	return c[id], nil
}

type fakeFiles struct {
	saved   []string
	removed []string
}

func (f *fakeFiles) Save(_ context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	key := prefix + fh.Filename
	f.saved = append(f.saved, key)
	return key, nil
}

func (f *fakeFiles) URL(key string) *string {
	if key == "" {
		return nil
	}
	u := "/media/" + key
	return &u
}

func (f *fakeFiles) Remove(_ context.Context, _ *slog.Logger, keys ...string) {
	for _, k := range keys {
		if k != "" {
			f.removed = append(f.removed, k)
		}
	}
}

func newTestRouter(t *testing.T) (chi.Router, *memStore[Assignment, *Assignment], *fakeFiles) {
	t.Helper()

	store := newMemStore[Assignment, *Assignment]()
	files := &fakeFiles{}
	h := NewHandler[Assignment, *Assignment](
		Assignments, store, fakeCourses{1: true}, files,
		validation.New(), metrics.NewMock(), logger.NewDiscard(), 5,
	)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, store, files
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandler(t *testing.T) {
	t.Run("create with files", func(t *testing.T) {
		r, store, files := newTestRouter(t)

		body, contentType := multipartBody(t,
			map[string]string{"title": "HW1", "description": "first"},
			map[string]string{"image": "cover.png", "file": "hw1.pdf"},
		)
		req := httptest.NewRequest(http.MethodPost, "/courses/1/assignments/create", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "HW1", resp.Title)
		assert.Equal(t, int64(1), resp.Course)
		require.NotNil(t, resp.Image)
		assert.Equal(t, "/media/assignments/images/cover.png", *resp.Image)
		require.NotNil(t, resp.File)
		assert.Equal(t, "/media/assignments/files/hw1.pdf", *resp.File)
		assert.Len(t, store.items, 1)
		assert.Len(t, files.saved, 2)
	})

	t.Run("create without files", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/courses/1/assignments/create",
			strings.NewReader(`{"title":"HW2"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"image":null`)
		assert.Contains(t, rec.Body.String(), `"file":null`)
	})

	t.Run("blank title", func(t *testing.T) {
		r, store, _ := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/courses/1/assignments/create",
			strings.NewReader(`{"title":"   "}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"title"`)
		assert.Empty(t, store.items)
	})

	t.Run("unknown course", func(t *testing.T) {
		r, store, files := newTestRouter(t)

		body, contentType := multipartBody(t,
			map[string]string{"title": "HW3"},
			map[string]string{"file": "hw3.pdf"},
		)
		req := httptest.NewRequest(http.MethodPost, "/courses/99/assignments/create", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `Invalid pk \"99\" - object does not exist.`)
		assert.Empty(t, store.items)
		assert.Empty(t, files.saved)
	})

	t.Run("course deleted before insert", func(t *testing.T) {
		r, store, files := newTestRouter(t)
		store.createErr = ErrCourseMissing

		body, contentType := multipartBody(t,
			map[string]string{"title": "HW4"},
			map[string]string{"image": "cover.png", "file": "hw4.pdf"},
		)
		req := httptest.NewRequest(http.MethodPost, "/courses/1/assignments/create", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"course"`)
		assert.Contains(t, rec.Body.String(), `Invalid pk \"1\" - object does not exist.`)
		assert.Empty(t, store.items)
		assert.ElementsMatch(t, files.saved, files.removed)
	})

	t.Run("list filters by course", func(t *testing.T) {
		r, store, _ := newTestRouter(t)
		ctx := context.Background()
		require.NoError(t, store.Create(ctx, &Assignment{Fields: Fields{Title: "a", CourseID: 1}}))
		require.NoError(t, store.Create(ctx, &Assignment{Fields: Fields{Title: "b", CourseID: 2}}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/1/assignments", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp []Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "a", resp[0].Title)
	})

	t.Run("list of unknown course is empty", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/42/assignments", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("delete removes files", func(t *testing.T) {
		r, store, files := newTestRouter(t)
		require.NoError(t, store.Create(context.Background(), &Assignment{Fields: Fields{
			Title: "a", CourseID: 1, Image: "assignments/images/x.png", File: "assignments/files/x.pdf",
		}}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assignments/1/delete", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Assignment deleted successfully"}`, rec.Body.String())
		assert.Empty(t, store.items)
		assert.ElementsMatch(t, []string{"assignments/images/x.png", "assignments/files/x.pdf"}, files.removed)
	})

	t.Run("delete missing", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assignments/7/delete", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Assignment not found"}`, rec.Body.String())
	})
}

func TestFamilies(t *testing.T) {
	assert.Equal(t, "quizz/images/", Quizzes.ImagePrefix())
	assert.Equal(t, "pastPaper/files/", PastPapers.FilePrefix())
	assert.Equal(t, "Course material not found", CourseMaterials.NotFoundMessage())
}
