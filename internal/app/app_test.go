package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/haniSalm/FAST-E-Learning/internal/app"
	"github.com/haniSalm/FAST-E-Learning/internal/config"
	"github.com/haniSalm/FAST-E-Learning/internal/events"
	"github.com/haniSalm/FAST-E-Learning/internal/logger"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/schema"
	"github.com/haniSalm/FAST-E-Learning/internal/storage"
	"github.com/haniSalm/FAST-E-Learning/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func (c *client) json(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return c.do(method, path, r, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPortal(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, schema.Tables()...)
	testdb.CleanupTables(t, pgContainer.DB, schema.TableNames()...)

	store, err := storage.NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	cfg := &config.Config{
		Env: "test",
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  300,
			RefreshTokenTTL: 3600,
			BcryptCost:      4,
		},
		Storage: config.StorageConfig{Driver: "local", MediaURL: "/media/", MaxUploadMB: 1},
		Alumni:  config.AlumniConfig{EmailPattern: `^l\d{6}@lhr\.nu\.edu\.pk$`},
	}

	application := app.Build(app.Deps{
		Config:    cfg,
		DB:        pgContainer.DB,
		Storage:   store,
		Publisher: pub,
		Metrics:   metrics.NewMock(),
		Logger:    logger.NewDiscard(),
	})
	c := &client{t: t, handler: application.Handler()}

	const email = "l123456@lhr.nu.edu.pk"
	var pair struct {
		Refresh string `json:"refresh"`
		Access  string `json:"access"`
	}

	t.Run("signup and login", func(t *testing.T) {
		rec := c.json(http.MethodPost, "/signup", `{"email":"`+email+`","password":"pw-123456"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"message":"User created successfully!"}`, rec.Body.String())

		rec = c.json(http.MethodPost, "/signup", `{"email":"`+email+`","password":"other"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email"`)

		rec = c.json(http.MethodPost, "/signup", `{"email":"not-an-email","password":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = c.json(http.MethodPost, "/login", `{"email":"`+email+`","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

		rec = c.json(http.MethodPost, "/login", `{"email":"nobody@example.com","password":"pw-123456"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = c.json(http.MethodPost, "/login", `{"email":"`+email+`","password":"pw-123456"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "token=")
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		anon := &client{t: t, handler: c.handler}
		rec := anon.json(http.MethodGet, "/user/status", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = anon.json(http.MethodGet, "/comments/course/1", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	c.token = pair.Access

	t.Run("alumni status", func(t *testing.T) {
		rec := c.json(http.MethodGet, "/user/status", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"is_alumni":false}`, rec.Body.String())

		_, err := pgContainer.DB.ExecContext(context.Background(), "INSERT INTO alumni (email, date_added) VALUES (?, now())", email)
		require.NoError(t, err)

		rec = c.json(http.MethodGet, "/user/status", "")
		assert.JSONEq(t, `{"is_alumni":true}`, rec.Body.String())
	})

	var courseID string

	t.Run("create course with image", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "Data Structures"))
		fw, err := mw.CreateFormFile("image", "Cover.PNG")
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png bytes"))
		require.NoError(t, mw.Close())

		rec := c.do(http.MethodPost, "/courses", &buf, mw.FormDataContentType())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "Data Structures", resp["title"])
		assert.Equal(t, "No description available", resp["description"])
		image, ok := resp["image"].(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(image, "/media/courses/images/"))
		assert.True(t, strings.HasSuffix(image, ".png"))
		courseID = "1"

		media := c.do(http.MethodGet, image, nil, "")
		assert.Equal(t, http.StatusOK, media.Code)
		assert.Equal(t, "png bytes", media.Body.String())
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec := c.json(http.MethodPatch, "/courses/"+courseID, `{"description":"Trees and graphs"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[map[string]interface{}](t, rec)
		assert.Equal(t, "Data Structures", resp["title"])
		assert.Equal(t, "Trees and graphs", resp["description"])

		rec = c.json(http.MethodPut, "/courses/999", `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("comments", func(t *testing.T) {
		rec := c.json(http.MethodGet, "/comments/course/999", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = c.json(http.MethodGet, "/comments/course/"+courseID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"No comments yet."}`, rec.Body.String())

		rec = c.json(http.MethodPost, "/comments/course/"+courseID, `{"text":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = c.json(http.MethodPost, "/comments/course/999", `{"text":"hello"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = c.json(http.MethodPost, "/comments/course/"+courseID, `{"text":"first"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		rec = c.do(http.MethodPost, "/comments/course/"+courseID,
			strings.NewReader("text=second"), "application/x-www-form-urlencoded")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = c.json(http.MethodGet, "/comments/course/"+courseID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		comments := decode[[]map[string]interface{}](t, rec)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[0]["text"])
		assert.Equal(t, email, comments[0]["user_email"])
		assert.Equal(t, "Data Structures", comments[0]["course_title"])
	})

	t.Run("ratings", func(t *testing.T) {
		rec := c.json(http.MethodGet, "/course/"+courseID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		detail := decode[map[string]interface{}](t, rec)
		assert.Equal(t, 0.0, detail["average_rating"])
		assert.Equal(t, 0.0, detail["number_of_ratings"])

		rec = c.do(http.MethodPost, "/course/"+courseID+"/rate", strings.NewReader("rating=6"), "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Rating must be between 1 and 5"}`, rec.Body.String())

		rec = c.json(http.MethodPost, "/course/999/rate", `{"rating":3}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = c.do(http.MethodPost, "/course/"+courseID+"/rate", strings.NewReader("rating=4"), "application/x-www-form-urlencoded")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"message":"Rating submitted successfully!"}`, rec.Body.String())

		rec = c.json(http.MethodPost, "/course/"+courseID+"/rate", `{"rating":5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"You have already rated this course"}`, rec.Body.String())

		rec = c.json(http.MethodGet, "/course/"+courseID, "")
		detail = decode[map[string]interface{}](t, rec)
		assert.Equal(t, 4.0, detail["average_rating"])
		assert.Equal(t, 1.0, detail["number_of_ratings"])
	})

	t.Run("resources", func(t *testing.T) {
		rec := c.json(http.MethodPost, "/courses/999/quizzes/create", `{"title":"Q1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"course"`)

		rec = c.json(http.MethodPost, "/courses/"+courseID+"/quizzes/create", `{"title":"Q1"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = c.json(http.MethodPost, "/courses/"+courseID+"/pastpapers/create", `{"title":"Mid 2023"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = c.json(http.MethodGet, "/courses/"+courseID+"/quizzes", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]map[string]interface{}](t, rec), 1)

		rec = c.json(http.MethodDelete, "/quizzes/1/delete", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Quizz deleted successfully"}`, rec.Body.String())

		rec = c.json(http.MethodDelete, "/quizzes/1/delete", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deleting a course cascades", func(t *testing.T) {
		rec := c.json(http.MethodDelete, "/courses/"+courseID, "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = c.json(http.MethodGet, "/courses/"+courseID+"/pastpapers", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())

		for _, table := range []string{"comments", "ratings", "past_papers"} {
			n, err := pgContainer.DB.NewSelect().Table(table).Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n, table)
		}

		rec = c.json(http.MethodGet, "/courses", "")
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("refresh and logout", func(t *testing.T) {
		rec := c.json(http.MethodPost, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rotated := decode[map[string]string](t, rec)

		rec = c.json(http.MethodPost, "/token/refresh", `{"refresh":"`+pair.Refresh+`"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = c.json(http.MethodPost, "/logout", `{"refresh":"`+rotated["refresh"]+`"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = c.json(http.MethodPost, "/token/refresh", `{"refresh":"`+rotated["refresh"]+`"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("activity events", func(t *testing.T) {
		assert.Equal(t, []string{
			events.CommentCreated,
			events.CommentCreated,
			events.RatingSubmitted,
			events.CourseDeleted,
		}, pub.types())
	})
}
