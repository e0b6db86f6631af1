package resource_test

import (
	"context"
	"testing"

	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/metrics"
	"github.com/haniSalm/FAST-E-Learning/internal/resource"
	"github.com/haniSalm/FAST-E-Learning/internal/schema"
	"github.com/haniSalm/FAST-E-Learning/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, schema.Tables()...)

	ctx := context.Background()
	mockMetrics := metrics.NewMock()
	courses := course.NewRepository(pgContainer.DB, mockMetrics)
	papers := resource.NewRepository[resource.PastPaper](pgContainer.DB, resource.PastPapers, mockMetrics)

	t.Run("Create_MissingCourse", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "past_papers", "courses")

		err := papers.Create(ctx, &resource.PastPaper{Fields: resource.Fields{Title: "Final 2022", CourseID: 404}})
		assert.ErrorIs(t, err, resource.ErrCourseMissing)
	})

	t.Run("Create_List_Delete", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "past_papers", "courses")

		c, err := courses.Create(ctx, &course.Course{Title: "Databases", Description: "-"})
		require.NoError(t, err)

		paper := &resource.PastPaper{Fields: resource.Fields{Title: "Mid 2023", CourseID: c.ID, File: "pastPaper/files/mid.pdf"}}
		require.NoError(t, papers.Create(ctx, paper))
		assert.NotZero(t, paper.ID)

		listed, err := papers.ListByCourse(ctx, c.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "pastPaper/files/mid.pdf", listed[0].File)

		require.NoError(t, papers.Delete(ctx, paper.ID))
		assert.ErrorIs(t, papers.Delete(ctx, paper.ID), resource.ErrNotFound)

		_, err = papers.GetByID(ctx, paper.ID)
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})
}
