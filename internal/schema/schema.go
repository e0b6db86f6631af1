package schema

import (
	"github.com/haniSalm/FAST-E-Learning/internal/alumni"
	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/comment"
	"github.com/haniSalm/FAST-E-Learning/internal/course"
	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/rating"
	"github.com/haniSalm/FAST-E-Learning/internal/resource"
	"github.com/haniSalm/FAST-E-Learning/internal/user"
)

// Tables lists the portal schema in creation order.
func Tables() []db.Table {
	return []db.Table{
		{Model: (*user.User)(nil)},
		{Model: (*alumni.Alumni)(nil)},
		{
			Model:       (*auth.RefreshToken)(nil),
			ForeignKeys: []db.ForeignKey{db.Cascade("user_id", "users")},
		},
		{Model: (*course.Course)(nil)},
		{
			Model: (*comment.Comment)(nil),
			ForeignKeys: []db.ForeignKey{
				db.Cascade("user_id", "users"),
				db.Cascade("course_id", "courses"),
			},
		},
		{
			Model: (*rating.Rating)(nil),
			ForeignKeys: []db.ForeignKey{
				db.Cascade("user_id", "users"),
				db.Cascade("course_id", "courses"),
			},
			Checks: []db.Check{
				{Name: "ratings_rating_range", Expr: "rating BETWEEN 1 AND 5"},
			},
		},
		resourceTable((*resource.Assignment)(nil)),
		resourceTable((*resource.Quizz)(nil)),
		resourceTable((*resource.PastPaper)(nil)),
		resourceTable((*resource.CourseMaterial)(nil)),
	}
}

// TableNames lists every table, dependents first, for truncation in tests and admin tasks.
func TableNames() []string {
	return []string{
		"assignments", "quizzes", "past_papers", "course_materials",
		"ratings", "comments", "courses", "refresh_tokens", "alumni", "users",
	}
}

func resourceTable(model interface{}) db.Table {
	return db.Table{
		Model:       model,
		ForeignKeys: []db.ForeignKey{db.Cascade("course_id", "courses")},
	}
}
