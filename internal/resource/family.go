package resource

// Family describes one resource kind: its URL segment, display label,
// table and the storage prefix its uploads go under.
type Family struct {
	Segment      string
	Label        string
	Table        string
	UploadPrefix string
}

func (f Family) ImagePrefix() string { return f.UploadPrefix + "images/" }
func (f Family) FilePrefix() string  { return f.UploadPrefix + "files/" }

func (f Family) NotFoundMessage() string { return f.Label + " not found" }
func (f Family) DeletedMessage() string  { return f.Label + " deleted successfully" }

var (
	Assignments = Family{
		Segment:      "assignments",
		Label:        "Assignment",
		Table:        "assignments",
		UploadPrefix: "assignments/",
	}
	Quizzes = Family{
		Segment:      "quizzes",
		Label:        "Quizz",
		Table:        "quizzes",
		UploadPrefix: "quizz/",
	}
	PastPapers = Family{
		Segment:      "pastpapers",
		Label:        "Past paper",
		Table:        "past_papers",
		UploadPrefix: "pastPaper/",
	}
	CourseMaterials = Family{
		Segment:      "coursematerials",
		Label:        "Course material",
		Table:        "course_materials",
		UploadPrefix: "courseMaterial/",
	}
)
