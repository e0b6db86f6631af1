package app

const ServiceName = "course-portal"

// Set via -ldflags:
//
//	go build -ldflags="-X 'github.com/haniSalm/FAST-E-Learning/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
