package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/ChaoticTrials/Caelum/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/ChaoticTrials/Caelum/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/ChaoticTrials/Caelum/internal/version.Date={{.Date}}
)
