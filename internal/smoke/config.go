package smoke

import "time"

// Config holds configuration for a smoke run against a live server.
type Config struct {
	BaseURL string        // Base URL of the service
	Workers int           // Concurrent comparison checks
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every passing check
}

// Stats holds run statistics.
type Stats struct {
	Categories         int
	ScoresChecked      int
	ComparisonsChecked int
	RedirectsChecked   int
	Failures           []string
	StartTime          time.Time
	Duration           time.Duration
}

// Failed reports whether any check failed.
func (s *Stats) Failed() bool { return len(s.Failures) > 0 }
