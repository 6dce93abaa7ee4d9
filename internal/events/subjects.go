package events

const (
	StreamName   = "GLOF_EVENTS"
	StreamMaxAge = "2160h" // 90 days, hazard runs are audit material
)

func SubjectRunStarted(runID string) string   { return "glof.run." + runID + ".started" }
func SubjectRunCompleted(runID string) string { return "glof.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "glof.run." + runID + ".failed" }

// SubjectRunInconsistent fires alongside completion when the judgment matrix
// exceeded the consistency-ratio threshold.
func SubjectRunInconsistent(runID string) string { return "glof.run." + runID + ".inconsistent" }

func SubjectLakeRegistered(lakeID string) string { return "glof.lake." + lakeID + ".registered" }
func SubjectLakeUpdated(lakeID string) string    { return "glof.lake." + lakeID + ".updated" }
