package events

import "time"

type RunStartedEvent struct {
	RunID     string    `json:"run_id"`
	LakeCount int       `json:"lake_count"`
	Classes   int       `json:"classes"`
	StartedAt time.Time `json:"started_at"`
}

type RunCompletedEvent struct {
	RunID       string             `json:"run_id"`
	LakeCount   int                `json:"lake_count"`
	CR          float64            `json:"cr"`
	Weights     map[string]float64 `json:"weights"`
	TopLake     string             `json:"top_lake,omitempty"`
	TopIndex    float64            `json:"top_index,omitempty"`
	CompletedAt time.Time          `json:"completed_at"`
}

type RunFailedEvent struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

type RunInconsistentEvent struct {
	RunID     string  `json:"run_id"`
	CR        float64 `json:"cr"`
	Threshold float64 `json:"threshold"`
}

type LakeRegisteredEvent struct {
	LakeID string `json:"lake_id"`
	Name   string `json:"name"`
	Basin  string `json:"basin,omitempty"`
	Source string `json:"source,omitempty"`
}
