package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ExecutionStage identifies a stage of the provisioning sequence.
type ExecutionStage string

const (
	StageSystem    ExecutionStage = "system"
	StagePython    ExecutionStage = "python"
	StageSDK       ExecutionStage = "sdk"
	StageCompleted ExecutionStage = "completed"
)

// ExecutionState represents the state of a rigstrap run. It is persisted
// after each successful stage so an aborted run can resume at stage
// granularity; within a stage, re-execution is not idempotent.
type ExecutionState struct {
	SchemaVersion       string         `json:"schema_version"`
	RunID               string         `json:"run_id"`
	Profile             string         `json:"profile"`
	LastSuccessfulStage ExecutionStage `json:"last_successful_stage"`
	BlueprintPath       string         `json:"blueprint_path"`
	CreatedAt           time.Time      `json:"created_at"`
	LastUpdatedAt       time.Time      `json:"last_updated_at"`
}

const (
	StateFileName      = ".rigstrap.state.json"
	StateSchemaVersion = "1.0"
)

// loadState attempts to load the execution state from the state file.
// Returns nil if the file doesn't exist (fresh start).
func loadState() (*ExecutionState, error) {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil, nil // Fresh start - no state file exists
	}

	data, err := os.ReadFile(StateFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state ExecutionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	return &state, nil
}

// saveState persists the execution state to the state file.
func saveState(state *ExecutionState) error {
	state.LastUpdatedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if err := os.WriteFile(StateFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// newState creates a new execution state for a fresh run.
func newState(blueprintPath, profile, runID string) *ExecutionState {
	now := time.Now()
	return &ExecutionState{
		SchemaVersion:       StateSchemaVersion,
		RunID:               runID,
		Profile:             profile,
		LastSuccessfulStage: "", // No stage completed yet
		BlueprintPath:       blueprintPath,
		CreatedAt:           now,
		LastUpdatedAt:       now,
	}
}

// stageIndex returns the position of a stage in the ordered stage list, or -1.
func stageIndex(order []ExecutionStage, stage ExecutionStage) int {
	for i, s := range order {
		if s == stage {
			return i
		}
	}
	return -1
}

// shouldSkipStage reports whether a stage already completed in an earlier run.
// The order slice is the blueprint's stage sequence; a stage is skipped when
// the last successful stage is at or past its position.
func (s *ExecutionState) shouldSkipStage(order []ExecutionStage, stage ExecutionStage) bool {
	if s == nil || s.LastSuccessfulStage == "" {
		return false // Fresh start, don't skip any stage
	}
	if s.LastSuccessfulStage == StageCompleted {
		return true
	}

	last := stageIndex(order, s.LastSuccessfulStage)
	current := stageIndex(order, stage)
	if last == -1 || current == -1 {
		return false
	}
	return current <= last
}

// getNextStage returns the first stage that has not yet completed.
func (s *ExecutionState) getNextStage(order []ExecutionStage) ExecutionStage {
	if s == nil || s.LastSuccessfulStage == "" {
		if len(order) == 0 {
			return StageCompleted
		}
		return order[0]
	}

	last := stageIndex(order, s.LastSuccessfulStage)
	if last == -1 || last+1 >= len(order) {
		return StageCompleted
	}
	return order[last+1]
}

// removeStateFile removes the state file after successful completion.
func removeStateFile() error {
	if _, err := os.Stat(StateFileName); os.IsNotExist(err) {
		return nil // File doesn't exist, nothing to remove
	}

	if err := os.Remove(StateFileName); err != nil {
		return fmt.Errorf("failed to remove state file: %w", err)
	}

	return nil
}
