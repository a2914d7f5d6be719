package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/reports"
)

const (
	KeyRunID         = "run_id"
	KeyItems         = "items"
	KeyDeclared      = "declared_categories"
	KeyPrefix        = "artifact_prefix"
	KeyAssignments   = "assignments"
	KeyUnconditional = "unconditional_report"
	KeyConditional   = "conditional_report"
	KeyArtifacts     = "artifacts"
)

// Input describes one run of the pipeline.
type Input struct {
	RunID uuid.UUID
	Items []emotions.Item
	// Categories lists the secondary categories expected in Items. Declared
	// categories without items are reported as absent.
	Categories []string
	// Prefix is the artifact key prefix. Empty uses "runs/<run id>".
	Prefix string
}

// Result is the final output of a workflow execution.
type Result struct {
	RunID         uuid.UUID                    `json:"run_id"`
	Assignments   []emotions.Assignment        `json:"assignments"`
	Unconditional emotions.UnconditionalReport `json:"unconditional"`
	Conditional   emotions.ConditionalReport   `json:"conditional"`
	Artifacts     []reports.Artifact           `json:"artifacts"`
	CompletedAt   time.Time                    `json:"completed_at"`
}

// ArtifactPrefix is the default storage prefix for a run's artifacts.
func ArtifactPrefix(runID uuid.UUID) string {
	return "runs/" + runID.String()
}
