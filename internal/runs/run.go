// Package runs implements the run domain. A run is one execution of the
// emotion pipeline over a batch of headlines: its assignments are persisted in
// PostgreSQL, its report artifacts are published to blob storage, and its
// reports are recomputed from the stored assignments on demand.
package runs

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/reports"
)

var validate = validator.New()

// StatusCompleted is the status of every persisted run. Failed runs are never stored.
const StatusCompleted = "completed"

// Run is a stored pipeline execution.
type Run struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Backend        string             `json:"backend"`
	Status         string             `json:"status"`
	ItemCount      int                `json:"item_count"`
	Categories     []string           `json:"categories"`
	ArtifactPrefix string             `json:"artifact_prefix"`
	Artifacts      []reports.Artifact `json:"artifacts"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Assignment is a stored per-item result.
type Assignment struct {
	RunID       uuid.UUID `json:"run_id"`
	Position    int       `json:"position"`
	Text        string    `json:"text"`
	Category    string    `json:"category"`
	Label       string    `json:"label"`
	Probability float64   `json:"probability"`
}

func fromAssignment(runID uuid.UUID, a emotions.Assignment) Assignment {
	return Assignment{
		RunID:       runID,
		Position:    a.Item.Position,
		Text:        a.Item.Text,
		Category:    a.Item.Category,
		Label:       a.Label,
		Probability: a.Probability,
	}
}

func (a Assignment) toAssignment() emotions.Assignment {
	return emotions.Assignment{
		Item: emotions.Item{
			Text:     a.Text,
			Category: a.Category,
			Position: a.Position,
		},
		Label:       a.Label,
		Probability: a.Probability,
	}
}

// Report is the pair of aggregations recomputed from a run's assignments.
type Report struct {
	RunID         uuid.UUID                    `json:"run_id"`
	Unconditional emotions.UnconditionalReport `json:"unconditional"`
	Conditional   emotions.ConditionalReport   `json:"conditional"`
}

// ItemInput is one headline submitted for classification.
type ItemInput struct {
	Text     string `json:"text" validate:"required,max=4096"`
	Category string `json:"category" validate:"max=128"`
}

// CreateCommand carries the batch to classify. Categories optionally declares
// the expected secondary categories so empty ones are reported as absent.
type CreateCommand struct {
	Name       string      `json:"name" validate:"required,max=256"`
	Items      []ItemInput `json:"items" validate:"required,min=1,max=50000,dive"`
	Categories []string    `json:"categories,omitempty" validate:"omitempty,max=64,dive,required,max=128"`
}

// Validate checks the command's field constraints. Failures wrap ErrInvalidRun.
func (c CreateCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRun, err)
	}
	return nil
}

func (c CreateCommand) items() []emotions.Item {
	items := make([]emotions.Item, len(c.Items))
	for i, in := range c.Items {
		items[i] = emotions.Item{
			Text:     strings.TrimSpace(in.Text),
			Category: strings.TrimSpace(in.Category),
			Position: i,
		}
	}
	return items
}

func fromItems(name string, items []emotions.Item, categories []string) CreateCommand {
	cmd := CreateCommand{
		Name:       name,
		Items:      make([]ItemInput, len(items)),
		Categories: categories,
	}
	for i, item := range items {
		cmd.Items[i] = ItemInput{Text: item.Text, Category: item.Category}
	}
	return cmd
}
