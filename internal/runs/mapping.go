package runs

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/pkg/query"
	"github.com/JaimeStill/emotive/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "runs", "r").
	Project("id", "ID").
	Project("name", "Name").
	Project("backend", "Backend").
	Project("status", "Status").
	Project("item_count", "ItemCount").
	Project("categories", "Categories").
	Project("artifact_prefix", "ArtifactPrefix").
	Project("artifacts", "Artifacts").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const runColumns = "id, name, backend, status, item_count, categories, artifact_prefix, artifacts, created_at"

var assignmentProjection = query.
	NewProjectionMap("public", "assignments", "a").
	Project("run_id", "RunID").
	Project("position", "Position").
	Project("text", "Text").
	Project("category", "Category").
	Project("label", "Label").
	Project("probability", "Probability")

var assignmentSort = query.SortField{Field: "Position"}

var assignmentColumns = []string{"run_id", "position", "text", "category", "label", "probability"}

func assignmentValues(a Assignment) []any {
	return []any{a.RunID, a.Position, a.Text, a.Category, a.Label, a.Probability}
}

// Filters contains optional filtering criteria for run queries.
// Nil fields are ignored. Status and Backend use exact matching; Name uses
// case-insensitive contains matching.
type Filters struct {
	Status  *string `json:"status,omitempty"`
	Backend *string `json:"backend,omitempty"`
	Name    *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Backend", f.Backend).
		WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if b := values.Get("backend"); b != "" {
		f.Backend = &b
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	return f
}

// AssignmentFilters narrows a run's assignments. Both fields use exact matching.
type AssignmentFilters struct {
	Label    *string `json:"label,omitempty"`
	Category *string `json:"category,omitempty"`
}

// Apply adds filter conditions scoped to runID.
func (f AssignmentFilters) Apply(b *query.Builder, runID uuid.UUID) *query.Builder {
	return b.
		WhereEquals("RunID", runID).
		WhereEquals("Label", f.Label).
		WhereEquals("Category", f.Category)
}

// AssignmentFiltersFromQuery extracts assignment filters from URL query parameters.
func AssignmentFiltersFromQuery(values url.Values) AssignmentFilters {
	var f AssignmentFilters

	if l := values.Get("label"); l != "" {
		f.Label = &l
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	return f
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	var categoriesRaw, artifactsRaw []byte

	err := s.Scan(
		&r.ID,
		&r.Name,
		&r.Backend,
		&r.Status,
		&r.ItemCount,
		&categoriesRaw,
		&r.ArtifactPrefix,
		&artifactsRaw,
		&r.CreatedAt,
	)
	if err != nil {
		return r, err
	}

	if len(categoriesRaw) > 0 {
		if err := json.Unmarshal(categoriesRaw, &r.Categories); err != nil {
			return r, fmt.Errorf("unmarshal categories: %w", err)
		}
	}
	if len(artifactsRaw) > 0 {
		if err := json.Unmarshal(artifactsRaw, &r.Artifacts); err != nil {
			return r, fmt.Errorf("unmarshal artifacts: %w", err)
		}
	}

	if r.Categories == nil {
		r.Categories = []string{}
	}

	return r, nil
}

func scanAssignment(s repository.Scanner) (Assignment, error) {
	var a Assignment
	err := s.Scan(
		&a.RunID,
		&a.Position,
		&a.Text,
		&a.Category,
		&a.Label,
		&a.Probability,
	)
	return a, err
}
