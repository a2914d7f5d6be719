package runs_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/internal/dataset"
	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/runs"
	"github.com/JaimeStill/emotive/pkg/handlers"
	"github.com/JaimeStill/emotive/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", runs.ErrNotFound, http.StatusNotFound},
		{"duplicate", runs.ErrDuplicate, http.StatusConflict},
		{"file too large", runs.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid run", runs.ErrInvalidRun, http.StatusBadRequest},
		{"invalid id", runs.ErrInvalidID, http.StatusBadRequest},
		{"invalid file", runs.ErrInvalidFile, http.StatusBadRequest},
		{"invalid body", fmt.Errorf("%w: eof", handlers.ErrInvalidBody), http.StatusBadRequest},
		{"invalid dataset", fmt.Errorf("%w: line 3: empty title", dataset.ErrInvalidDataset), http.StatusBadRequest},
		{"empty input", emotions.ErrEmptyInput, http.StatusBadRequest},
		{
			"classification",
			&emotions.ClassificationError{Position: 2, Err: errors.New("upstream 503")},
			http.StatusBadGateway,
		},
		{
			"malformed distribution",
			&emotions.MalformedDistributionError{Position: 0, Err: errors.New("empty")},
			http.StatusInternalServerError,
		},
		{"wrapped not found", fmt.Errorf("find: %w", runs.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runs.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   runs.Filters
	}{
		{"empty", url.Values{}, runs.Filters{}},
		{
			"all fields",
			url.Values{"status": {"completed"}, "backend": {"agent"}, "name": {"news"}},
			runs.Filters{Status: ptr("completed"), Backend: ptr("agent"), Name: ptr("news")},
		},
		{
			"blank values ignored",
			url.Values{"status": {""}, "name": {"fake"}},
			runs.Filters{Name: ptr("fake")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, runs.FiltersFromQuery(tt.values)); diff != "" {
				t.Errorf("FiltersFromQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFiltersApply(t *testing.T) {
	p := query.NewProjectionMap("public", "runs", "r").
		Project("status", "Status").
		Project("backend", "Backend").
		Project("name", "Name")

	f := runs.Filters{Status: ptr("completed"), Name: ptr("news")}
	sql, args := f.Apply(query.NewBuilder(p)).Build()

	want := "SELECT r.status, r.backend, r.name FROM public.runs r WHERE r.status = $1 AND r.name ILIKE $2"
	if sql != want {
		t.Errorf("sql:\ngot  %s\nwant %s", sql, want)
	}
	if diff := cmp.Diff([]any{ptr("completed"), "%news%"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentFilters(t *testing.T) {
	f := runs.AssignmentFiltersFromQuery(url.Values{"label": {"joy"}, "category": {""}})
	if diff := cmp.Diff(runs.AssignmentFilters{Label: ptr("joy")}, f); diff != "" {
		t.Fatalf("AssignmentFiltersFromQuery mismatch (-want +got):\n%s", diff)
	}

	p := query.NewProjectionMap("public", "assignments", "a").
		Project("run_id", "RunID").
		Project("label", "Label").
		Project("category", "Category")

	runID := uuid.New()
	sql, args := f.Apply(query.NewBuilder(p), runID).Build()

	want := "SELECT a.run_id, a.label, a.category FROM public.assignments a WHERE a.run_id = $1 AND a.label = $2"
	if sql != want {
		t.Errorf("sql:\ngot  %s\nwant %s", sql, want)
	}
	if len(args) != 2 || args[0] != runID {
		t.Errorf("args = %v, want run id first", args)
	}
}

func TestCreateCommandValidate(t *testing.T) {
	long := strings.Repeat("x", 4097)

	tests := []struct {
		name    string
		cmd     runs.CreateCommand
		wantErr bool
	}{
		{
			"valid",
			runs.CreateCommand{
				Name:  "headlines",
				Items: []runs.ItemInput{{Text: "a happy day", Category: "Real"}},
			},
			false,
		},
		{
			"declared categories",
			runs.CreateCommand{
				Name:       "headlines",
				Items:      []runs.ItemInput{{Text: "a happy day"}},
				Categories: []string{"Fake", "Real"},
			},
			false,
		},
		{"missing name", runs.CreateCommand{Items: []runs.ItemInput{{Text: "a"}}}, true},
		{"no items", runs.CreateCommand{Name: "empty"}, true},
		{"empty text", runs.CreateCommand{Name: "n", Items: []runs.ItemInput{{Text: ""}}}, true},
		{"text too long", runs.CreateCommand{Name: "n", Items: []runs.ItemInput{{Text: long}}}, true},
		{
			"blank declared category",
			runs.CreateCommand{Name: "n", Items: []runs.ItemInput{{Text: "a"}}, Categories: []string{""}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				if !errors.Is(err, runs.ErrInvalidRun) {
					t.Errorf("Validate() error = %v, want ErrInvalidRun", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
