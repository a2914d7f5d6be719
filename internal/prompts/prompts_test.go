package prompts_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/emotive/internal/prompts"
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
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"duplicate", prompts.ErrDuplicate, http.StatusConflict},
		{"invalid prompt", prompts.ErrInvalidPrompt, http.StatusBadRequest},
		{"invalid id", prompts.ErrInvalidID, http.StatusBadRequest},
		{"invalid body", fmt.Errorf("%w: eof", handlers.ErrInvalidBody), http.StatusBadRequest},
		{"wrapped duplicate", fmt.Errorf("create: %w", prompts.ErrDuplicate), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   prompts.Filters
	}{
		{"empty", url.Values{}, prompts.Filters{}},
		{"name", url.Values{"name": {"terse"}}, prompts.Filters{Name: ptr("terse")}},
		{"active true", url.Values{"active": {"true"}}, prompts.Filters{Active: ptr(true)}},
		{"active false", url.Values{"active": {"0"}}, prompts.Filters{Active: ptr(false)}},
		{"invalid active ignored", url.Values{"active": {"maybe"}}, prompts.Filters{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, prompts.FiltersFromQuery(tt.values)); diff != "" {
				t.Errorf("FiltersFromQuery mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFiltersApply(t *testing.T) {
	p := query.NewProjectionMap("public", "prompts", "p").
		Project("name", "Name").
		Project("active", "Active")

	f := prompts.Filters{Name: ptr("terse"), Active: ptr(true)}
	sql, args := f.Apply(query.NewBuilder(p)).Build()

	want := "SELECT p.name, p.active FROM public.prompts p WHERE p.name ILIKE $1 AND p.active = $2"
	if sql != want {
		t.Errorf("sql:\ngot  %s\nwant %s", sql, want)
	}
	if diff := cmp.Diff([]any{"%terse%", ptr(true)}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     prompts.CreateCommand
		wantErr bool
	}{
		{"valid", prompts.CreateCommand{Name: "terse", Instructions: "Score the headline."}, false},
		{"with description", prompts.CreateCommand{Name: "terse", Instructions: "x", Description: ptr("short")}, false},
		{"missing name", prompts.CreateCommand{Instructions: "x"}, true},
		{"missing instructions", prompts.CreateCommand{Name: "terse"}, true},
		{"name too long", prompts.CreateCommand{Name: strings.Repeat("n", 129), Instructions: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, prompts.ErrInvalidPrompt) {
				t.Errorf("error %v does not wrap ErrInvalidPrompt", err)
			}

			update := prompts.UpdateCommand(tt.cmd)
			if got := update.Validate(); (got != nil) != tt.wantErr {
				t.Errorf("UpdateCommand.Validate() error = %v, wantErr %v", got, tt.wantErr)
			}
		})
	}
}
