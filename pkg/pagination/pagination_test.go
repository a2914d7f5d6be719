package pagination_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/emotive/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := pagination.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
			t.Errorf("defaults mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PAGE_SIZE", "50")
		t.Setenv("TEST_MAX_PAGE", "200")

		cfg := pagination.Config{}
		err := cfg.Finalize(&pagination.ConfigEnv{
			DefaultPageSize: "TEST_PAGE_SIZE",
			MaxPageSize:     "TEST_MAX_PAGE",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
			t.Errorf("got %+v, want {50 200}", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
			t.Errorf("Finalize() error = %v", err)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := defaultConfig()
	base.Merge(&pagination.Config{DefaultPageSize: 50})

	if base.DefaultPageSize != 50 || base.MaxPageSize != 100 {
		t.Errorf("Merge() = %+v, want {50 100}", base)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", pagination.PageRequest{}, 1, 20},
		{"negative page corrected", pagination.PageRequest{Page: -1, PageSize: 10}, 1, 10},
		{"page size clamped to max", pagination.PageRequest{Page: 1, PageSize: 500}, 1, 100},
		{"valid values preserved", pagination.PageRequest{Page: 3, PageSize: 25}, 3, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage || tt.req.PageSize != tt.wantPageSize {
				t.Errorf("Normalize() = {%d %d}, want {%d %d}",
					tt.req.Page, tt.req.PageSize, tt.wantPage, tt.wantPageSize)
			}
			if got, want := tt.req.Offset(), (tt.wantPage-1)*tt.wantPageSize; got != want {
				t.Errorf("Offset() = %d, want %d", got, want)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"page":      {"2"},
			"page_size": {"15"},
			"search":    {"headlines"},
			"sort":      {"Name,-StartedAt"},
		}

		req := pagination.PageRequestFromQuery(values, defaultConfig())

		search := "headlines"
		want := pagination.PageRequest{
			Page:     2,
			PageSize: 15,
			Search:   &search,
			Sort: pagination.SortFields{
				{Field: "Name"},
				{Field: "StartedAt", Descending: true},
			},
		}
		if diff := cmp.Diff(want, req); diff != "" {
			t.Errorf("PageRequestFromQuery mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty params get defaults", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{}, defaultConfig())

		if req.Page != 1 || req.PageSize != 20 || req.Search != nil {
			t.Errorf("PageRequestFromQuery(empty) = %+v", req)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder", 101, 20, 6},
		{"single page", 5, 20, 1},
		{"empty result", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{"a"}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}

	t.Run("nil data becomes empty", func(t *testing.T) {
		result := pagination.NewPageResult[string](nil, 0, 1, 20)
		if result.Data == nil || len(result.Data) != 0 {
			t.Errorf("Data = %#v, want empty non-nil slice", result.Data)
		}
	})
}

func TestSortFieldsUnmarshal(t *testing.T) {
	want := pagination.SortFields{
		{Field: "Name"},
		{Field: "StartedAt", Descending: true},
	}

	tests := []struct {
		name  string
		input string
	}{
		{"string", `"Name,-StartedAt"`},
		{"array", `[{"field":"Name"},{"field":"StartedAt","descending":true}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sf pagination.SortFields
			if err := json.Unmarshal([]byte(tt.input), &sf); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if diff := cmp.Diff(want, sf); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

