package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/workflow"
	"github.com/JaimeStill/emotive/pkg/pagination"
	"github.com/JaimeStill/emotive/pkg/query"
	"github.com/JaimeStill/emotive/pkg/repository"
	"github.com/JaimeStill/emotive/pkg/storage"
)

type repo struct {
	db            *sql.DB
	storage       storage.System
	rt            *workflow.Runtime
	backend       string
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// Deps carries the collaborators of the run system. Storage receives the
// report artifacts and may be nil to skip publishing.
type Deps struct {
	DB            *sql.DB
	Storage       storage.System
	Runtime       *workflow.Runtime
	Backend       string
	Logger        *slog.Logger
	Pagination    pagination.Config
	MaxUploadSize int64
}

// New creates a run repository implementing the System interface.
func New(deps Deps) System {
	return &repo{
		db:            deps.DB,
		storage:       deps.Storage,
		rt:            deps.Runtime,
		backend:       deps.Backend,
		logger:        deps.Logger.With("system", "runs"),
		pagination:    deps.Pagination,
		maxUploadSize: deps.MaxUploadSize,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Run], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	runs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(runs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

// Create validates the batch, executes the pipeline, and stores the run with
// its assignments. Nothing is stored when any stage fails, and artifacts
// already published for a run that cannot be stored are removed.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Run, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	prefix := workflow.ArtifactPrefix(id)

	result, err := workflow.Execute(ctx, r.rt, workflow.Input{
		RunID:      id,
		Items:      cmd.items(),
		Categories: cmd.Categories,
		Prefix:     prefix,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrPublishFailed) {
			r.removeArtifacts(ctx, prefix)
		}
		return nil, fmt.Errorf("run %s: %w", id, err)
	}

	categories, err := json.Marshal(nonNil(cmd.Categories))
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}
	artifacts, err := json.Marshal(result.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("marshal artifacts: %w", err)
	}

	insertQ := `
		INSERT INTO runs(id, name, backend, status, item_count, categories, artifact_prefix, artifacts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + runColumns

	insertArgs := []any{
		id,
		cmd.Name,
		r.backend,
		StatusCompleted,
		len(result.Assignments),
		categories,
		prefix,
		artifacts,
	}

	rows := make([]Assignment, len(result.Assignments))
	for i, a := range result.Assignments {
		rows[i] = fromAssignment(id, a)
	}

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		run, err := repository.QueryOne(ctx, tx, insertQ, insertArgs, scanRun)
		if err != nil {
			return Run{}, fmt.Errorf("insert run: %w", err)
		}

		if _, err := repository.InsertRows(ctx, tx, "assignments", assignmentColumns, rows, assignmentValues); err != nil {
			return Run{}, fmt.Errorf("insert assignments: %w", err)
		}

		return run, nil
	})

	if err != nil {
		r.removeArtifacts(ctx, prefix)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("run created",
		"id", run.ID,
		"name", run.Name,
		"items", run.ItemCount,
		"labels", len(result.Unconditional.Rows),
	)
	return &run, nil
}

func (r *repo) Assignments(
	ctx context.Context,
	runID uuid.UUID,
	page pagination.PageRequest,
	filters AssignmentFilters,
) (*pagination.PageResult[Assignment], error) {
	if _, err := r.Find(ctx, runID); err != nil {
		return nil, err
	}

	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(assignmentProjection, assignmentSort).
		WhereSearch(page.Search, "Text")

	filters.Apply(qb, runID)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	assignments, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}

	result := pagination.NewPageResult(assignments, total, page.Page, page.PageSize)
	return &result, nil
}

// Report recomputes both aggregations from the stored assignments.
func (r *repo) Report(ctx context.Context, id uuid.UUID) (*Report, error) {
	run, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(assignmentProjection, assignmentSort).
		WhereEquals("RunID", id).
		Build()

	stored, err := repository.QueryMany(ctx, r.db, q, args, scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}

	assignments := make([]emotions.Assignment, len(stored))
	for i, a := range stored {
		assignments[i] = a.toAssignment()
	}

	unconditional, err := emotions.Unconditional(assignments)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	conditional, err := emotions.Conditional(assignments, run.Categories...)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}

	return &Report{
		RunID:         id,
		Unconditional: unconditional,
		Conditional:   conditional,
	}, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	run, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM runs WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.removeArtifacts(ctx, run.ArtifactPrefix)

	r.logger.Info("run deleted", "id", id)
	return nil
}

// removeArtifacts deletes everything under prefix. Failures are logged
// because the database state is already final.
func (r *repo) removeArtifacts(ctx context.Context, prefix string) {
	if r.storage == nil || prefix == "" {
		return
	}

	n, err := r.storage.DeletePrefix(context.WithoutCancel(ctx), prefix+"/")
	if err != nil {
		r.logger.Warn("artifact delete failed", "prefix", prefix, "error", err)
		return
	}
	r.logger.Info("artifacts deleted", "prefix", prefix, "count", n)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
