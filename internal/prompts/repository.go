package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/pkg/pagination"
	"github.com/JaimeStill/emotive/pkg/query"
	"github.com/JaimeStill/emotive/pkg/repository"
)

// Deps holds the dependencies of the prompt system. OnChange, when set, runs
// after any operation that changes the effective instructions.
type Deps struct {
	DB         *sql.DB
	Logger     *slog.Logger
	Pagination pagination.Config
	Labels     []string
	OnChange   func(ctx context.Context)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	labels     []string
	onChange   func(ctx context.Context)
}

// New creates a prompt repository implementing the System interface.
func New(deps Deps) System {
	return &repo{
		db:         deps.DB,
		logger:     deps.Logger.With("system", "prompts"),
		pagination: deps.Pagination,
		labels:     deps.Labels,
		onChange:   deps.OnChange,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.labels)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	prompts, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(prompts, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO prompts(name, instructions, description)
		VALUES ($1, $2, $3)
		` + returning

	args := []any{cmd.Name, cmd.Instructions, cmd.Description}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		UPDATE prompts
		SET name = $1, instructions = $2, description = $3
		WHERE id = $4
		` + returning

	args := []any{cmd.Name, cmd.Instructions, cmd.Description, id}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt updated", "id", p.ID, "name", p.Name)
	if p.Active {
		r.changed(ctx)
	}
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	active, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		return repository.QueryOne(
			ctx, tx,
			"DELETE FROM prompts WHERE id = $1 RETURNING active",
			[]any{id},
			func(s repository.Scanner) (bool, error) {
				var active bool
				err := s.Scan(&active)
				return active, err
			},
		)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deleted", "id", id)
	if active {
		r.changed(ctx)
	}
	return nil
}

func (r *repo) Activate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		findQ, findArgs := query.NewBuilder(projection).BuildSingle("ID", id)
		if _, err := repository.QueryOne(ctx, tx, findQ, findArgs, scanPrompt); err != nil {
			return Prompt{}, err
		}

		_, err := tx.ExecContext(
			ctx,
			"UPDATE prompts SET active = false WHERE active = true AND id <> $1",
			id,
		)
		if err != nil {
			return Prompt{}, fmt.Errorf("deactivate current: %w", err)
		}

		activateQ := `
			UPDATE prompts SET active = true
			WHERE id = $1
			` + returning

		return repository.QueryOne(ctx, tx, activateQ, []any{id}, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt activated", "id", p.ID, "name", p.Name)
	r.changed(ctx)
	return &p, nil
}

func (r *repo) Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q := `
		UPDATE prompts SET active = false
		WHERE id = $1
		` + returning

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanPrompt)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deactivated", "id", p.ID, "name", p.Name)
	r.changed(ctx)
	return &p, nil
}

func (r *repo) Instructions(ctx context.Context) (string, error) {
	var text string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT instructions FROM prompts WHERE active = true LIMIT 1",
	).Scan(&text)

	if errors.Is(err, sql.ErrNoRows) {
		return classifier.DefaultInstructions, nil
	}
	if err != nil {
		return "", fmt.Errorf("query active prompt: %w", err)
	}
	return text, nil
}

func (r *repo) changed(ctx context.Context) {
	if r.onChange != nil {
		r.onChange(context.WithoutCancel(ctx))
	}
}
