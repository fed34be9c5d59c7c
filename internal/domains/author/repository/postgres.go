package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"catalog-backend/internal/domains/author/model"
	"catalog-backend/internal/shared/query"
	"catalog-backend/pkg/database"
)

type postgresRepository struct {
	db database.DB
}

// NewPostgresRepository nhận pool từ container (hoặc pgxmock trong tests)
func NewPostgresRepository(db database.DB) RepositoryInterface {
	return &postgresRepository{db: db}
}

const authorColumns = `id, name, bio`

func (r *postgresRepository) List(ctx context.Context, filter query.Filter) ([]model.Author, error) {
	sql := `SELECT ` + authorColumns + ` FROM authors`
	var args []any
	if !filter.IsEmpty() {
		var where string
		where, args = filter.Where(1)
		sql += " " + where
	}
	sql += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]model.Author, 0)
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate authors: %w", err)
	}

	return authors, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	var a model.Author
	err := r.db.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Bio)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}

	return &a, nil
}

func (r *postgresRepository) Create(ctx context.Context, in *model.NewAuthor) (*model.Author, error) {
	var a model.Author
	err := r.db.QueryRow(ctx,
		`INSERT INTO authors (name, bio) VALUES ($1, $2) RETURNING `+authorColumns,
		in.Name, in.Bio,
	).Scan(&a.ID, &a.Name, &a.Bio)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	return &a, nil
}

func (r *postgresRepository) Update(ctx context.Context, in *model.Author) (*model.Author, error) {
	var a model.Author
	err := r.db.QueryRow(ctx,
		`UPDATE authors SET name = $2, bio = $3 WHERE id = $1 RETURNING `+authorColumns,
		in.ID, in.Name, in.Bio,
	).Scan(&a.ID, &a.Name, &a.Bio)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	return &a, nil
}

// Delete chạy trong một transaction:
// lock author FOR UPDATE -> kiểm tra books -> delete
// Book create/update giữ FOR SHARE trên cùng row nên hai bên serialize
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM authors WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrAuthorNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock author: %w", err)
		}

		var hasBooks bool
		err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE author_id = $1)`, id).Scan(&hasBooks)
		if err != nil {
			return fmt.Errorf("failed to check author books: %w", err)
		}
		if hasBooks {
			return model.ErrAuthorHasBooks
		}

		if _, err := tx.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				return model.ErrAuthorHasBooks
			}
			return fmt.Errorf("failed to delete author: %w", err)
		}

		return nil
	})
}
