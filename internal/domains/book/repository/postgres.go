package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"catalog-backend/internal/domains/book/model"
	"catalog-backend/internal/shared/query"
	"catalog-backend/pkg/database"
)

type postgresRepository struct {
	db database.DB
}

func NewPostgresRepository(db database.DB) RepositoryInterface {
	return &postgresRepository{db: db}
}

const bookColumns = `id, author_id, title, pub_year, genre`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ID, &b.AuthorID, &b.Title, &b.PubYear, &b.Genre); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) List(ctx context.Context, filter query.Filter) ([]model.Book, error) {
	sql := `SELECT ` + bookColumns + ` FROM books`
	var args []any
	if !filter.IsEmpty() {
		var where string
		where, args = filter.Where(1)
		sql += " " + where
	}
	sql += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return b, nil
}

// lockAuthor giữ FOR SHARE trên author cho tới hết transaction
// để author delete (FOR UPDATE) không chen vào giữa
func lockAuthor(ctx context.Context, tx pgx.Tx, authorID int64) error {
	var locked int64
	err := tx.QueryRow(ctx, `SELECT id FROM authors WHERE id = $1 FOR SHARE`, authorID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrAuthorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock author: %w", err)
	}
	return nil
}

func (r *postgresRepository) Create(ctx context.Context, in *model.NewBook) (*model.Book, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Book, error) {
		if err := lockAuthor(ctx, tx, in.AuthorID); err != nil {
			return nil, err
		}

		b, err := scanBook(tx.QueryRow(ctx,
			`INSERT INTO books (author_id, title, pub_year, genre) VALUES ($1, $2, $3, $4) RETURNING `+bookColumns,
			in.AuthorID, in.Title, in.PubYear, in.Genre,
		))
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return nil, model.ErrAuthorNotFound
			}
			return nil, fmt.Errorf("failed to create book: %w", err)
		}
		return b, nil
	})
}

// Update: lock book (404) -> lock author (400) -> overwrite
func (r *postgresRepository) Update(ctx context.Context, in *model.Book) (*model.Book, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.Book, error) {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, in.ID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock book: %w", err)
		}

		if err := lockAuthor(ctx, tx, in.AuthorID); err != nil {
			return nil, err
		}

		b, err := scanBook(tx.QueryRow(ctx,
			`UPDATE books SET author_id = $2, title = $3, pub_year = $4, genre = $5 WHERE id = $1 RETURNING `+bookColumns,
			in.ID, in.AuthorID, in.Title, in.PubYear, in.Genre,
		))
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, model.ErrBookNotFound
		case database.IsForeignKeyViolation(err):
			return nil, model.ErrAuthorNotFound
		case err != nil:
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
		return b, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
