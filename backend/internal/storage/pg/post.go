package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/portal-dev/portal/shared/domain"
	internal_errors "github.com/portal-dev/portal/shared/errors"
)

const postColumns = `p.id, p.title, p.content, p.author_id, u.name, u.email, p.created_at, p.updated_at, p.view_count`

// =========================================================================
// Public Methods (satisfy the service.PostStorage interface)
// =========================================================================

func (s *Storage) CreatePost(post domain.Post) (domain.PostId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var id domain.PostId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createPost(ctx, tx, post)
		return err
	})
	return id, err
}

// Post returns a post without touching its view counter.
func (s *Storage) Post(id domain.PostId) (domain.Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return s.post(ctx, s.db, id)
}

// ViewPost bumps the view counter and returns the post as it is afterwards.
func (s *Storage) ViewPost(id domain.PostId) (domain.Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var post domain.Post
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE posts SET view_count = view_count + 1 WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to increment view count: %w", err)
		}
		if err := requireAffected(res, "Post not found"); err != nil {
			return err
		}
		post, err = s.post(ctx, tx, id)
		return err
	})
	return post, err
}

func (s *Storage) UpdatePost(id domain.PostId, title, content string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE posts SET title = $1, content = $2, updated_at = now() WHERE id = $3",
			title, content, id)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}
		return requireAffected(res, "Post not found")
	})
}

func (s *Storage) DeletePost(id domain.PostId) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return requireAffected(res, "Post not found")
	})
}

// ListPosts returns newest-first posts and the total row count.
func (s *Storage) ListPosts(offset, limit int) ([]domain.Post, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return s.pagedPosts(ctx, "", nil, offset, limit)
}

// SearchPosts matches keyword case-insensitively against title and content.
func (s *Storage) SearchPosts(keyword string, offset, limit int) ([]domain.Post, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	pattern := "%" + escapeLike(keyword) + "%"
	return s.pagedPosts(ctx, "p.title ILIKE $1 OR p.content ILIKE $1", []any{pattern}, offset, limit)
}

func (s *Storage) PostsByAuthor(authorId domain.UserId, offset, limit int) ([]domain.Post, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	return s.pagedPosts(ctx, "p.author_id = $1", []any{authorId}, offset, limit)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) createPost(ctx context.Context, q Querier, post domain.Post) (domain.PostId, error) {
	var id domain.PostId
	err := q.QueryRowContext(ctx,
		"INSERT INTO posts(title, content, author_id) VALUES($1, $2, $3) RETURNING id",
		post.Title, post.Content, post.AuthorId,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert post: %w", err)
	}
	return id, nil
}

func (s *Storage) post(ctx context.Context, q Querier, id domain.PostId) (domain.Post, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1", id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, internal_errors.NotFound("Post not found")
		}
		return domain.Post{}, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

// pagedPosts runs a count and a page query sharing the same optional filter.
func (s *Storage) pagedPosts(ctx context.Context, where string, args []any, offset, limit int) ([]domain.Post, int64, error) {
	from := " FROM posts p JOIN users u ON u.id = p.author_id"
	if where != "" {
		from += " WHERE " + where
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*)"+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT %s%s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", postColumns, from, n+1, n+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.Id, &p.Title, &p.Content, &p.AuthorId, &p.AuthorName, &p.AuthorEmail, &p.CreatedAt, &p.UpdatedAt, &p.ViewCount)
	return p, err
}

func requireAffected(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return internal_errors.NotFound(notFoundMsg)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
