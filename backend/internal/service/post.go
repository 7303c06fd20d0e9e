package service

import (
	"strings"

	"github.com/portal-dev/portal/shared/config"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/errors"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/validation"
)

type PostService interface {
	List(page, size int) (domain.PostPage, error)
	Search(keyword string, page, size int) (domain.PostPage, error)
	ByAuthor(user domain.User, page, size int) (domain.PostPage, error)
	View(id domain.PostId) (domain.Post, error)
	Create(user domain.User, title, content string) (domain.Post, error)
	Update(user domain.User, id domain.PostId, title, content string) (domain.Post, error)
	Delete(user domain.User, id domain.PostId) error
}

type PostStorage interface {
	CreatePost(post domain.Post) (domain.PostId, error)
	Post(id domain.PostId) (domain.Post, error)
	ViewPost(id domain.PostId) (domain.Post, error)
	UpdatePost(id domain.PostId, title, content string) error
	DeletePost(id domain.PostId) error
	ListPosts(offset, limit int) ([]domain.Post, int64, error)
	SearchPosts(keyword string, offset, limit int) ([]domain.Post, int64, error)
	PostsByAuthor(authorId domain.UserId, offset, limit int) ([]domain.Post, int64, error)
}

type Post struct {
	storage PostStorage
	cfg     config.Board
}

func NewPost(storage PostStorage, cfg config.Board) *Post {
	return &Post{storage: storage, cfg: cfg}
}

// clampSize keeps size within (0, MaxPageSize]; zero means the configured default.
func (p *Post) clampSize(size int) int {
	if size <= 0 {
		return p.cfg.PageSize
	}
	if size > p.cfg.MaxPageSize {
		return p.cfg.MaxPageSize
	}
	return size
}

func (p *Post) page(fetch func(offset, limit int) ([]domain.Post, int64, error), page, size int) (domain.PostPage, error) {
	if page < 0 {
		return domain.PostPage{}, errors.BadRequest("Page must not be negative")
	}
	size = p.clampSize(size)
	posts, total, err := fetch(page*size, size)
	if err != nil {
		return domain.PostPage{}, err
	}
	return domain.NewPostPage(posts, page, size, total), nil
}

func (p *Post) List(page, size int) (domain.PostPage, error) {
	return p.page(p.storage.ListPosts, page, size)
}

// Search falls back to List for a blank keyword.
func (p *Post) Search(keyword string, page, size int) (domain.PostPage, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return p.List(page, size)
	}
	result, err := p.page(func(offset, limit int) ([]domain.Post, int64, error) {
		return p.storage.SearchPosts(keyword, offset, limit)
	}, page, size)
	if err != nil {
		return domain.PostPage{}, err
	}
	result.Keyword = keyword
	return result, nil
}

func (p *Post) ByAuthor(user domain.User, page, size int) (domain.PostPage, error) {
	return p.page(func(offset, limit int) ([]domain.Post, int64, error) {
		return p.storage.PostsByAuthor(user.Id, offset, limit)
	}, page, size)
}

// View returns the post and counts the visit.
func (p *Post) View(id domain.PostId) (domain.Post, error) {
	return p.storage.ViewPost(id)
}

func validatedPost(title, content string) (validation.Post, error) {
	post := validation.NormalizePost(validation.Post{Title: title, Content: content})
	if errs := validation.ValidatePost(post); !errs.Empty() {
		return post, errors.BadRequest(errs.Error())
	}
	return post, nil
}

func (p *Post) Create(user domain.User, title, content string) (domain.Post, error) {
	in, err := validatedPost(title, content)
	if err != nil {
		return domain.Post{}, err
	}
	id, err := p.storage.CreatePost(domain.Post{Title: in.Title, Content: in.Content, AuthorId: user.Id})
	if err != nil {
		return domain.Post{}, err
	}
	logger.Log.Info("post created", "post_id", id, "author_id", user.Id)
	return p.storage.Post(id)
}

// Update is allowed for the author only.
func (p *Post) Update(user domain.User, id domain.PostId, title, content string) (domain.Post, error) {
	in, err := validatedPost(title, content)
	if err != nil {
		return domain.Post{}, err
	}
	existing, err := p.storage.Post(id)
	if err != nil {
		return domain.Post{}, err
	}
	if existing.AuthorId != user.Id {
		return domain.Post{}, errors.Forbidden("Only the author can edit this post")
	}
	if err := p.storage.UpdatePost(id, in.Title, in.Content); err != nil {
		return domain.Post{}, err
	}
	return p.storage.Post(id)
}

// Delete is allowed for the author and for admins.
func (p *Post) Delete(user domain.User, id domain.PostId) error {
	existing, err := p.storage.Post(id)
	if err != nil {
		return err
	}
	if existing.AuthorId != user.Id && !user.IsAdmin() {
		return errors.Forbidden("Only the author or an admin can delete this post")
	}
	if err := p.storage.DeletePost(id); err != nil {
		return err
	}
	logger.Log.Info("post deleted", "post_id", id, "by", user.Id)
	return nil
}
