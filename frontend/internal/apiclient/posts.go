package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/domain"
)

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

func (c *APIClient) ListPosts(ctx context.Context, tokens TokenSource, page, size int) (domain.PostPage, error) {
	var out domain.PostPage
	err := c.call(ctx, tokens, "GET", "/posts?"+pageQuery(page, size).Encode(), nil, &out)
	return out, err
}

func (c *APIClient) SearchPosts(ctx context.Context, tokens TokenSource, keyword string, page, size int) (domain.PostPage, error) {
	q := pageQuery(page, size)
	q.Set("keyword", keyword)
	var out domain.PostPage
	err := c.call(ctx, tokens, "GET", "/posts/search?"+q.Encode(), nil, &out)
	out.Keyword = keyword
	return out, err
}

func (c *APIClient) MyPosts(ctx context.Context, tokens TokenSource, page, size int) (domain.PostPage, error) {
	var out domain.PostPage
	err := c.call(ctx, tokens, "GET", "/posts/my?"+pageQuery(page, size).Encode(), nil, &out)
	return out, err
}

func (c *APIClient) GetPost(ctx context.Context, tokens TokenSource, id domain.PostId) (domain.Post, error) {
	var out domain.Post
	err := c.call(ctx, tokens, "GET", fmt.Sprintf("/posts/%d", id), nil, &out)
	return out, err
}

func (c *APIClient) CreatePost(ctx context.Context, tokens TokenSource, title, content string) (domain.Post, error) {
	var out domain.Post
	err := c.call(ctx, tokens, "POST", "/posts", api.PostRequest{Title: title, Content: content}, &out)
	return out, err
}

func (c *APIClient) UpdatePost(ctx context.Context, tokens TokenSource, id domain.PostId, title, content string) (domain.Post, error) {
	var out domain.Post
	err := c.call(ctx, tokens, "PUT", fmt.Sprintf("/posts/%d", id), api.PostRequest{Title: title, Content: content}, &out)
	return out, err
}

func (c *APIClient) DeletePost(ctx context.Context, tokens TokenSource, id domain.PostId) error {
	return c.call(ctx, tokens, "DELETE", fmt.Sprintf("/posts/%d", id), nil, nil)
}
