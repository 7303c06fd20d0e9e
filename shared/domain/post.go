package domain

import "time"

type Post struct {
	Id          PostId    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	AuthorId    UserId    `json:"-"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail Email     `json:"authorEmail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ViewCount   int64     `json:"viewCount"`
}

// Edited reports whether the post was changed after creation.
func (p Post) Edited() bool {
	return !p.UpdatedAt.Equal(p.CreatedAt)
}

// PostPage is one page of a list or search result. Pages are zero-based.
type PostPage struct {
	Posts         []Post `json:"posts"`
	CurrentPage   int    `json:"currentPage"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
	HasNext       bool   `json:"hasNext"`
	HasPrevious   bool   `json:"hasPrevious"`
	Keyword       string `json:"keyword,omitempty"`
}

// NewPostPage fills the derived paging fields from the total row count.
func NewPostPage(posts []Post, page, size int, total int64) PostPage {
	if posts == nil {
		posts = []Post{}
	}
	totalPages := PageCount(total, size)
	return PostPage{
		Posts:         posts,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalElements: total,
		HasNext:       page+1 < totalPages,
		HasPrevious:   page > 0,
	}
}

// PageCount is ceil(total/size).
func PageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
