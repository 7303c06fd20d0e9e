// Package board holds the list and detail view rules that don't depend on HTTP.
package board

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/portal-dev/portal/shared/domain"
)

const (
	DefaultPageSize   = 10
	DefaultPreviewLen = 80
	DefaultButtons    = 5
	ellipsis          = "..."
)

type PageButton struct {
	Index  int // zero-based page
	Label  int // one-based, what the user sees
	Active bool
}

type Pagination struct {
	Visible bool
	Current int
	Prev    int
	Next    int
	HasPrev bool
	HasNext bool
	Buttons []PageButton
}

// Paginate lays out at most maxButtons page buttons starting two pages before current.
// The window never shifts left near the last page, so fewer buttons may be shown there.
func Paginate(current, total, maxButtons int) Pagination {
	p := Pagination{Current: current}
	if total <= 1 {
		return p
	}
	if maxButtons <= 0 {
		maxButtons = DefaultButtons
	}

	p.Visible = true
	p.HasPrev = current > 0
	p.HasNext = current < total-1
	p.Prev = max(0, current-1)
	p.Next = min(total-1, current+1)

	start := max(0, current-2)
	for i := 0; i < min(maxButtons, total); i++ {
		idx := start + i
		if idx >= total {
			break
		}
		p.Buttons = append(p.Buttons, PageButton{Index: idx, Label: idx + 1, Active: idx == current})
	}
	return p
}

// IsAuthor is an exact email match. Edit and delete are offered only to the author.
func IsAuthor(post domain.Post, sess domain.Session) bool {
	return sess.Email != "" && post.AuthorEmail == sess.Email
}

// RowNumber is the running number of a post across pages.
func RowNumber(page, size, index int) int {
	return page*size + index + 1
}

// Truncate shortens s to n characters and marks the cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + ellipsis
}

// Query is the list view position carried in the URL.
type Query struct {
	Page    int
	Keyword string
}

// ParseQuery reads page and keyword; junk pages fall back to 0.
func ParseQuery(v url.Values) Query {
	q := Query{Keyword: strings.TrimSpace(v.Get("keyword"))}
	if page, err := strconv.Atoi(v.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	return q
}

func (q Query) Searching() bool {
	return q.Keyword != ""
}

// URL is the list page link for q.
func (q Query) URL() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if len(v) == 0 {
		return "/board"
	}
	return "/board?" + v.Encode()
}

// WithPage keeps the keyword and moves to page.
func (q Query) WithPage(page int) Query {
	return Query{Page: page, Keyword: q.Keyword}
}
