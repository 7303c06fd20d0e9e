package frontend_domain

import (
	"fmt"
	"html/template"

	"github.com/portal-dev/portal/frontend/internal/board"
	"github.com/portal-dev/portal/frontend/internal/boarding"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/validation"
)

type LoginPageData struct {
	Email string
}

// RegisterPageData echoes the form back without the passwords.
type RegisterPageData struct {
	Email  string
	Name   string
	Errors validation.FieldErrors
}

type PostRow struct {
	Number int
	Title  string // truncated for the list
	Post   domain.Post
}

type BoardPageData struct {
	Heading     string
	Rows        []PostRow
	Query       board.Query
	Pagination  board.Pagination
	ResultCount int64
	Mine        bool // the author's own posts rather than the whole board
}

// PageURL links to page index of the same listing.
func (d BoardPageData) PageURL(index int) string {
	if d.Mine {
		if index == 0 {
			return "/board/mine"
		}
		return fmt.Sprintf("/board/mine?page=%d", index)
	}
	return d.Query.WithPage(index).URL()
}

type PostPageData struct {
	Post     domain.Post
	Content  template.HTML
	IsAuthor bool
	BackURL  string
	Keyword  string
}

type PostFormPageData struct {
	Editing bool
	PostID  domain.PostId
	Title   string
	Content string
	Errors  validation.FieldErrors
	Keyword string
}

type BoardingPageData struct {
	Card        boarding.Snapshot
	CanGenerate bool
	Errors      map[string]string
}

func (d BoardingPageData) Drafting() bool { return d.Card.State == boarding.Drafting }
func (d BoardingPageData) Active() bool   { return d.Card.State == boarding.Active }
func (d BoardingPageData) Expired() bool  { return d.Card.State == boarding.Expired }
