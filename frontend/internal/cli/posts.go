package cli

import (
	"fmt"
	"io"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/board"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/validation"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) postsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Read and write board posts",
	}
	cmd.AddCommand(
		a.listCmd(),
		a.mineCmd(),
		a.showCmd(),
		a.createCmd(),
		a.editCmd(),
		a.deleteCmd(),
	)
	return cmd
}

// boardFailed prints a failed post request. An expired session is cleared first.
func (a *App) boardFailed(cmd *cobra.Command, err error) error {
	if a.expired(cmd, err) {
		return ErrReported
	}
	logger.Log.Debug("post request failed", "error", err)
	m := modal.New()
	board.Notify(m, err)
	show(cmd, m)
	return ErrReported
}

func (a *App) writePage(w io.Writer, page domain.PostPage, q board.Query) {
	if q.Searching() {
		fmt.Fprintf(w, "%d result(s) for %q\n", page.TotalElements, q.Keyword)
	}
	if len(page.Posts) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}

	cfg := a.Public.Board
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NO.\tID\tTITLE\tAUTHOR\tDATE\tVIEWS")
	for i, p := range page.Posts {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%d\n",
			board.RowNumber(page.CurrentPage, cfg.PageSize, i),
			p.Id,
			board.Truncate(p.Title, cfg.TitlePreviewLen),
			p.AuthorName,
			p.CreatedAt.Local().Format(timeLayout),
			p.ViewCount,
		)
	}
	_ = tw.Flush()
	if page.TotalPages > 1 {
		fmt.Fprintf(w, "Page %d of %d\n", page.CurrentPage+1, page.TotalPages)
	}
}

func (a *App) listCmd() *cobra.Command {
	var (
		page    int
		keyword string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			q := board.ParseQuery(url.Values{"keyword": {keyword}}).WithPage(max(page-1, 0))

			tokens := apiclient.FromStore(a.Store)
			size := a.Public.Board.PageSize
			var (
				result domain.PostPage
				err    error
			)
			if q.Searching() {
				result, err = a.API.SearchPosts(cmd.Context(), tokens, q.Keyword, q.Page, size)
			} else {
				result, err = a.API.ListPosts(cmd.Context(), tokens, q.Page, size)
			}
			if err != nil {
				return a.boardFailed(cmd, err)
			}
			a.writePage(cmd.OutOrStdout(), result, q)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "search titles and content")
	return cmd
}

func (a *App) mineCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			q := board.Query{Page: max(page-1, 0)}
			result, err := a.API.MyPosts(cmd.Context(), apiclient.FromStore(a.Store), q.Page, a.Public.Board.PageSize)
			if err != nil {
				return a.boardFailed(cmd, err)
			}
			a.writePage(cmd.OutOrStdout(), result, q)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	return cmd
}

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			post, err := a.API.GetPost(cmd.Context(), apiclient.FromStore(a.Store), id)
			if err != nil {
				return a.boardFailed(cmd, err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "#%d %s\n", post.Id, post.Title)
			fmt.Fprintf(w, "%s, posted %s", post.AuthorName, post.CreatedAt.Local().Format(timeLayout))
			if post.Edited() {
				fmt.Fprintf(w, ", updated %s", post.UpdatedAt.Local().Format(timeLayout))
			}
			fmt.Fprintf(w, ", %d views\n\n%s\n", post.ViewCount, post.Content)
			return nil
		},
	}
}

// postForm validates and normalizes the input. Field errors are printed, not sent.
func postForm(cmd *cobra.Command, title, content string) (validation.Post, error) {
	form := validation.Post{Title: title, Content: content}
	if fe := validation.ValidatePost(form); !fe.Empty() {
		out := cmd.OutOrStdout()
		for _, f := range fe.Fields() {
			fmt.Fprintf(out, "%s: %s\n", f, fe[f])
		}
		return form, ErrReported
	}
	return validation.NormalizePost(form), nil
}

func (a *App) createCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			form, err := postForm(cmd, title, content)
			if err != nil {
				return err
			}
			post, err := a.API.CreatePost(cmd.Context(), apiclient.FromStore(a.Store), form.Title, form.Content)
			if err != nil {
				return a.boardFailed(cmd, err)
			}
			m := modal.New()
			m.Success("Post published", fmt.Sprintf("Your post is now on the board as #%d.", post.Id))
			show(cmd, m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "post title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "post content (Markdown)")
	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change your post; omitted fields keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession(cmd)
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			tokens := apiclient.FromStore(a.Store)
			post, err := a.API.GetPost(cmd.Context(), tokens, id)
			if err != nil {
				return a.boardFailed(cmd, err)
			}
			if !board.IsAuthor(post, sess) {
				m := modal.New()
				m.Error("Not allowed", "Only the author can edit this post.")
				show(cmd, m)
				return ErrReported
			}

			if !cmd.Flags().Changed("title") {
				title = post.Title
			}
			if !cmd.Flags().Changed("content") {
				content = post.Content
			}
			form, err := postForm(cmd, title, content)
			if err != nil {
				return err
			}
			if _, err := a.API.UpdatePost(cmd.Context(), tokens, id, form.Title, form.Content); err != nil {
				return a.boardFailed(cmd, err)
			}
			m := modal.New()
			m.Success("Post updated", "Your changes have been saved.")
			show(cmd, m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new content (Markdown)")
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete your post after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			m := modal.New()
			m.Confirm("Delete post", "Are you sure you want to delete this post?\nThis cannot be undone.", modal.DeletePost(id, ""))
			if !yes {
				show(cmd, m)
				ok, err := a.confirm(cmd, fmt.Sprintf("Delete post #%d? [y/N]: ", id))
				if err != nil {
					return err
				}
				if !ok {
					m.Close()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			action, ok := m.ConfirmAction()
			if !ok || action.Kind != modal.ActionDeletePost {
				return fmt.Errorf("nothing to confirm")
			}
			if err := a.API.DeletePost(cmd.Context(), apiclient.FromStore(a.Store), action.PostID); err != nil {
				return a.boardFailed(cmd, err)
			}
			done := modal.New()
			done.Success("Post deleted", "The post has been deleted.")
			show(cmd, done)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
