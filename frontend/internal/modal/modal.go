// Package modal is the single notification dialog shared by every page. There is only ever
// one modal: showing a new one replaces whatever was there.
package modal

type Kind string

const (
	KindInfo       Kind = "info"
	KindSuccess    Kind = "success"
	KindError      Kind = "error"
	KindWarning    Kind = "warning"
	KindConnection Kind = "connection"
)

const (
	DefaultConfirmText = "OK"
	DefaultCancelText  = "Cancel"
)

// ActionKind names what happens when a confirm dialog is accepted.
type ActionKind string

const (
	ActionNone       ActionKind = ""
	ActionDeletePost ActionKind = "delete_post"
)

// Action is the deferred operation of a confirm dialog. Keyword is the board search that was
// active when the dialog opened, so the list can come back to it afterwards.
type Action struct {
	Kind    ActionKind `json:"kind,omitempty"`
	PostID  int64      `json:"postId,omitempty"`
	Keyword string     `json:"keyword,omitempty"`
}

func (a Action) IsNone() bool {
	return a.Kind == ActionNone
}

func DeletePost(postID int64, keyword string) Action {
	return Action{Kind: ActionDeletePost, PostID: postID, Keyword: keyword}
}

type State struct {
	Open        bool   `json:"open"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Kind        Kind   `json:"kind"`
	ShowConfirm bool   `json:"showConfirm,omitempty"`
	OnConfirm   Action `json:"onConfirm,omitempty"`
	ConfirmText string `json:"confirmText"`
	CancelText  string `json:"cancelText"`
}

type Options struct {
	Title       string
	Message     string
	Kind        Kind
	ShowConfirm bool
	OnConfirm   Action
	ConfirmText string
	CancelText  string
}

type Modal struct {
	state State
}

func New() *Modal {
	return &Modal{}
}

// FromState resumes a modal carried over from a previous request.
func FromState(s State) *Modal {
	return &Modal{state: s}
}

func (m *Modal) State() State {
	return m.state
}

func (m *Modal) IsOpen() bool {
	return m.state.Open
}

func (m *Modal) Show(o Options) {
	if o.Kind == "" {
		o.Kind = KindInfo
	}
	if o.ConfirmText == "" {
		o.ConfirmText = DefaultConfirmText
	}
	if o.CancelText == "" {
		o.CancelText = DefaultCancelText
	}
	action := o.OnConfirm
	if !o.ShowConfirm {
		action = Action{}
	}
	m.state = State{
		Open:        true,
		Title:       o.Title,
		Message:     o.Message,
		Kind:        o.Kind,
		ShowConfirm: o.ShowConfirm,
		OnConfirm:   action,
		ConfirmText: o.ConfirmText,
		CancelText:  o.CancelText,
	}
}

func (m *Modal) Success(title, message string) {
	m.Show(Options{Title: title, Message: message, Kind: KindSuccess})
}

func (m *Modal) Error(title, message string) {
	m.Show(Options{Title: title, Message: message, Kind: KindError})
}

func (m *Modal) Warning(title, message string) {
	m.Show(Options{Title: title, Message: message, Kind: KindWarning})
}

func (m *Modal) Connection(title, message string) {
	m.Show(Options{Title: title, Message: message, Kind: KindConnection})
}

// Confirm opens a two-button warning dialog that runs action when accepted.
func (m *Modal) Confirm(title, message string, action Action) {
	m.Show(Options{
		Title:       title,
		Message:     message,
		Kind:        KindWarning,
		ShowConfirm: true,
		OnConfirm:   action,
	})
}

// Close hides the modal. The text stays until the next Show.
func (m *Modal) Close() {
	m.state.Open = false
}

// ConfirmAction closes the modal and hands back its pending action. ok is false when
// nothing was waiting for confirmation.
func (m *Modal) ConfirmAction() (Action, bool) {
	if !m.state.Open || !m.state.ShowConfirm {
		m.Close()
		return Action{}, false
	}
	action := m.state.OnConfirm
	m.state.OnConfirm = Action{}
	m.Close()
	return action, !action.IsNone()
}
