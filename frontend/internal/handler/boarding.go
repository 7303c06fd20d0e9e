package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/portal-dev/portal/frontend/internal/boarding"
	frontend_domain "github.com/portal-dev/portal/frontend/internal/domain"
	"github.com/portal-dev/portal/frontend/internal/middleware"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/shared/logger"
)

const (
	boardingTab = "boarding"
	socketWrite = 5 * time.Second
)

// cardKey ties a card to one browser and one login. A new login, even on the same
// browser, starts from an empty draft.
func cardKey(r *http.Request) string {
	key := middleware.BrowserIDFromContext(r)
	if sess := middleware.SessionFromContext(r); sess != nil {
		key += "|" + sess.Email + "|" + sess.Token
	}
	return key
}

func (h *Handler) card(r *http.Request) *boarding.Card {
	return h.Cards.Card(cardKey(r))
}

func (h *Handler) BoardingGetHandler(w http.ResponseWriter, r *http.Request) {
	card := h.card(r)
	h.renderTemplate(w, r, "boarding.html", boardingTab, frontend_domain.BoardingPageData{
		Card:        card.Tick(),
		CanGenerate: card.CanGenerate(),
	})
}

func (h *Handler) BoardingGeneratePostHandler(w http.ResponseWriter, r *http.Request) {
	// values are encoded as entered
	d := boarding.Draft{
		EmployeeID:   r.FormValue("employeeId"),
		EmployeeName: r.FormValue("employeeName"),
		Department:   r.FormValue("department"),
		BusRoute:     r.FormValue("busRoute"),
		BoardingTime: r.FormValue("boardingTime"),
		ValidDate:    r.FormValue("validDate"),
	}

	card := h.card(r)
	if err := card.SetDraft(d); err != nil {
		m := modal.New()
		m.Warning("Card already issued", "Reset the card before entering new details.")
		h.redirectWithModal(w, r, "/boarding", m)
		return
	}

	if _, err := card.Generate(); err != nil {
		if errors.Is(err, boarding.ErrIncompleteDraft) {
			h.renderTemplate(w, r, "boarding.html", boardingTab, frontend_domain.BoardingPageData{
				Card:   card.Tick(),
				Errors: d.Problems(),
			})
			return
		}
		logger.Log.Error("generating boarding card", "error", err)
		m := modal.New()
		m.Error("Card error", "The boarding code could not be generated.")
		h.redirectWithModal(w, r, "/boarding", m)
		return
	}

	http.Redirect(w, r, "/boarding", http.StatusSeeOther)
}

func (h *Handler) BoardingRefreshPostHandler(w http.ResponseWriter, r *http.Request) {
	_, err := h.card(r).Refresh(r.Context())
	switch {
	case err == nil, errors.Is(err, boarding.ErrNotExpired):
		http.Redirect(w, r, "/boarding", http.StatusSeeOther)
	case errors.Is(err, boarding.ErrRefreshInFlight):
		m := modal.New()
		m.Warning("Refresh in progress", "A new code is already being issued.")
		h.redirectWithModal(w, r, "/boarding", m)
	case errors.Is(err, context.Canceled):
		logger.Log.Debug("boarding refresh abandoned")
	default:
		logger.Log.Error("refreshing boarding card", "error", err)
		m := modal.New()
		m.Error("Card error", "The boarding code could not be refreshed.")
		h.redirectWithModal(w, r, "/boarding", m)
	}
}

func (h *Handler) BoardingResetPostHandler(w http.ResponseWriter, r *http.Request) {
	h.card(r).Reset()
	http.Redirect(w, r, "/boarding", http.StatusSeeOther)
}

// BoardingSymbolHandler serves the QR symbol of the code on display.
func (h *Handler) BoardingSymbolHandler(w http.ResponseWriter, r *http.Request) {
	s := h.card(r).Tick()
	if s.State != boarding.Active {
		http.NotFound(w, r)
		return
	}

	data, err := boarding.SymbolPNG(s.Token.Payload, boarding.SymbolSize)
	if err != nil {
		logger.Log.Error("rendering boarding symbol", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (h *Handler) BoardingDownloadHandler(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.card(r).Download()
	if err != nil {
		m := modal.New()
		switch {
		case errors.Is(err, boarding.ErrExpired):
			m.Error("Code expired", "This code has expired. Refresh it before downloading.")
		case errors.Is(err, boarding.ErrNotGenerated):
			m.Warning("No code yet", "Generate a boarding code first.")
		default:
			logger.Log.Error("rendering boarding card", "error", err)
			m.Error("Card error", "The boarding card could not be rendered.")
		}
		h.redirectWithModal(w, r, "/boarding", m)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

type countdownMessage struct {
	State     string `json:"state"`
	Remaining int    `json:"remaining"` // whole seconds
	Text      string `json:"text"`
	Warning   bool   `json:"warning"`
}

func newCountdownMessage(s boarding.Snapshot) countdownMessage {
	return countdownMessage{
		State:     s.State.String(),
		Remaining: int(s.Remaining.Seconds()),
		Text:      s.RemainingText(),
		Warning:   s.Warning,
	}
}

// BoardingSocketHandler streams the countdown once a second until the code expires or the
// page goes away.
func (h *Handler) BoardingSocketHandler(w http.ResponseWriter, r *http.Request) {
	card := h.card(r)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Debug("failed to upgrade boarding socket", "error", err)
		return
	}
	defer ws.Close()
	// the server read timeout must not end a long countdown
	_ = ws.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the page never sends anything, reading only notices the close
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	card.Run(ctx, h.Public.Boarding.TickInterval, func(s boarding.Snapshot) {
		_ = ws.SetWriteDeadline(time.Now().Add(socketWrite))
		if err := ws.WriteJSON(newCountdownMessage(s)); err != nil {
			logger.Log.Debug("boarding socket write failed", "error", err)
			cancel()
		}
	})

	if ctx.Err() == nil {
		_ = ws.SetWriteDeadline(time.Now().Add(socketWrite))
		_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
