package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portal-dev/portal/frontend/internal/handler"
	"github.com/portal-dev/portal/frontend/internal/middleware"
	"github.com/portal-dev/portal/frontend/internal/setup"
	mw "github.com/portal-dev/portal/shared/middleware"
	"github.com/portal-dev/portal/shared/middleware/metrics"
)

func SetupRouter(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()
	secure := deps.Public.Frontend.SecureCookies
	h := deps.Handler

	r.Use(metrics.Middleware("frontend"))
	r.Use(mw.SecurityHeadersWithCSP(secure, mw.FrontendCSP))
	r.Use(middleware.BrowserID(secure))
	r.Use(middleware.LoadSession(secure))
	r.Use(middleware.GenerateCSRFToken(secure))
	r.Use(middleware.ValidateCSRFToken())

	// Public routes
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/favicon.ico", handler.FaviconHandler(deps.Public.Frontend.StaticDir))
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(deps.Public.Frontend.StaticDir))),
	)
	r.HandleFunc("/", h.IndexGetHandler).Methods("GET")
	r.HandleFunc("/login", h.LoginGetHandler).Methods("GET")
	r.HandleFunc("/login", h.LoginPostHandler).Methods("POST")
	r.HandleFunc("/register", h.RegisterGetHandler).Methods("GET")
	r.HandleFunc("/register", h.RegisterPostHandler).Methods("POST")
	r.HandleFunc("/logout", h.LogoutHandler).Methods("POST")
	r.HandleFunc("/ping", h.PingHandler).Methods("POST")
	r.HandleFunc("/modal/confirm", h.ModalConfirmHandler).Methods("POST")
	r.HandleFunc("/modal/close", h.ModalCloseHandler).Methods("POST")

	// Session-required routes
	authRouter := r.NewRoute().Subrouter()
	authRouter.Use(middleware.RequireSession(secure))

	authRouter.HandleFunc("/board", h.BoardGetHandler).Methods("GET")
	authRouter.HandleFunc("/board/mine", h.MyPostsGetHandler).Methods("GET")
	authRouter.HandleFunc("/board/new", h.NewPostGetHandler).Methods("GET")
	authRouter.HandleFunc("/board/new", h.NewPostPostHandler).Methods("POST")
	authRouter.HandleFunc("/board/{id:[0-9]+}", h.PostGetHandler).Methods("GET")
	authRouter.HandleFunc("/board/{id:[0-9]+}/edit", h.EditPostGetHandler).Methods("GET")
	authRouter.HandleFunc("/board/{id:[0-9]+}/edit", h.EditPostPostHandler).Methods("POST")
	authRouter.HandleFunc("/board/{id:[0-9]+}/delete", h.DeletePostPostHandler).Methods("POST")

	boardingRouter := authRouter.PathPrefix("/boarding").Subrouter()
	boardingRouter.Use(mw.NoStore)
	boardingRouter.HandleFunc("", h.BoardingGetHandler).Methods("GET")
	boardingRouter.HandleFunc("/generate", h.BoardingGeneratePostHandler).Methods("POST")
	boardingRouter.HandleFunc("/refresh", h.BoardingRefreshPostHandler).Methods("POST")
	boardingRouter.HandleFunc("/reset", h.BoardingResetPostHandler).Methods("POST")
	boardingRouter.HandleFunc("/qr.png", h.BoardingSymbolHandler).Methods("GET")
	boardingRouter.HandleFunc("/download", h.BoardingDownloadHandler).Methods("GET")
	boardingRouter.HandleFunc("/ws", h.BoardingSocketHandler).Methods("GET")

	return r
}
