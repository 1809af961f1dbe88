package api

import (
	"net/http"

	"github.com/flockrhq/flockr/internal/auth"
	"github.com/flockrhq/flockr/internal/channels"
	"github.com/flockrhq/flockr/internal/messages"
	"github.com/flockrhq/flockr/internal/metrics"
	"github.com/flockrhq/flockr/internal/ratelimit"
	"github.com/flockrhq/flockr/internal/standup"
	"github.com/flockrhq/flockr/internal/store"
	"github.com/flockrhq/flockr/internal/users"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Store          *store.Store
	Auth           *auth.Service
	Channels       *channels.Service
	Messages       *messages.Service
	Users          *users.Service
	Standup        *standup.Service
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	Notifier       ResetCodeNotifier
	RateLimiting   bool
	AllowedOrigins []string
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	r.Use(slogRequestLogger)
	r.Use(metricsMiddleware(deps.Metrics))
	if deps.RateLimiting && deps.Limiter != nil {
		r.Use(ratelimit.Middleware(deps.Limiter, deps.Metrics.IncRateLimitRejection))
	}

	// Handlers.
	notifier := deps.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	authH := newAuthHandler(deps.Auth, notifier, deps.Metrics)
	chanH := newChannelHandler(deps.Channels, deps.Metrics)
	msgH := newMessageHandler(deps.Messages, deps.Metrics)
	userH := newUserHandler(deps.Users)
	standupH := newStandupHandler(deps.Standup, deps.Metrics)

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus exposition plus a human-oriented JSON rollup.
	r.Get("/metrics", promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/metrics/summary", deps.Metrics.SummaryHandler())

	// Authentication.
	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)
	r.Post("/auth/logout", authH.Logout)
	r.Post("/auth/passwordreset/request", authH.ResetRequest)
	r.Post("/auth/passwordreset/reset", authH.ResetComplete)

	// Channel collection.
	r.Post("/channels/create", chanH.Create)
	r.Get("/channels/list", chanH.List)
	r.Get("/channels/listall", chanH.ListAll)

	// Single-channel operations.
	r.Post("/channel/invite", chanH.Invite)
	r.Get("/channel/details", chanH.Details)
	r.Get("/channel/messages", chanH.Messages)
	r.Post("/channel/leave", chanH.Leave)
	r.Post("/channel/join", chanH.Join)
	r.Post("/channel/addowner", chanH.AddOwner)
	r.Post("/channel/removeowner", chanH.RemoveOwner)

	// Messages.
	r.Post("/message/send", msgH.Send)
	r.Post("/message/sendlater", msgH.SendLater)
	r.Put("/message/edit", msgH.Edit)
	r.Delete("/message/remove", msgH.Remove)
	r.Post("/message/react", msgH.React)
	r.Post("/message/unreact", msgH.Unreact)
	r.Post("/message/pin", msgH.Pin)
	r.Post("/message/unpin", msgH.Unpin)
	r.Get("/search", msgH.Search)

	// Profiles and administration.
	r.Get("/user/profile", userH.Profile)
	r.Put("/user/profile/setname", userH.SetName)
	r.Put("/user/profile/setemail", userH.SetEmail)
	r.Put("/user/profile/sethandle", userH.SetHandle)
	r.Get("/users/all", userH.All)
	r.Post("/admin/userpermission/change", userH.ChangePermission)

	// Standups.
	r.Post("/standup/start", standupH.Start)
	r.Get("/standup/active", standupH.Active)
	r.Post("/standup/send", standupH.Send)

	// Drops all workspace state. Intended for test harnesses.
	r.Delete("/clear", func(w http.ResponseWriter, r *http.Request) {
		deps.Store.Reset()
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	return r
}
