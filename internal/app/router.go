package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/retriever-essentials/pantry-web/internal/auth"
	"github.com/retriever-essentials/pantry-web/internal/cart"
	"github.com/retriever-essentials/pantry-web/internal/catalog"
	"github.com/retriever-essentials/pantry-web/internal/checkouts"
	"github.com/retriever-essentials/pantry-web/internal/guard"
	"github.com/retriever-essentials/pantry-web/internal/inventorylog"
	"github.com/retriever-essentials/pantry-web/internal/observability"
	"github.com/retriever-essentials/pantry-web/internal/procurement"
	"github.com/retriever-essentials/pantry-web/internal/session"
	"github.com/retriever-essentials/pantry-web/internal/shared"
	"github.com/retriever-essentials/pantry-web/internal/token"
	"github.com/retriever-essentials/pantry-web/internal/users"
	"github.com/retriever-essentials/pantry-web/internal/view"
	"github.com/retriever-essentials/pantry-web/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	Templates   *view.Engine
	Store       *session.Store
	CSRFManager *shared.CSRFManager
	Guard       guard.Middleware

	AuthHandler         *auth.Handler
	CatalogHandler      *catalog.Handler
	CartHandler         *cart.Handler
	CheckoutsHandler    *checkouts.Handler
	ProcurementHandler  *procurement.Handler
	UsersHandler        *users.Handler
	InventoryLogHandler *inventorylog.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the storefront.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		Store:       params.Store,
		CSRFManager: params.CSRFManager,
		Metrics:     params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", staticPage(params, "pages/home.html", "Retriever Essentials"))
	r.Get("/about", staticPage(params, "pages/about.html", "About Us"))
	r.Get("/faq", staticPage(params, "pages/faq.html", "FAQ"))
	r.Get("/location", staticPage(params, "pages/location.html", "Hours & Location"))

	params.AuthHandler.MountPublic(r)
	params.CatalogHandler.MountPublic(r)
	params.CartHandler.Mount(r)

	staff := params.Guard.Require(token.RoleAdmin, token.RoleAuthority)
	adminOnly := params.Guard.Require(token.RoleAdmin)

	r.Route("/dashboard", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(staff)
			params.AuthHandler.MountDashboard(r)
			params.UsersHandler.MountAccount(r)
		})
		// The disable flow must stay reachable while the kiosk lockout is
		// redirecting every role-guarded route to /unauthorized.
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireAuthenticated())
			params.AuthHandler.MountSelfCheckoutDisable(r)
		})
	})

	r.Route("/stats", func(r chi.Router) {
		r.Use(staff)
		params.CheckoutsHandler.MountStats(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Use(staff)
			params.CatalogHandler.MountAdmin(r)
		})
		r.Route("/inventory-logs", func(r chi.Router) {
			r.Use(staff)
			params.InventoryLogHandler.Mount(r)
		})
		r.Route("/vendors", func(r chi.Router) {
			r.Use(adminOnly)
			params.ProcurementHandler.MountVendors(r)
		})
		r.Route("/purchases", func(r chi.Router) {
			r.Use(adminOnly)
			params.ProcurementHandler.MountPurchases(r)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			params.UsersHandler.MountAdmin(r)
		})
		r.Route("/checkouts", func(r chi.Router) {
			r.Use(adminOnly)
			params.CheckoutsHandler.MountAdmin(r)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func staticPage(params RouterParams, page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		csrfToken, _ := params.CSRFManager.EnsureToken(params.Store)
		data := view.TemplateData{
			Title:       title,
			CSRFToken:   csrfToken,
			Flash:       params.Store.PopFlash(),
			CurrentPath: r.URL.Path,
			Session:     params.Store.Snapshot(),
		}
		if err := params.Templates.Render(w, page, data); err != nil {
			params.Logger.Error("render static page", slog.String("page", page), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
