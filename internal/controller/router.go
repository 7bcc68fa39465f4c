package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/callsys/callboard/internal/service/auth"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/ws", c.serveWS)
	r.Method(http.MethodGet, "/metrics", c.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", c.login)
			r.Post("/logout", c.logout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(c.authMw(auth.ActionOperateBoard))

			r.Post("/number/change", c.changeNumber)
			r.Post("/number/set", c.setNumber)

			r.Post("/passed/add", c.addPassed)
			r.Post("/passed/remove", c.removePassed)
			r.Post("/passed/clear", c.clearPassed)

			r.Post("/featured/add", c.addFeatured)
			r.Post("/featured/remove", c.removeFeatured)
			r.Post("/featured/remove-index", c.removeFeaturedByIndex)
			r.Post("/featured/clear", c.clearFeatured)

			r.Post("/settings/sound", c.setSoundEnabled)
			r.Post("/settings/public", c.setPublic)

			r.Post("/logs/clear", c.clearAdminLogs)
			r.Post("/system/reset", c.resetAll)
		})

		r.Route("/superadmin", func(r chi.Router) {
			r.Route("/users", func(r chi.Router) {
				r.Use(c.authMw(auth.ActionManageUsers))

				r.Post("/list", c.listUsers)
				r.Post("/create", c.createUser)
				r.Post("/delete", c.deleteUser)
				r.Post("/update-password", c.updatePassword)
				r.Post("/update-role", c.updateRole)
			})

			r.Route("/layout", func(r chi.Router) {
				r.Use(c.authMw(auth.ActionManageLayout))

				r.Post("/load", c.loadLayout)
				r.Post("/save", c.saveLayout)
			})
		})
	})

	return r
}
