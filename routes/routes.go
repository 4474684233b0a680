package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/quick-campaign/app"
	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authorize(app.TokenSecret))

		r.Post("/campaigns/validate", ValidateCampaign(app))
		r.Post("/campaigns", CreateCampaign(app))
		r.Get("/campaigns", ListCampaigns(app))

		r.Route("/campaigns/{urn}", func(r chi.Router) {
			r.With(middlewares.CampaignRole(app, model.Roles...)).Get("/", GetCampaign(app))
			r.With(middlewares.Admin).Delete("/", DeleteCampaign(app))

			r.With(middlewares.CampaignRole(app, model.Supervisor)).Put("/state", UpdateCampaignState(app))
			r.With(middlewares.CampaignRole(app, model.Supervisor)).Put("/roles", AddCampaignRoles(app))

			r.With(middlewares.CampaignRole(app, model.Participant)).Post("/responses", UploadResponses(app))
			r.With(middlewares.CampaignRole(app, model.Supervisor, model.Analyst, model.Participant)).Get("/responses", ListResponses(app))
		})
	})

	return api
}
