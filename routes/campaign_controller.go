package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-campaign/app"
	"github.com/mbolis/quick-campaign/campaign"
	"github.com/mbolis/quick-campaign/database"
	"github.com/mbolis/quick-campaign/httpx"
	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/routes/middlewares"
)

const maxBodySize = 8 << 20

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.read_body")
		return nil, false
	}
	return body, true
}

func ValidateCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}

		id, name, err := campaign.Validate(string(body))
		if err != nil {
			httpx.LogDomainError(w, r, "validate_campaign.parse", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"campaign_id": id,
			"name":        name,
		})
	}
}

func CreateCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}

		username := middlewares.Username(r)
		opts := []campaign.Option{
			campaign.WithUserRoles(username, model.Supervisor, model.Author),
		}
		query := r.URL.Query()
		if s := query.Get("running_state"); s != "" {
			state, err := model.ParseRunningState(s)
			if err != nil {
				httpx.LogDomainError(w, r, "create_campaign.running_state", err)
				return
			}
			opts = append(opts, campaign.WithRunningState(state))
		}
		if s := query.Get("privacy_state"); s != "" {
			state, err := model.ParsePrivacyState(s)
			if err != nil {
				httpx.LogDomainError(w, r, "create_campaign.privacy_state", err)
				return
			}
			opts = append(opts, campaign.WithPrivacyState(state))
		}
		if description := query.Get("description"); description != "" {
			opts = append(opts, campaign.WithDescription(description))
		}

		c, err := campaign.Parse(string(body), opts...)
		if err != nil {
			httpx.LogDomainError(w, r, "create_campaign.parse", err)
			return
		}

		_, err = database.InsertCampaign(r.Context(), app.DB, c)
		if errors.Is(err, database.ErrConflict) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "create_campaign.conflict", "campaign %s already exists", c.ID())
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_campaign", err)
			return
		}
		log.WithFields(map[string]any{"campaign": c.ID(), "author": username}).Info("campaign created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"campaign_id": c.ID(),
		})
	}
}

func ListCampaigns(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := middlewares.Username(r)
		if middlewares.IsAdmin(r) {
			username = ""
		}

		campaigns, err := database.ListCampaigns(r.Context(), app.DB, username)
		if err != nil {
			httpx.LogInternalError(w, "db.list_campaigns", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"campaigns": campaigns,
		})
	}
}

// loadCampaign rebuilds the campaign loaded by middlewares.CampaignRole out
// of its stored definition.
func loadCampaign(app app.App, r *http.Request) (*model.Campaign, error) {
	rec := middlewares.Campaign(r)
	classes, err := database.CampaignClasses(r.Context(), app.DB, rec.ID)
	if err != nil {
		return nil, err
	}

	opts := []campaign.Option{
		campaign.WithDescription(rec.Description),
		campaign.WithRunningState(rec.RunningState),
		campaign.WithPrivacyState(rec.PrivacyState),
		campaign.WithCreationTime(rec.CreatedAt),
		campaign.WithClasses(classes...),
	}
	for username, roles := range middlewares.CampaignRoles(r) {
		opts = append(opts, campaign.WithUserRoles(username, roles...))
	}
	return campaign.Parse(rec.XML, opts...)
}

func GetCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := loadCampaign(app, r)
		if err != nil {
			httpx.LogInternalError(w, "get_campaign.load", err)
			return
		}

		out := model.LongCampaignOutput
		if withXML, _ := strconv.ParseBool(r.URL.Query().Get("xml")); withXML {
			out.WithXML = true
		}
		render.JSON(w, r, c.ToJSON(out))
	}
}

type stateRequest struct {
	RunningState string `json:"running_state"`
	PrivacyState string `json:"privacy_state"`
}

func UpdateCampaignState(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := stateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		var running *model.RunningState
		if req.RunningState != "" {
			state, err := model.ParseRunningState(req.RunningState)
			if err != nil {
				httpx.LogDomainError(w, r, "update_campaign_state.running_state", err)
				return
			}
			running = &state
		}
		var privacy *model.PrivacyState
		if req.PrivacyState != "" {
			state, err := model.ParsePrivacyState(req.PrivacyState)
			if err != nil {
				httpx.LogDomainError(w, r, "update_campaign_state.privacy_state", err)
				return
			}
			privacy = &state
		}

		urn := middlewares.Campaign(r).URN
		err = database.UpdateCampaignState(r.Context(), app.DB, urn, running, privacy)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "update_campaign_state", urn)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_campaign_state", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type rolesRequest struct {
	Roles []struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"roles"`
}

func AddCampaignRoles(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := rolesRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		grants := make([]model.RoleGrant, 0, len(req.Roles))
		for _, g := range req.Roles {
			role, err := model.ParseRole(g.Role)
			if err != nil {
				httpx.LogDomainError(w, r, "add_campaign_roles.role", err)
				return
			}
			grants = append(grants, model.RoleGrant{Username: g.Username, Role: role})
		}

		err = database.AddRoles(r.Context(), app.DB, middlewares.Campaign(r).ID, grants)
		if errors.Is(err, database.ErrUnknownUser) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "add_campaign_roles.user", "unknown user")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.add_campaign_roles", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteCampaign(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		urn := chi.URLParam(r, "urn")
		err := database.DeleteCampaign(r.Context(), app.DB, urn)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, "delete_campaign", urn)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_campaign", err)
			return
		}
		log.WithFields(map[string]any{"campaign": urn, "admin": middlewares.Username(r)}).Info("campaign deleted")

		w.WriteHeader(http.StatusNoContent)
	}
}
