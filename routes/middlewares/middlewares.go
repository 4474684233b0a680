package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-campaign/app"
	"github.com/mbolis/quick-campaign/database"
	"github.com/mbolis/quick-campaign/httpx"
	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
)

type contextKey int

const (
	campaignKey contextKey = iota
	rolesKey
)

// Authorize rejects requests without a valid bearer token.
func Authorize(secret string) func(http.Handler) http.Handler {
	return oauth.Authorize(secret, nil)
}

// Admin middleware to check for the 'admin' claim in an OAuth token.
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "admin.forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CampaignRole loads the campaign named by the {urn} URL parameter and lets
// the request through when the caller holds one of roles in it. Admins
// always pass.
func CampaignRole(app app.App, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			urn := chi.URLParam(r, "urn")
			rec, err := database.GetCampaign(r.Context(), app.DB, urn)
			if errors.Is(err, database.ErrNotFound) {
				httpx.LogNotFound(w, "campaign_role.get_campaign", urn)
				return
			}
			if err != nil {
				httpx.LogInternalError(w, "db.get_campaign", err)
				return
			}

			granted, err := database.CampaignRoles(r.Context(), app.DB, rec.ID)
			if err != nil {
				httpx.LogInternalError(w, "db.get_campaign_roles", err)
				return
			}

			if !IsAdmin(r) && !holdsAny(granted[Username(r)], roles) {
				httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "campaign_role.forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), campaignKey, rec)
			ctx = context.WithValue(ctx, rolesKey, granted)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func holdsAny(held, wanted []model.Role) bool {
	for _, h := range held {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}

func claims(r *http.Request) map[string]string {
	c, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	return c
}

// Username is the user the bearer token was issued to.
func Username(r *http.Request) string {
	username, _ := r.Context().Value(oauth.CredentialContext).(string)
	return username
}

func IsAdmin(r *http.Request) bool {
	return claims(r)[httpx.ClaimAdmin] == "true"
}

// Campaign is the campaign loaded by CampaignRole.
func Campaign(r *http.Request) model.CampaignRecord {
	rec, _ := r.Context().Value(campaignKey).(model.CampaignRecord)
	return rec
}

// CampaignRoles are the grants of the campaign loaded by CampaignRole.
func CampaignRoles(r *http.Request) map[string][]model.Role {
	roles, _ := r.Context().Value(rolesKey).(map[string][]model.Role)
	return roles
}

// HasRole reports whether the caller holds role in the loaded campaign.
func HasRole(r *http.Request, role model.Role) bool {
	return holdsAny(CampaignRoles(r)[Username(r)], []model.Role{role})
}
