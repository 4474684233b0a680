package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-campaign/app"
	"github.com/mbolis/quick-campaign/database"
	"github.com/mbolis/quick-campaign/httpx"
	"github.com/mbolis/quick-campaign/log"
	"github.com/mbolis/quick-campaign/model"
	"github.com/mbolis/quick-campaign/routes/middlewares"
	"github.com/mbolis/quick-campaign/submission"
)

type uploadCheck struct {
	start  bool
	key    string
	result chan<- bool
}

// uploadGuard lets one upload per user and campaign run at a time. The
// returned channel is served by a goroutine owning the in-flight set.
func uploadGuard() chan<- uploadCheck {
	checks := make(chan uploadCheck)
	go func() {
		inFlight := make(map[string]bool)

		for check := range checks {
			if check.start {
				check.result <- inFlight[check.key]
				inFlight[check.key] = true
			} else {
				delete(inFlight, check.key)
			}
		}
	}()
	return checks
}

func UploadResponses(app app.App) http.HandlerFunc {
	guard := uploadGuard()

	return func(w http.ResponseWriter, r *http.Request) {
		client := r.URL.Query().Get("client")
		if client == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "upload_responses.client", "missing client")
			return
		}

		rec := middlewares.Campaign(r)
		if rec.RunningState != model.Running {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "upload_responses.stopped", "campaign %s is not running", rec.URN)
			return
		}

		body, ok := readBody(w, r)
		if !ok {
			return
		}

		c, err := loadCampaign(app, r)
		if err != nil {
			httpx.LogInternalError(w, "upload_responses.load", err)
			return
		}

		username := middlewares.Username(r)
		key := rec.URN + "\x00" + username
		busy := make(chan bool)
		guard <- uploadCheck{true, key, busy}
		if <-busy {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "upload_responses.in_flight", "an upload is already running")
			return
		}
		defer func() { guard <- uploadCheck{false, key, nil} }()

		responses, err := submission.ReconcileUpload(c, username, client, body)
		if err != nil {
			httpx.LogDomainError(w, r, "upload_responses.reconcile", err)
			return
		}

		err = database.InsertResponses(r.Context(), app.DB, rec.ID, responses, time.Now())
		if errors.Is(err, database.ErrConflict) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "upload_responses.conflict", "survey response already uploaded")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_responses", err)
			return
		}

		keys := make([]string, len(responses))
		for i, sr := range responses {
			keys[i] = sr.SurveyKey().String()
		}
		log.WithFields(map[string]any{"campaign": rec.URN, "username": username, "count": len(keys)}).Info("survey responses uploaded")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"survey_keys": keys,
		})
	}
}

// ListResponses lists the stored responses of a campaign. Participants
// only see their own.
func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := middlewares.Campaign(r)

		username := ""
		if !middlewares.IsAdmin(r) && !middlewares.HasRole(r, model.Supervisor) && !middlewares.HasRole(r, model.Analyst) {
			username = middlewares.Username(r)
		}

		responses, err := database.ListResponses(r.Context(), app.DB, rec.ID, rec.URN, username)
		if err != nil {
			httpx.LogInternalError(w, "db.list_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}
