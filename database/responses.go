package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/goccy/go-json"

	"github.com/mbolis/quick-campaign/model"
)

// InsertResponses stores an upload, all of it or nothing. A survey key
// that is already stored fails the upload with ErrConflict.
func InsertResponses(ctx context.Context, db *sql.DB, campaignID int, responses []*model.SurveyResponse, uploadedAt time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO survey_response (
			survey_key, campaign_id, survey_id, username, client,
			time, timezone, location_status, privacy_state, uploaded_at, data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range responses {
		data, err := json.Marshal(r.ToJSON(false))
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			r.SurveyKey().String(),
			campaignID,
			r.Survey().ID(),
			r.Username(),
			r.Client(),
			r.Time(),
			r.Timezone().String(),
			r.LocationStatus(),
			r.PrivacyState(),
			uploadedAt.UTC(),
			string(data),
		)
		if err != nil {
			return constraintError(err)
		}
	}

	return tx.Commit()
}

// ListResponses lists the stored responses of a campaign, restricted to
// one user unless username is empty.
func ListResponses(ctx context.Context, db *sql.DB, campaignID int, campaignURN, username string) ([]model.SubmissionRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			id, survey_key, survey_id, username, client,
			time, timezone, location_status, privacy_state, uploaded_at, data
		FROM survey_response
		WHERE campaign_id = ?
			AND (? = '' OR username = ?)
		ORDER BY time, id`,
		campaignID,
		username,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.SubmissionRecord{}
	for rows.Next() {
		rec := model.SubmissionRecord{CampaignURN: campaignURN}
		var data string
		err = rows.Scan(
			&rec.ID, &rec.SurveyKey, &rec.SurveyID, &rec.Username, &rec.Client,
			&rec.Time, &rec.Timezone, &rec.LocationStatus, &rec.PrivacyState, &rec.UploadedAt, &data,
		)
		if err != nil {
			return nil, err
		}
		if err = json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
