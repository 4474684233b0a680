package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mbolis/quick-campaign/model"
)

// InsertCampaign stores a validated campaign with its roles and classes.
// It fails with ErrConflict when the URN is taken, ErrUnknownUser when a
// role is granted to a user that does not exist.
func InsertCampaign(ctx context.Context, db *sql.DB, c *model.Campaign) (id int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO campaign (urn, name, description, xml, running_state, privacy_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		c.ID(),
		c.Name(),
		c.Description(),
		c.XML(),
		c.RunningState(),
		c.PrivacyState(),
		c.CreatedAt().UTC(),
	).Scan(&id)
	if err != nil {
		err = constraintError(err)
		return
	}

	var grants []model.RoleGrant
	for _, role := range model.Roles {
		for _, username := range c.Users(role) {
			grants = append(grants, model.RoleGrant{Username: username, Role: role})
		}
	}
	if err = addRoles(ctx, tx, id, grants); err != nil {
		return
	}

	for _, class := range c.Classes() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO campaign_class (campaign_id, class_urn) VALUES (?, ?)
			ON CONFLICT DO NOTHING`,
			id,
			class,
		)
		if err != nil {
			return
		}
	}

	err = tx.Commit()
	return
}

func GetCampaign(ctx context.Context, db *sql.DB, urn string) (rec model.CampaignRecord, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT id, urn, name, description, xml, running_state, privacy_state, created_at
		FROM campaign
		WHERE urn = ?`,
		urn,
	).Scan(
		&rec.ID, &rec.URN, &rec.Name, &rec.Description, &rec.XML,
		&rec.RunningState, &rec.PrivacyState, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return
}

// ListCampaigns lists every campaign when username is empty, otherwise the
// campaigns where username holds any role.
func ListCampaigns(ctx context.Context, db *sql.DB, username string) ([]model.CampaignRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.urn, c.name, c.description, c.running_state, c.privacy_state, c.created_at
		FROM campaign c
		WHERE ? = ''
			OR EXISTS (
				SELECT 1 FROM user_role_campaign r
				WHERE r.campaign_id = c.id
					AND r.username = ?
			)
		ORDER BY c.urn`,
		username,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.CampaignRecord{}
	for rows.Next() {
		var rec model.CampaignRecord
		err = rows.Scan(&rec.ID, &rec.URN, &rec.Name, &rec.Description, &rec.RunningState, &rec.PrivacyState, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, rec)
	}
	return campaigns, rows.Err()
}

// CampaignRoles maps the users of campaign id to their roles.
func CampaignRoles(ctx context.Context, db *sql.DB, id int) (map[string][]model.Role, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT username, role
		FROM user_role_campaign
		WHERE campaign_id = ?
		ORDER BY username, role`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := map[string][]model.Role{}
	for rows.Next() {
		var username string
		var role model.Role
		if err = rows.Scan(&username, &role); err != nil {
			return nil, err
		}
		roles[username] = append(roles[username], role)
	}
	return roles, rows.Err()
}

func CampaignClasses(ctx context.Context, db *sql.DB, id int) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT class_urn FROM campaign_class
		WHERE campaign_id = ?
		ORDER BY class_urn`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err = rows.Scan(&class); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// UpdateCampaignState changes the states that are set, leaving the
// others as they are.
func UpdateCampaignState(ctx context.Context, db *sql.DB, urn string, running *model.RunningState, privacy *model.PrivacyState) error {
	res, err := db.ExecContext(ctx, `
		UPDATE campaign
		SET
			running_state = COALESCE(?, running_state),
			privacy_state = COALESCE(?, privacy_state)
		WHERE urn = ?`,
		running,
		privacy,
		urn,
	)
	if err != nil {
		return err
	}
	return affected(res)
}

func AddRoles(ctx context.Context, db *sql.DB, id int, grants []model.RoleGrant) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = addRoles(ctx, tx, id, grants); err != nil {
		return err
	}
	return tx.Commit()
}

func addRoles(ctx context.Context, tx *sql.Tx, id int, grants []model.RoleGrant) error {
	if len(grants) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO user_role_campaign (campaign_id, username, role) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range grants {
		if _, err = stmt.ExecContext(ctx, id, g.Username, g.Role); err != nil {
			return constraintError(err)
		}
	}
	return nil
}

// DeleteCampaign removes a campaign with its roles, classes and responses.
func DeleteCampaign(ctx context.Context, db *sql.DB, urn string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM campaign WHERE urn = ?", urn)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}
