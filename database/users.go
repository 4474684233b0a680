package database

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// SaveUser creates username, or resets its password and admin flag.
func SaveUser(ctx context.Context, db *sql.DB, username, password string, admin bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO user (username, password_hash, admin) VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = excluded.password_hash,
			admin = excluded.admin`,
		username,
		hash,
		admin,
	)
	return err
}

// CheckPassword fails with ErrUnknownUser, or bcrypt's mismatch error.
func CheckPassword(ctx context.Context, db *sql.DB, username, password string) error {
	var hash []byte
	err := db.
		QueryRowContext(ctx, "SELECT password_hash FROM user WHERE username = ?", username).
		Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownUser
	}
	if err != nil {
		return err
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}

func IsAdmin(ctx context.Context, db *sql.DB, username string) (admin bool, err error) {
	err = db.
		QueryRowContext(ctx, "SELECT admin FROM user WHERE username = ?", username).
		Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrUnknownUser
	}
	return
}
