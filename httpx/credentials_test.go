package httpx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-campaign/config"
	"github.com/mbolis/quick-campaign/database"
)

func TestValidateTokenID(t *testing.T) {
	db, err := database.Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.SaveUser(context.Background(), db, "alice", "pw", false))

	verifier := CredentialsVerifier(db)
	require.NoError(t, verifier.StoreTokenID(oauth.BearerToken, "alice", "t1", "r1"))

	assert.ErrorIs(t, verifier.ValidateTokenID(oauth.BearerToken, "alice", "t1", "other"), errRefused)
	assert.NoError(t, verifier.ValidateTokenID(oauth.BearerToken, "alice", "t1", "r1"))
	// refresh tokens are single use
	assert.ErrorIs(t, verifier.ValidateTokenID(oauth.BearerToken, "alice", "t1", "r1"), errRefused)

	require.NoError(t, db.Close())
	err = verifier.ValidateTokenID(oauth.BearerToken, "alice", "t1", "r1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errRefused)
}
