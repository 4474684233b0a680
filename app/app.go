package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-campaign/config"
)

// App is what the HTTP handlers share: the database, the token server and
// the configuration they were started with.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
