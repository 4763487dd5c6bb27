package migrate

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/internal/config"
)

const (
	dropMigrationSource = "modules/drop/database/postgresql/migrations"
	dropMigrationTable  = "drop_schema_migrations"
)

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

// resolveDatabaseURL returns the --database flag, falling back to the drop module postgres url.
func resolveDatabaseURL(flagValue string) (*url.URL, error) {
	rawURL := flagValue
	if rawURL == "" {
		rawURL = config.Load().Modules.Drop.Postgres.URL
	}
	if rawURL == "" {
		return nil, errors.New("--database is required when modules.drop.postgres.url is not configured")
	}
	databaseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}
	return databaseURL, nil
}
