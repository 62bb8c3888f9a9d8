//go:build integration

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
)

// startMySQL runs a disposable MySQL 8 with db/schema.sql applied and returns
// a pool opened through Open, so the DSN normalisation is exercised too.
func startMySQL(t *testing.T, ctx context.Context) *sql.DB {
	t.Helper()
	const (
		dbName = "notify_hub_test"
		user   = "notify"
		pass   = "notify"
	)

	container, err := tcmysql.RunContainer(ctx,
		tcmysql.WithDatabase(dbName),
		tcmysql.WithUsername(user),
		tcmysql.WithPassword(pass),
		tcmysql.WithScripts(schemaPath(t)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("3306/tcp"))
	require.NoError(t, err)

	dbConn, err := Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, pass, host, port.Port(), dbName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbConn.Close() })
	require.NoError(t, dbConn.PingContext(ctx))
	return dbConn
}

// schemaPath walks up from the package directory to the module root.
func schemaPath(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "db", "schema.sql")
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "module root not found")
		dir = parent
	}
}
