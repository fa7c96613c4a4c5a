//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL starts a MySQL container and returns a DSN for it.
func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "repometrics",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlC.Terminate(ctx) })

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:secret123@tcp(%s:%s)/repometrics?parseTime=true&multiStatements=true", host, port.Port())
}

// startPostgres starts a PostgreSQL container and returns a keyword connection string.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
}

func TestLedgerBackends(t *testing.T) {
	backends := []struct {
		name    string
		backend schema.DatabaseBackend
		start   func(t *testing.T) string
	}{
		{"mysql", schema.MySQLBackend, startMySQL},
		{"postgresql", schema.PostgreSQLBackend, startPostgres},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			connStr := b.start(t)

			t.Run("run store round trip", func(t *testing.T) {
				store, err := iocache.NewRunStore(b.backend, connStr)
				require.NoError(t, err)
				defer func() { _ = store.Close() }()

				start := time.Now().UTC().Truncate(time.Second)
				runID, err := store.BeginRun(start, map[string]any{"input_file": "repos.csv"})
				require.NoError(t, err)
				assert.Positive(t, runID)

				ok := schema.RepoResult{
					Position: 0, Ref: schema.RepositoryRef{Owner: "octocat", Name: "Hello-World"},
					Status: schema.StatusOK, Record: schema.Record{"1.50 MB"}, RecordedAt: start,
				}
				failed := schema.RepoResult{
					Position: 1, Ref: schema.RepositoryRef{Owner: "octocat", Name: "missing"},
					Status: schema.StatusFailed, Stage: schema.StageLanguageSize, ErrorKind: "transport",
					Error: "404 Not Found", RecordedAt: start,
				}
				require.NoError(t, store.RecordRepoResult(runID, ok))
				require.NoError(t, store.RecordRepoResult(runID, failed))
				require.NoError(t, store.EndRun(runID, start.Add(time.Second), schema.BatchSummary{
					Total: 2, Succeeded: 1, Failed: 1, Duration: time.Second,
				}))

				status, err := store.GetStatus()
				require.NoError(t, err)
				assert.True(t, status.Connected)
				assert.Equal(t, 1, status.TotalRuns)
				assert.Equal(t, 2, status.TotalRepos)
				assert.Equal(t, 1, status.TotalFailed)

				results, err := store.GetAllRepoResults()
				require.NoError(t, err)
				require.Len(t, results, 2)
				require.NotNil(t, results[1].Stage)
				assert.Equal(t, schema.StageLanguageSize, *results[1].Stage)
			})

			t.Run("collect with ledger through the CLI", func(t *testing.T) {
				dir := t.TempDir()
				env := collectEnv(newFakeGitHub(t), writeStubCounter(t, dir))
				env["REPOMETRICS_RUNS_BACKEND"] = string(b.backend)
				env["REPOMETRICS_RUNS_DB_CONNECT"] = connStr

				input := writeRepoList(t, dir, "octocat/Hello-World", "octocat/missing")
				require.NoError(t, runCLI(t, dir, env, "collect", input).Err)

				status := runCLI(t, dir, env, "runs", "status")
				require.NoError(t, status.Err)
				assert.Contains(t, status.Stdout, "Connected: true")
				assert.Contains(t, status.Stdout, "Total Runs: 2")

				export := runCLI(t, dir, env, "runs", "export", "--output-file", filepath.Join(dir, "ledger"))
				require.NoError(t, export.Err)
				assert.FileExists(t, filepath.Join(dir, "ledger.runs.parquet"))
				assert.FileExists(t, filepath.Join(dir, "ledger.repo_results.parquet"))
			})

			t.Run("clear then migrate", func(t *testing.T) {
				dir := t.TempDir()
				env := map[string]string{
					"REPOMETRICS_RUNS_BACKEND":    string(b.backend),
					"REPOMETRICS_RUNS_DB_CONNECT": connStr,
				}
				require.NoError(t, runCLI(t, dir, env, "runs", "clear").Err)
				require.NoError(t, runCLI(t, dir, env, "runs", "migrate").Err)
				require.NoError(t, runCLI(t, dir, env, "runs", "migrate", "--target-version", "0").Err)
				require.NoError(t, iocache.MigrateRuns(b.backend, connStr, -1))
			})
		})
	}
}
