//go:build database

package integration

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDpcWithMySQL tests the dpc CLI with a MySQL run history backend.
func TestDpcWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "dpc",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/dpc?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("DPC_STORE_BACKEND", "mysql")
	_ = os.Setenv("DPC_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("DPC_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("DPC_STORE_DB_CONNECT") }()

	runDpcFlow(t)
}

// TestDpcWithPostgres tests the dpc CLI with a PostgreSQL run history backend.
func TestDpcWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("DPC_STORE_BACKEND", "postgresql")
	_ = os.Setenv("DPC_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("DPC_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("DPC_STORE_DB_CONNECT") }()

	runDpcFlow(t)
}

// runDpcFlow exercises the run history lifecycle against whichever backend
// the environment selects: clear, compare, list, trend, status.
func runDpcFlow(t *testing.T) {
	// Write a pair of identical image fixtures so compare passes
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.png")
	impl := filepath.Join(dir, "impl.png")
	writeSolidPNG(t, ref, 160, 120, color.NRGBA{R: 245, G: 246, B: 248, A: 255})
	writeSolidPNG(t, impl, 160, 120, color.NRGBA{R: 245, G: 246, B: 248, A: 255})

	// Run dpc runs clear
	_, err := runDpcCommand(t, "runs", "clear")
	require.NoError(t, err)

	// Run dpc compare (records one run)
	_, err = runDpcCommand(t, "compare", ref, impl)
	require.NoError(t, err)

	// Run dpc runs list
	listOut, err := runDpcCommand(t, "runs", "list", "--limit", "5")
	require.NoError(t, err)
	require.Contains(t, listOut, "Showing 1 runs")

	// Run dpc runs trend for the pair just compared
	_, err = runDpcCommand(t, "runs", "trend", ref, impl)
	require.NoError(t, err)

	// Run dpc runs status
	_, err = runDpcCommand(t, "runs", "status")
	require.NoError(t, err)
}

func runDpcCommand(t *testing.T, args ...string) (string, error) {
	dpcPath := getDpcBinary()
	cmd := exec.Command(dpcPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return string(output), err
	}
	return string(output), nil
}
