package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/expensecmd/internal/auth"
	"github.com/mmynk/expensecmd/internal/command"
	"github.com/mmynk/expensecmd/internal/middleware"
	"github.com/mmynk/expensecmd/internal/models"
	"github.com/mmynk/expensecmd/internal/normalize"
	"github.com/mmynk/expensecmd/internal/service"
	"github.com/mmynk/expensecmd/internal/storage/memory"
)

const testSecret = "cli-test-secret"

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("EXPENSECTL_SERVER", "")
	t.Setenv("EXPENSECTL_TOKEN", "")

	var out bytes.Buffer
	rootCmd := newRootCmd()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipeline := command.NewPipeline(normalize.NewPattern(), memory.New(), command.WithLogger(logger))

	path, handler := service.NewCommandServiceHandler(
		service.NewCommandService(pipeline, logger),
		connect.WithInterceptors(middleware.RequireAuth(auth.NewJWTManager(testSecret, time.Hour))),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSchema_JSON(t *testing.T) {
	out, err := runCmd(t, "schema", "--format", "json")
	require.NoError(t, err)

	var schema command.Schema
	require.NoError(t, json.Unmarshal([]byte(out), &schema), "output should be valid JSON")
	assert.Equal(t, command.Describe(), schema)
}

func TestSchema_YAML(t *testing.T) {
	out, err := runCmd(t, "schema", "--format", "yaml")
	require.NoError(t, err)

	var schema command.Schema
	require.NoError(t, yaml.Unmarshal([]byte(out), &schema))
	assert.Equal(t, []string{command.TagCreateGroup, command.TagAddExpense}, schema.Tags())
}

func TestSchema_Text(t *testing.T) {
	out, err := runCmd(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "create_group:")
	assert.Contains(t, out, "add_expense:")
	assert.Contains(t, out, "optional")
}

func TestSchema_InvalidFormat(t *testing.T) {
	_, err := runCmd(t, "schema", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestToken_RoundTrip(t *testing.T) {
	out, err := runCmd(t, "token", "--user-id", "alice", "--email", "a@example.com", "--secret", testSecret)
	require.NoError(t, err)

	claims, err := auth.NewJWTManager(testSecret, time.Hour).Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestToken_SecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	out, err := runCmd(t, "token", "--user-id", "bob")
	require.NoError(t, err)

	_, err = auth.NewJWTManager(testSecret, time.Hour).Validate(strings.TrimSpace(out))
	assert.NoError(t, err)
}

func TestToken_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := runCmd(t, "token", "--user-id", "bob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing secret")

	_, err = runCmd(t, "token", "--secret", testSecret)
	require.Error(t, err, "--user-id is required")

	_, err = runCmd(t, "token", "--user-id", "bob", "--secret", testSecret, "--tz", "Mars/Olympus")
	require.Error(t, err)
}

func TestProcess(t *testing.T) {
	srv := newTestServer(t)
	token, err := auth.NewJWTManager(testSecret, time.Hour).Generate(&models.User{ID: "alice"})
	require.NoError(t, err)

	out, err := runCmd(t, "--server", srv.URL, "--token", token, "process", "create", "a", "group", "called", "Home")
	require.NoError(t, err)
	assert.Equal(t, "Group 'Home' created successfully\n", out)

	out, err = runCmd(t, "--server", srv.URL, "--token", token, "-o", "json",
		"process", "add expense of rent 50000 to Home group")
	require.NoError(t, err)

	var resp service.ProcessResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Expense)
	assert.Equal(t, int64(5000000), resp.Expense.AmountCents)
}

func TestProcess_CommandFailure(t *testing.T) {
	srv := newTestServer(t)
	token, err := auth.NewJWTManager(testSecret, time.Hour).Generate(&models.User{ID: "alice"})
	require.NoError(t, err)

	out, err := runCmd(t, "--server", srv.URL, "--token", token, "process", "asdkjasd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-match")
	assert.NotEmpty(t, strings.TrimSpace(out), "the user-facing message is still printed")
}

func TestProcess_RequiresToken(t *testing.T) {
	_, err := runCmd(t, "process", "create group Home")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")
}

func TestProcess_BadToken(t *testing.T) {
	srv := newTestServer(t)
	_, err := runCmd(t, "--server", srv.URL, "--token", "garbage", "process", "create group Home")
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestRoot_InvalidOutput(t *testing.T) {
	_, err := runCmd(t, "-o", "table", "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
