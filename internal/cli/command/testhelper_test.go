package command

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/server/httpserver"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/pkg/cmap"
	"github.com/yndnr/hashguard/pkg/securemap"
)

// testEnv is a live server plus an isolated CLI config file.
type testEnv struct {
	server     *httptest.Server
	cache      *service.CacheService
	configPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := cmap.NewWithShards[string](4, securemap.DefaultConfig())
	if err != nil {
		t.Fatalf("cmap.NewWithShards() error = %v", err)
	}
	cache := service.NewCacheService(store, domain.DefaultLimits())

	cfg := httpserver.DefaultRouterConfig()
	cfg.Cache = cache
	cfg.Logger = logger.Nop()
	cfg.EnableAudit = false
	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(srv.Close)

	return &testEnv{
		server:     srv,
		cache:      cache,
		configPath: filepath.Join(t.TempDir(), "cli.yaml"),
	}
}

// run executes the CLI with args against the test server.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *testEnv) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(input)
	app.Writer = &out
	app.ErrWriter = &errOut

	full := append([]string{"hashguard-cli", "--config", e.configPath, "--server", e.server.URL}, args...)
	err := app.Run(full)
	return out.String(), err
}
