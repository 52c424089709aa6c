package di

import (
	"testing"

	"github.com/goliatone/go-privateplot/internal/runtimeconfig"
	"github.com/goliatone/go-privateplot/pkg/testsupport"
)

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.DSN = testsupport.MemoryDSN(t)
	cfg.InternalAuthToken = "test-token"
	cfg.Logging.Level = "error"
	return cfg
}
