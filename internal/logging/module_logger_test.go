package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "privateplot.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ModuleLogger(provider, publishModule)

	if len(provider.requested) != 1 || provider.requested[0] != publishModule {
		t.Fatalf("expected module %s, got %v", publishModule, provider.requested)
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}
	if got := rec.fields[0]["module"]; got != publishModule {
		t.Fatalf("expected module field %s, got %v", publishModule, got)
	}

	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
	if rec.fields[0]["module"] != rootModule {
		t.Fatalf("expected module field %s, got %v", rootModule, rec.fields[0]["module"])
	}
}

func TestNamedLoggersRequestTheirModules(t *testing.T) {
	cases := []struct {
		name   string
		build  func(interfaces.LoggerProvider) interfaces.Logger
		module string
	}{
		{"publish", PublishLogger, publishModule},
		{"remote", RemoteLogger, remoteModule},
		{"articles", ArticlesLogger, articlesModule},
		{"friendlinks", FriendLinksLogger, linksModule},
		{"feeds", FeedsLogger, feedsModule},
		{"http", HTTPLogger, httpModule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &stubProvider{logger: &recordingLogger{}}
			_ = tc.build(provider)
			if len(provider.requested) == 0 || provider.requested[0] != tc.module {
				t.Fatalf("expected %s module request, got %v", tc.module, provider.requested)
			}
		})
	}
}

func TestWithSyncContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithSyncContext(rec, " posts/hello.md ", "", 2)

	if len(rec.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldFilePath] != "posts/hello.md" {
		t.Fatalf("expected trimmed path, got %v", fields[fieldFilePath])
	}
	if _, ok := fields[fieldSyncAction]; ok {
		t.Fatalf("expected empty action to be skipped, got %v", fields)
	}
	if fields[fieldSyncAttempt] != 2 {
		t.Fatalf("expected attempt 2, got %v", fields[fieldSyncAttempt])
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2})

	fields := ContextFields(ctx)
	if fields["a"] != 1 || fields["b"] != 2 {
		t.Fatalf("expected merged fields, got %v", fields)
	}
	fields["a"] = 99
	if ContextFields(ctx)["a"] != 1 {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
