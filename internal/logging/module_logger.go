package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const (
	rootModule     = "privateplot"
	publishModule  = "privateplot.publish"
	remoteModule   = "privateplot.remote"
	articlesModule = "privateplot.articles"
	linksModule    = "privateplot.friendlinks"
	feedsModule    = "privateplot.feeds"
	httpModule     = "privateplot.http"
)

const (
	fieldFilePath    = "file_path"
	fieldSyncAction  = "sync_action"
	fieldSyncAttempt = "attempt"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PublishLogger returns the logger namespace reserved for the publish pipeline.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// RemoteLogger returns the logger namespace reserved for the article API client.
func RemoteLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, remoteModule)
}

// ArticlesLogger returns the logger namespace reserved for article services.
func ArticlesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, articlesModule)
}

// FriendLinksLogger returns the logger namespace reserved for friend links.
func FriendLinksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, linksModule)
}

// FeedsLogger returns the logger namespace reserved for RSS and sitemap generation.
func FeedsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, feedsModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP server.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithSyncContext enriches the logger with the markdown file path, the routed
// sync action and the attempt number. Empty values are ignored.
func WithSyncContext(logger interfaces.Logger, path, action string, attempt int) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldFilePath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSyncAction] = trimmed
	}
	if attempt > 0 {
		fields[fieldSyncAttempt] = attempt
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
