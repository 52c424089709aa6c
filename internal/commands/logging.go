package commands

import (
	"strings"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const commandModuleRoot = "privateplot.commands"

// CommandLogger returns a module-scoped logger for command handlers with the
// command fields every execution log carries.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
