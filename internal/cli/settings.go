package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-privateplot/internal/settings"
	"github.com/goliatone/go-privateplot/internal/terminal"
)

// tokenFromPrompt is the --token value that asks for the token interactively.
const tokenFromPrompt = "-"

func newSettingsCommand(a *app) *cobra.Command {
	var host, token string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the instance host and auth token",
		Example: `  privateplot settings --host blog.example.com
  privateplot settings --token -`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := a.loader()
			loaded, err := loader.Load()
			if err != nil {
				return err
			}

			hostSet := cmd.Flags().Changed("host")
			tokenSet := cmd.Flags().Changed("token")
			if !hostSet && !tokenSet {
				showSettings(a.printer, loaded)
				return nil
			}

			values := loaded.File
			if hostSet {
				if strings.TrimSpace(host) == "" {
					return invalidInputf("host cannot be empty")
				}
				values.InstanceHost = strings.TrimSpace(host)
			}
			if tokenSet {
				if token == tokenFromPrompt {
					token, err = a.readToken()
					if err != nil {
						return err
					}
				}
				if strings.TrimSpace(token) == "" {
					return invalidInputf("token cannot be empty")
				}
				values.InternalAuthToken = strings.TrimSpace(token)
			}

			path, err := loader.Save(loaded, values)
			if err != nil {
				if errors.Is(err, settings.ErrInvalidConfig) {
					return invalidInput(err)
				}
				return err
			}
			a.printer.Success("Settings updated successfully (" + path + ")")
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "instance host, e.g. blog.example.com")
	cmd.Flags().StringVar(&token, "token", "", "internal auth token, or - to type it without echo")
	return cmd
}

func showSettings(printer *terminal.Printer, loaded *settings.Loaded) {
	source := loaded.Source
	if source == "" {
		source = "Not found"
	}
	host := loaded.Host()
	if loaded.HostDefaulted {
		host += " (default)"
	}
	printer.Section("Current Settings", []terminal.Row{
		{Key: "Instance Host", Value: host},
		{Key: "Auth Token", Value: settings.MaskToken(loaded.Token())},
		{Key: "Config File", Value: source},
	})
}

// readToken prefers a no-echo terminal prompt and falls back to the first
// line of stdin when it is piped.
func (a *app) readToken() (string, error) {
	value, err := terminal.ReadSecret(a.printer, "Auth token:")
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, terminal.ErrNoTerminal) {
		return "", err
	}
	line, err := bufio.NewReader(a.env.In).ReadString('\n')
	if err != nil && line == "" {
		return "", invalidInputf("no token on stdin")
	}
	return strings.TrimSpace(line), nil
}
