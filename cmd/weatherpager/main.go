// Package main provides the entrypoint for the weather pager.
package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/breatheroute/weatherpager/internal/config"
	"github.com/breatheroute/weatherpager/internal/input"
	"github.com/breatheroute/weatherpager/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	serviceName    = "weatherpager"
	defaultEnvFile = ".env"
)

// CLI is the command line. Every flag can also be set from the environment,
// including through the .env file named by --env-file.
type CLI struct {
	Globals

	Device  DeviceCmd  `cmd:"" default:"1" help:"Run on the device with the OLED and GPIO buttons."`
	Console ConsoleCmd `cmd:"" help:"Run in the terminal. Type a/n, b/f or c/s and Enter to press a button."`
}

// envLoad is the outcome of loading the .env file, which has to happen before
// flags are parsed so its variables can fill env-backed flags.
type envLoad struct {
	path string
	err  error
}

func main() {
	env := envLoad{path: envFileArg(os.Args[1:])}
	env.err = config.LoadEnv(env.path)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name(serviceName),
		kong.Description("Handheld weather forecast pager."),
		kong.UsageOnError(),
		kong.Vars{
			"default_env_file": defaultEnvFile,
			"onecall_url":      openweathermap.DefaultOneCallURL,
			"next_pin":         input.DefaultNextPin,
			"fetch_pin":        input.DefaultFetchPin,
			"show_pin":         input.DefaultShowPin,
		},
	)

	kctx.FatalIfErrorf(kctx.Run(&cli.Globals, env))
}

// envFileArg finds --env-file in args ahead of the real parse.
func envFileArg(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--":
			return defaultEnvFile
		case strings.HasPrefix(arg, "--env-file="):
			return strings.TrimPrefix(arg, "--env-file=")
		case arg == "--env-file" && i+1 < len(args):
			return args[i+1]
		}
	}
	return defaultEnvFile
}
