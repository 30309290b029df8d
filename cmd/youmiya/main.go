// Command youmiya builds a container from the environment and manifest files, then resolves the
// tokens given as arguments.
//
//	YOUMIYA_LOG_LEVEL=debug youmiya --manifest container.yaml --env --describe db.url HOME
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/a-peyrard/youmiya"
	"github.com/a-peyrard/youmiya/config"
	"github.com/a-peyrard/youmiya/manifest"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "youmiya: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("youmiya", pflag.ContinueOnError)
	var (
		envPrefix = flags.String("env-prefix", "YOUMIYA", "prefix of the container settings variables")
		dotEnv    = flags.StringSlice("dotenv", nil, ".env files read for the container settings")
		manifests = flags.StringSlice("manifest", nil, "manifest files registered into the container")
		useEnv    = flags.Bool("env", false, "serve environment variables for unregistered string tokens")
		describe  = flags.Bool("describe", false, "print the container content at the end")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	settings, err := config.LoadContainerSettings(*envPrefix, config.WithDotEnv(*dotEnv...))
	if err != nil {
		return err
	}
	c, err := youmiya.NewFromSettings(settings)
	if err != nil {
		return err
	}
	//goland:noinspection GoUnhandledErrorResult
	defer c.Dispose(true)

	for _, path := range *manifests {
		m, err := manifest.Load(path)
		if err != nil {
			return err
		}
		if _, err = m.Apply(c); err != nil {
			return err
		}
	}

	var opts []youmiya.ResolveOption
	if *useEnv {
		opts = append(opts, youmiya.Alternative(youmiya.NewEnvSource("")))
	}
	for _, token := range flags.Args() {
		value, err := c.Resolve(token, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s = %v\n", token, value)
	}

	if *describe {
		fmt.Fprint(out, c.Describe())
	}
	return nil
}
