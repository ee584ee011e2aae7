/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dirpx.dev/cref"
	"dirpx.dev/cref/codeobj"
	"dirpx.dev/cref/config"
	"dirpx.dev/cref/fixture"
	"dirpx.dev/cref/proxy"
)

var (
	cfgFile string
	v       = config.NewViper()
	logger  = slog.Default()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cref",
	Short: "Inspect lazy reference resolution over a fixture",
	Long: `cref loads code objects from a fixture file (YAML or TOML) into a
registry and resolves references against it, the way a documentation
generator resolves superclasses, mixins and link tags.

Examples:
  cref resolve --fixture objs.yaml "B::C"
  cref resolve --fixture objs.yaml --context Foo --kind method Bar
  cref link --fixture objs.yaml "Class:" Foo
  cref plan --context Foo::Bar "Qux#run"
  cref check --fixture objs.yaml --watch`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindFlags(rootCmd.PersistentFlags())
}

// bindFlags declares the global flags on flags and binds them to the
// viper keys config.FromViper reads.
func bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cfgFile, "config", "", "config file (default: CREF_CONFIG_FILE)")
	flags.StringP("fixture", "f", "", "fixture file declaring objects, links and references")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("search-order", "interleaved", "mixin search order (interleaved, ancestors-first)")
	bindViper(flags)
}

// viperKeys maps viper keys to the global flags that set them.
var viperKeys = map[string]string{
	"fixture":      "fixture",
	"log.level":    "log-level",
	"log.format":   "log-format",
	"search_order": "search-order",
}

// bindViper binds the global flags in flags to v.
func bindViper(flags *pflag.FlagSet) {
	for key, name := range viperKeys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

// setup loads configuration, installs it globally and applies the fixture.
func setup(cmd *cobra.Command, _ []string) error {
	if cfgFile == "" {
		cfgFile = os.Getenv("CREF_CONFIG_FILE")
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	logger = cfg.Logger
	cref.SetConfig(cfg)
	cref.Clear()
	// Clear drops the configured link keywords along with everything else.
	for kw, kind := range cfg.Links {
		if err := cref.RegisterLink(kw, kind); err != nil {
			return err
		}
	}

	_, err = loadFixture()
	return err
}

// loadFixture applies the configured fixture, if any, to the global registry.
func loadFixture() (*fixture.Fixture, error) {
	path := v.GetString("fixture")
	if path == "" {
		return &fixture.Fixture{}, nil
	}
	f, err := fixture.Load(path)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(cref.Resolver()); err != nil {
		return nil, err
	}
	logger.Info("fixture loaded", slog.String("path", path), slog.Int("objects", cref.Registry().Count()))
	return f, nil
}

// contextFlag resolves the --context flag of cmd into a proxy context.
// An empty value is the root.
func contextFlag(cmd *cobra.Command) (codeobj.Ref, error) {
	ctx, _ := cmd.Flags().GetString("context")
	if ctx == "" {
		return nil, nil
	}
	p, err := cref.Proxy(nil, ctx)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// kindFlag parses the --kind flag of cmd into proxy options.
func kindFlag(cmd *cobra.Command) ([]proxy.Option, error) {
	s, _ := cmd.Flags().GetString("kind")
	if s == "" {
		return nil, nil
	}
	kind, err := codeobj.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []proxy.Option{proxy.WithKind(kind)}, nil
}
