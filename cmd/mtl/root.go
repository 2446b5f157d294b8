package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benjaminschreck/go-mtl/pkg/mtl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app holds the state shared by the commands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	defaults := mtl.DefaultConfig()

	root := &cobra.Command{
		Use:   "mtl",
		Short: "Render metadata templates for files",
		Long: `mtl renders Metadata Template Language templates such as
"{created.year}/{filepath.stem|lower}" against the metadata of files.

Configuration is read, in order of precedence, from flags, MTL_* environment
variables and a YAML config file (--config, MTL_CONFIG_FILE or .mtl.yaml).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .mtl.yaml, can also use MTL_CONFIG_FILE env var)")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error, off)")
	flags.Int("max-depth", defaults.MaxDepth, "maximum template nesting depth")
	flags.String("none-str", defaults.NoneStr, "string rendered for fields without a value")
	flags.String("inplace-sep", defaults.InplaceSep, "separator for multi-valued fields joined in place")
	flags.Bool("expand-inplace", defaults.ExpandInplace, "join multi-valued fields in place instead of one result per value")
	flags.Bool("sort-inplace", defaults.SortInplace, "sort values before an in-place join")
	flags.Bool("strip", defaults.Strip, "trim surrounding whitespace from each result")
	a.bindFlags(flags, map[string]string{
		"log_level":      "log-level",
		"max_depth":      "max-depth",
		"none_str":       "none-str",
		"inplace_sep":    "inplace-sep",
		"expand_inplace": "expand-inplace",
		"sort_inplace":   "sort-inplace",
		"strip":          "strip",
	})

	root.AddCommand(
		a.newRenderCmd(),
		a.newCheckCmd(),
		a.newFieldsCmd(),
		a.newWatchCmd(),
	)
	return root
}

// bindFlags binds viper keys to flags.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func (a *app) initConfig() error {
	v := a.v
	explicit := a.cfgFile
	if explicit == "" {
		explicit = os.Getenv("MTL_CONFIG_FILE")
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".mtl")
	}

	v.SetEnvPrefix("MTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// engineConfig builds and installs the engine configuration from flags,
// environment and config file.
func (a *app) engineConfig(cmd *cobra.Command) (*mtl.Config, error) {
	v := a.v
	config := mtl.DefaultConfig()
	config.LogLevel = v.GetString("log_level")
	config.MaxDepth = v.GetInt("max_depth")
	config.NoneStr = v.GetString("none_str")
	config.InplaceSep = v.GetString("inplace_sep")
	config.ExpandInplace = v.GetBool("expand_inplace")
	config.SortInplace = v.GetBool("sort_inplace")
	config.Strip = v.GetBool("strip")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	mtl.SetLogger(mtl.NewLogger(cmd.ErrOrStderr(), mtl.ParseLogLevel(config.LogLevel)))
	mtl.SetGlobalConfig(config)
	if used := v.ConfigFileUsed(); used != "" {
		mtl.Debug("Using config file: %s", used)
	}
	return config, nil
}
