package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides: ONTOQL_ONTOLOGY, ONTOQL_CATALOG.
	EnvPrefix = "ONTOQL"

	// DefaultCatalog is the catalog database used when none is configured.
	DefaultCatalog = "ontoql.db"

	configName = ".ontoql"
)

// configKeys are the settings resolved through viper.
var configKeys = []string{"ontology", "catalog"}

// loadConfig resolves opts.Ontology and opts.Catalog. Precedence: explicit
// flag, environment, config file, flag default. A missing default config
// file is not an error; a missing --config file is.
func loadConfig(v *viper.Viper, root *cobra.Command, opts *RootOptions) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("catalog", DefaultCatalog)

	for _, key := range configKeys {
		if err := v.BindPFlag(key, root.PersistentFlags().Lookup(key)); err != nil {
			return WrapExitError(ExitCommandError, "bind flag "+key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return WrapExitError(ExitCommandError, "read config", err)
		}
	}

	opts.Ontology = v.GetString("ontology")
	opts.Catalog = v.GetString("catalog")
	return nil
}
