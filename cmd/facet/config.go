// Config loading for the facet CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"
)

const (
	configName = ".facet"
	configType = "yaml"

	// Config keys.
	cfgKeyWrite  = "write"  // fmt rewrites files in place
	cfgKeyStrict = "strict" // check requires byte-identical re-encoding
)

// loadConfig reads the CLI configuration with Viper. A missing config
// file is not an error; defaults apply.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyWrite, false)
	v.SetDefault(cfgKeyStrict, false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			// No discoverable config at all is fine.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}
