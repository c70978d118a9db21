// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey    = "version"
	httpHostKey   = "http-host"
	httpPortKey   = "http-port"
	logLevelKey   = "log-level"
	chainIDKey    = "chain-id"
	genesisKey    = "genesis-file"
	configFileKey = "config-file"

	envPrefix = "michelsonvm"
)

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("michelsonvm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints the version and quits")
	fs.String(httpHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint(httpPortKey, 9650, "Port of the HTTP server")
	fs.String(logLevelKey, "info", "The log level")
	fs.String(chainIDKey, "NetXdQprcVkpaWU", "Chain id reported by CHAIN_ID")
	fs.String(genesisKey, "", "JSON file listing the initial accounts")
	fs.String(configFileKey, "", "Config file whose values override the defaults")

	return fs
}

// getViper returns the viper environment for the binary
func getViper(args []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("michelsonvm", pflag.ContinueOnError)
	fs.AddGoFlagSet(buildFlagSet())
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile := v.GetString(configFileKey); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Config is the parsed configuration of the binary
type Config struct {
	PrintVersion bool
	HTTPHost     string
	HTTPPort     uint
	LogLevel     string
	ChainID      string
	GenesisFile  string
}

func getConfig(args []string) (Config, error) {
	v, err := getViper(args)
	if err != nil {
		return Config{}, err
	}
	return Config{
		PrintVersion: v.GetBool(versionKey),
		HTTPHost:     v.GetString(httpHostKey),
		HTTPPort:     v.GetUint(httpPortKey),
		LogLevel:     v.GetString(logLevelKey),
		ChainID:      v.GetString(chainIDKey),
		GenesisFile:  v.GetString(genesisKey),
	}, nil
}
