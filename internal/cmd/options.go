package cmd

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/server"
	"github.com/infrahq/unpublished/internal/server/models"
)

const envPrefix = "UNPUBLISHED"

// ParseOptions fills options from, in order of precedence, flags set on the
// command line, UNPUBLISHED_* environment variables, the config file, and
// flag defaults.
func ParseOptions(cmd *cobra.Command, options interface{}) error {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if flag := cmd.Flags().Lookup("config-file"); flag != nil && flag.Value.String() != "" {
		v.SetConfigFile(flag.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	hooks := mapstructure.ComposeDecodeHookFunc(
		lifetimeHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := v.Unmarshal(options, viper.DecodeHook(hooks)); err != nil {
		return fmt.Errorf("parse options: %w", err)
	}

	return nil
}

// lifetimeHookFunc decodes strings such as "48h" or "unlimited" into a
// models.Lifetime.
func lifetimeHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(models.Lifetime(0)) {
			return data, nil
		}

		raw, _ := data.(string)
		if raw == "" {
			return models.Lifetime(0), nil
		}

		return models.ParseLifetime(raw)
	}
}

func defaultServerOptions() server.Options {
	return server.DefaultOptions()
}

// withDB opens the database configured for cmd, and closes it after fn
// returns.
func withDB(cmd *cobra.Command, fn func(db *gorm.DB) error) error {
	options := defaultServerOptions()
	if err := ParseOptions(cmd, &options); err != nil {
		return err
	}

	db, err := server.OpenDB(options)
	if err != nil {
		return err
	}

	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	return fn(db.WithContext(cmd.Context()))
}
