package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings keys mirror flag names. The salt is deliberately not a settings key.
var allowedGlobalConfigKeys = mapset.NewThreadUnsafeSet[string](
	"log-level", "state-dir", "locale", "disable-pb", "parallel-jobs", "yes",
)

var allowedAnonymizeConfigKeys = mapset.NewThreadUnsafeSet[string](
	"config", "locale", "show-salt", "state-dir", "reuse-salt", "disable-pb",
	"parallel-jobs", "save-config",
)

var allowedRunsListConfigKeys = mapset.NewThreadUnsafeSet[string](
	"state-dir",
)

var allowedConfigSections = map[string]mapset.Set[string]{
	"anonymize": allowedAnonymizeConfigKeys,
	"runs-list": allowedRunsListConfigKeys,
}

// ConfigFlagOverride is a flag whose value came from the settings file or
// the environment.
type ConfigFlagOverride struct {
	FlagName  string
	ConfigKey string
	Value     string
}

// initConfig resolves the settings for cmd:
//
//  1. Loads .env from the working directory, if present.
//  2. Reads the settings file: --settings, then $CHAMELEON_SETTINGS_FILE, then
//     ~/.chameleon.yaml.
//  3. Rejects unknown keys and sections.
//  4. Sets every flag not given on the command line from "<command>.<flag>",
//     then "<flag>", in the settings file or as CHAMELEON_* environment
//     variables.
//
// Precedence is command line, then environment, then settings file, then the
// flag default.
func initConfig(cmd *cobra.Command) ([]ConfigFlagOverride, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if os.Getenv(SETTINGS_FILE_ENV_VAR) != "" {
		v.SetConfigFile(os.Getenv(SETTINGS_FILE_ENV_VAR))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.SetConfigName(DEFAULT_SETTINGS_NAME)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using settings file:", v.ConfigFileUsed())
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	err = validateConfigFile(v)
	if err != nil {
		return nil, err
	}

	overrides, err := bindCobraFlagsToViper(cmd, v)
	if err != nil {
		return nil, fmt.Errorf("failed to bind cobra flags to viper: %w", err)
	}
	return overrides, nil
}

func validateConfigFile(v *viper.Viper) error {
	invalidGlobalKeys := mapset.NewThreadUnsafeSet[string]()
	invalidSectionKeys := make(map[string]mapset.Set[string])
	invalidSections := mapset.NewThreadUnsafeSet[string]()

	for _, key := range v.AllKeys() {
		section, nestedKey, nested := strings.Cut(key, ".")
		if !nested {
			if !allowedGlobalConfigKeys.Contains(key) {
				invalidGlobalKeys.Add(key)
			}
			continue
		}
		allowedKeys, ok := allowedConfigSections[section]
		if !ok {
			invalidSections.Add(section)
			continue
		}
		if !allowedKeys.Contains(nestedKey) {
			if _, exists := invalidSectionKeys[section]; !exists {
				invalidSectionKeys[section] = mapset.NewThreadUnsafeSet[string]()
			}
			invalidSectionKeys[section].Add(nestedKey)
		}
	}

	if invalidGlobalKeys.Cardinality() == 0 && len(invalidSectionKeys) == 0 && invalidSections.Cardinality() == 0 {
		return nil
	}
	if invalidGlobalKeys.Cardinality() > 0 {
		fmt.Printf("%s [%s]\n", color.RedString("Invalid global settings keys:"), sortedJoin(invalidGlobalKeys))
	}
	for section, keys := range invalidSectionKeys {
		fmt.Printf("%s [%s]\n", color.RedString(fmt.Sprintf("Invalid keys in section '%s':", section)), sortedJoin(keys))
	}
	if invalidSections.Cardinality() > 0 {
		fmt.Printf("%s [%s]\n", color.RedString("Invalid sections:"), sortedJoin(invalidSections))
	}
	return fmt.Errorf("found invalid settings in file: %s", v.ConfigFileUsed())
}

func sortedJoin(s mapset.Set[string]) string {
	items := s.ToSlice()
	sort.Strings(items)
	return strings.Join(items, ", ")
}

func bindCobraFlagsToViper(cmd *cobra.Command, v *viper.Viper) ([]ConfigFlagOverride, error) {
	var bindErr error
	var overrides []ConfigFlagOverride

	configKeyPrefix := strings.ReplaceAll(commandName(cmd), " ", "-")

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed || f.Name == "settings" || f.Name == "help" {
			return
		}
		for _, key := range []string{configKeyPrefix + "." + f.Name, f.Name} {
			if configKeyPrefix == "" && key != f.Name {
				continue
			}
			if !v.IsSet(key) {
				continue
			}
			val := v.GetString(key)
			if err := cmd.Flags().Set(f.Name, val); err != nil {
				bindErr = fmt.Errorf("%s: %w", key, err)
				return
			}
			overrides = append(overrides, ConfigFlagOverride{FlagName: f.Name, ConfigKey: key, Value: val})
			return
		}
	})

	return overrides, bindErr
}
