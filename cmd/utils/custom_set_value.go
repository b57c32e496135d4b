package utils

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stellar/go/support/config"

	"github.com/real-comp/mvr-common/internal/build"
	"github.com/real-comp/mvr-common/internal/records"
	"github.com/real-comp/mvr-common/internal/validators"
)

func SetConfigOptionLogLevel(co *config.ConfigOption) error {
	logLevelStr := viper.GetString(co.Name)
	logLevel, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		return fmt.Errorf("couldn't parse log level in %s: %w", co.Name, err)
	}

	key, ok := co.ConfigKey.(*logrus.Level)
	if !ok {
		return fmt.Errorf("%s configKey has an invalid type %T", co.Name, co.ConfigKey)
	}
	*key = logLevel

	return nil
}

// SetConfigOptionRecordFiles parses a comma-separated list of record files, dropping empty entries. Every entry must
// be a ".json" or ".json.gz" path, or "-" for stdin.
func SetConfigOptionRecordFiles(co *config.ConfigOption) error {
	list := splitList(viper.GetString(co.Name))
	for _, path := range list {
		if path != "-" && !records.IsRecordFile(path) {
			return fmt.Errorf("invalid record file %q in %s: expected a .json or .json.gz path", path, co.Name)
		}
	}

	key, ok := co.ConfigKey.(*[]string)
	if !ok {
		return fmt.Errorf("the expected type for the config key in %s is a string slice, but a %T was provided instead", co.Name, co.ConfigKey)
	}
	*key = list

	return nil
}

// SetConfigOptionAttributes parses a comma-separated list of key:value pairs.
func SetConfigOptionAttributes(co *config.ConfigOption) error {
	attributes := map[string]string{}
	for _, pair := range splitList(viper.GetString(co.Name)) {
		k, v, found := strings.Cut(pair, ":")
		k = strings.TrimSpace(k)
		if !found || k == "" {
			return fmt.Errorf("invalid attribute %q in %s: expected key:value", pair, co.Name)
		}
		attributes[k] = strings.TrimSpace(v)
	}

	key, ok := co.ConfigKey.(*map[string]string)
	if !ok {
		return fmt.Errorf("the expected type for the config key in %s is a map[string]string, but a %T was provided instead", co.Name, co.ConfigKey)
	}
	*key = attributes

	return nil
}

// SetConfigOptionBuildDate accepts a YYYYMMDD date and defaults to today.
func SetConfigOptionBuildDate(co *config.ConfigOption) error {
	buildDate := strings.TrimSpace(viper.GetString(co.Name))
	if buildDate == "" {
		buildDate = build.DefaultBuildDate()
	} else if !validators.IsDate(buildDate) {
		return fmt.Errorf("invalid build date %q in %s: expected YYYYMMDD", buildDate, co.Name)
	}

	key, ok := co.ConfigKey.(*string)
	if !ok {
		return fmt.Errorf("the expected type for the config key in %s is a string, but a %T was provided instead", co.Name, co.ConfigKey)
	}
	*key = buildDate

	return nil
}

func splitList(value string) []string {
	list := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
