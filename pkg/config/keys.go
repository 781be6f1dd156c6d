package config

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// readKey parses one key with parse and stores it in dst. Absent keys and
// blank strings leave dst untouched; unparseable values are reported and
// also leave it untouched.
func readKey[T any](v *viper.Viper, key string, parse func(any) (T, error), dst *T) error {
	if !v.IsSet(key) {
		return nil
	}

	raw := v.Get(key)
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}

	value, err := parse(raw)
	if err != nil {
		return &ConfigurationReadError{Key: key, Value: raw, Err: err}
	}
	*dst = value
	return nil
}

// readProbeKeys reads the top-level keys one by one so that a bad value only
// costs that key its setting.
func readProbeKeys(v *viper.Viper, cfg *Config) {
	errs := []error{
		readKey(v, "MaxFolderLength", cast.ToIntE, &cfg.MaxFolderLength),
		readKey(v, "MaxDirLength", cast.ToIntE, &cfg.MaxDirLength),
		readKey(v, "InitialFilePathLength", cast.ToIntE, &cfg.InitialFilePathLength),
		readKey(v, "RegistryPath", toTrimmedString, &cfg.RegistryPath),
		readKey(v, "ExcludedTypes", toList, &cfg.ExcludedTypes),
		readKey(v, "KeepFileCreated", cast.ToBoolE, &cfg.KeepFileCreated),
		readKey(v, "Timeout", toDuration, &cfg.Timeout),
		readKey(v, "Parallelism", cast.ToIntE, &cfg.Parallelism),
		readKey(v, "MaxOpsPerSecond", cast.ToUintE, &cfg.MaxOpsPerSecond),
		readKey(v, "WorkDir", toTrimmedString, &cfg.WorkDir),
		readKey(v, "Seed", cast.ToUint64E, &cfg.Seed),
		readKey(v, "Roots", toList, &cfg.Roots),
	}

	for _, err := range errs {
		if err != nil {
			cfg.ReadErrors = append(cfg.ReadErrors, err)
		}
	}
}

// sectionKeys lists the keys of each section, so that environment variables
// for keys missing from the file are still seen.
var sectionKeys = map[string][]string{
	"logging": {"level", "format", "output"},
	"report":  {"format", "metrics_file"},
}

// readSections decodes the logging and report sections.
func readSections(v *viper.Viper, cfg *Config) {
	if err := decodeSection(v, "logging", &cfg.Logging); err != nil {
		cfg.ReadErrors = append(cfg.ReadErrors, err)
	}
	if err := decodeSection(v, "report", &cfg.Report); err != nil {
		cfg.ReadErrors = append(cfg.ReadErrors, err)
	}
}

func decodeSection(v *viper.Viper, section string, out any) error {
	values := make(map[string]any)
	for _, key := range sectionKeys[section] {
		full := section + "." + key
		if v.IsSet(full) {
			values[key] = v.Get(full)
		}
	}
	if len(values) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(values); err != nil {
		return &ConfigurationReadError{Key: section, Value: values, Err: err}
	}
	return nil
}

func toTrimmedString(v any) (string, error) {
	s, err := cast.ToStringE(v)
	return strings.TrimSpace(s), err
}

// toDuration accepts Go durations ("45s") and bare numbers of seconds.
func toDuration(v any) (time.Duration, error) {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		seconds, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, err
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	if s, ok := v.(string); ok {
		if seconds, err := cast.ToFloat64E(strings.TrimSpace(s)); err == nil {
			return time.Duration(seconds * float64(time.Second)), nil
		}
	}
	return cast.ToDurationE(v)
}

// toList accepts a comma-separated string or a list. Entries are trimmed and
// empty ones dropped.
func toList(v any) ([]string, error) {
	var items []string
	if s, ok := v.(string); ok {
		items = strings.Split(s, ",")
	} else {
		var err error
		items, err = cast.ToStringSliceE(v)
		if err != nil {
			return nil, err
		}
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
	}
	return list, nil
}
