package fernet

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

// LoadConfigFile reads a JSON config file and returns its settings as an
// override map for ResolveOptions. A missing file is not an error; the
// returned map is just empty. Anything else (unreadable file, bad JSON)
// is returned to the caller.
func LoadConfigFile(path string) (map[string]interface{}, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return map[string]interface{}{}, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]interface{}{}, nil
		}
		return nil, err
	}

	return v.AllSettings(), nil
}
