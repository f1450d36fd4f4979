package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v3"
)

// LoadConfig builds the configuration source: defaults, then the config file
// when present, then MCDASH_* environment variables. A missing file is not an
// error; the defaults are written there so the first run leaves an editable
// config behind.
func LoadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("MCDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":7867")
	v.SetDefault("http.static_dir", "web/dist")
	v.SetDefault("http.allow_origins", "")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.driver", "auto")
	v.SetDefault("data.dsn", "")
	v.SetDefault("server.root", ".")
	v.SetDefault("server.properties", "server.properties")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	err := v.ReadInConfig()
	if err == nil {
		return v, nil
	}
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) || os.IsNotExist(errors.Unwrap(err)) || os.IsNotExist(err) {
		if werr := writeDefaultConfig(path, v.AllSettings()); werr != nil {
			return nil, werr
		}
		return v, nil
	}
	return nil, err
}

func writeDefaultConfig(path string, settings map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
