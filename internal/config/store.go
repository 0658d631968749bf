package config

import (
	"github.com/spf13/viper"
)

type Store struct {
	Path         string
	Memory       bool
	OpenAttempts int
}

const (
	Cfg_store_path         = "store.path"
	Cfg_store_memory       = "store.memory"
	Cfg_store_openAttempts = "store.openAttempts"
)

var (
	storeDefaults = map[string]interface{}{
		Cfg_store_path:         "./data",
		Cfg_store_memory:       false,
		Cfg_store_openAttempts: 5,
	}
)

func init() {
	for k, v := range storeDefaults {
		viper.SetDefault(k, v)
	}
}

func buildStoreConfig() (*Store, error) {
	c := &Store{}

	c.Path = viper.GetString(Cfg_store_path)
	c.Memory = viper.GetBool(Cfg_store_memory)
	c.OpenAttempts = viper.GetInt(Cfg_store_openAttempts)

	return c, nil
}
