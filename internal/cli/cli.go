package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tcfw/mastersched/internal/config"
	intStorage "github.com/tcfw/mastersched/internal/storage"
	"github.com/tcfw/mastersched/internal/utils/logging"
	"github.com/tcfw/mastersched/pkg/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:               "mastersched",
		Short:             "master producer schedule tooling",
		PersistentPreRunE: loadConfig,
		SilenceUsage:      true,
	}

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	viper.BindPFlag(config.Cfg_verbose, rootCmd.PersistentFlags().Lookup("verbose"))

	regCommands()
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	cfg = c

	return nil
}

// openStore opens the configured store and applies the configured genesis
// if the store has none.
func openStore(ctx context.Context) (storage.Store, error) {
	var (
		s   storage.Store
		err error
	)

	sc := cfg.Store()
	if sc.Memory {
		s = storage.NewMemStore()
	} else {
		s, err = intStorage.NewPebbleStore(ctx, sc.Path, sc.OpenAttempts)
		if err != nil {
			return nil, err
		}
	}

	g := cfg.Chain().Genesis
	if g != nil && !s.HasGenesisApplied() {
		if err := s.ApplyGenesis(ctx, g); err != nil {
			s.Stop()
			return nil, errors.Wrap(err, "applying genesis")
		}
	}

	logging.Entry().WithField("memory", sc.Memory).WithField("path", sc.Path).Debug("opened store")

	return s, nil
}
