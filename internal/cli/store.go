package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/mastersched/internal/utils/logging"
	"github.com/tcfw/mastersched/pkg/host"
	"github.com/tcfw/mastersched/pkg/storage"
)

var (
	storeCmd = &cobra.Command{
		Use:   "store",
		Short: "schedule store commands",
	}

	store_putCmd = &cobra.Command{
		Use:   "put",
		Short: "validate and store a schedule file. Its authorities apply once it is activated",
		RunE:  runStorePut,
	}

	store_activateCmd = &cobra.Command{
		Use:   "activate VERSION",
		Short: "make a stored schedule version active",
		Args:  cobra.ExactArgs(1),
		RunE:  runStoreActivate,
	}

	store_activeCmd = &cobra.Command{
		Use:   "active",
		Short: "print the active schedule",
		RunE:  runStoreActive,
	}

	store_mastersCmd = &cobra.Command{
		Use:   "masters",
		Short: "list the active master producers",
		RunE:  runStoreMasters,
	}

	store_genesisCmd = &cobra.Command{
		Use:   "genesis",
		Short: "apply the configured genesis and print its state",
		RunE:  runStoreGenesis,
	}
)

func init() {
	store_putCmd.Flags().StringP("file", "f", "-", "schedule file. Use '-' for stdin")
	store_putCmd.Flags().Bool("activate", false, "activate the schedule once stored")

	store_activeCmd.Flags().Bool("authorities", false, "include stored authorities")
}

func runStorePut(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, s, err := scheduleFromFlags(cmd)
	if err != nil {
		return err
	}

	auths, err := f.Authorities()
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Stop()

	v := storage.NewScheduleValidator(st)
	if err := v.IsScheduleValid(ctx, s); err != nil {
		return errors.Wrap(err, "invalid schedule")
	}

	for i := range auths {
		if err := v.IsAuthorityValid(ctx, &auths[i]); err != nil {
			return errors.Wrap(err, "invalid authority")
		}
	}

	activate, _ := cmd.Flags().GetBool("activate")

	id, err := st.StoreSchedule(ctx, s, auths, activate)
	if err != nil {
		return err
	}

	logging.Entry().WithField("version", s.Version).WithField("cid", id.String()).Info("stored schedule")
	fmt.Fprintln(cmd.OutOrStdout(), id.String())

	return nil
}

func runStoreActivate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	version, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return errors.Wrap(err, "parsing version")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Stop()

	return st.Activate(ctx, uint32(version))
}

func runStoreActive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Stop()

	s, err := st.Active(ctx)
	if err != nil {
		return err
	}

	f := scheduleToFile(s)

	if withAuths, _ := cmd.Flags().GetBool("authorities"); withAuths {
		for i, p := range s.Producers {
			a, err := st.Authority(ctx, p.ProducerName)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				return err
			}
			f.Producers[i].Authority = authorityToFile(*a).Authority
		}
	}

	return writeYAML(cmd.OutOrStdout(), f)
}

func runStoreMasters(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Stop()

	// the host query cannot fail, so check the store directly first
	if _, err := st.ActiveMasters(ctx); err != nil {
		return err
	}

	h, err := host.NewLocal(ctx, host.WithMastersSource(st))
	if err != nil {
		return err
	}

	for _, n := range host.GetActiveMasters(h) {
		fmt.Fprintln(cmd.OutOrStdout(), n.String())
	}

	return nil
}

func runStoreGenesis(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := cfg.Chain().Genesis
	if g == nil {
		return errors.New("no genesis configured")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "chain: %s\napplied: %t\n", g.ChainID, st.HasGenesisApplied())

	return writeYAML(cmd.OutOrStdout(), scheduleToFile(&g.Schedule))
}
