package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/tcfw/mastersched/pkg/storage"
)

var (
	scheduleCmd = &cobra.Command{
		Use:   "schedule",
		Short: "producer schedule commands",
	}

	schedule_encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "encode a schedule file to its wire form",
		RunE:  runScheduleEncode,
	}

	schedule_decodeCmd = &cobra.Command{
		Use:   "decode HEX",
		Short: "decode a wire encoded schedule",
		Args:  cobra.ExactArgs(1),
		RunE:  runScheduleDecode,
	}

	schedule_validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "validate a schedule file",
		RunE:  runScheduleValidate,
	}
)

func init() {
	for _, c := range []*cobra.Command{schedule_encodeCmd, schedule_validateCmd} {
		c.Flags().StringP("file", "f", "-", "schedule file. Use '-' for stdin")
	}

	schedule_encodeCmd.Flags().Bool("cid", false, "print the content id instead of the encoding")
	schedule_validateCmd.Flags().Bool("store", false, "also check the version against the active schedule in the store")
}

func scheduleFromFlags(cmd *cobra.Command) (*ScheduleFile, *schedule.ProducerSchedule, error) {
	path, _ := cmd.Flags().GetString("file")

	f, err := readScheduleFile(path)
	if err != nil {
		return nil, nil, err
	}

	s, err := f.Schedule()
	if err != nil {
		return nil, nil, err
	}

	return f, s, nil
}

func runScheduleEncode(cmd *cobra.Command, args []string) error {
	_, s, err := scheduleFromFlags(cmd)
	if err != nil {
		return err
	}

	d, rec, err := storage.EncodeSchedule(s, nil)
	if err != nil {
		return err
	}

	if asCid, _ := cmd.Flags().GetBool("cid"); asCid {
		fmt.Fprintln(cmd.OutOrStdout(), rec.ID.String())
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(d))

	return nil
}

func runScheduleDecode(cmd *cobra.Command, args []string) error {
	d, err := hex.DecodeString(strings.TrimSpace(args[0]))
	if err != nil {
		return errors.Wrap(err, "decoding hex")
	}

	s := &schedule.ProducerSchedule{}
	if err := s.UnmarshalBinary(d); err != nil {
		return err
	}

	return writeYAML(cmd.OutOrStdout(), scheduleToFile(s))
}

func runScheduleValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f, s, err := scheduleFromFlags(cmd)
	if err != nil {
		return err
	}

	var st storage.Store = storage.NewMemStore()
	if useStore, _ := cmd.Flags().GetBool("store"); useStore {
		st, err = openStore(ctx)
		if err != nil {
			return err
		}
	}
	defer st.Stop()

	v := storage.NewScheduleValidator(st)

	if err := v.IsScheduleValid(ctx, s); err != nil {
		return err
	}

	auths, err := f.Authorities()
	if err != nil {
		return err
	}

	for i := range auths {
		if err := v.IsAuthorityValid(ctx, &auths[i]); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "valid")

	return nil
}
