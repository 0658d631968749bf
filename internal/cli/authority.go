package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/mastersched/pkg/cryptography"
	"github.com/tcfw/mastersched/pkg/host"
	"github.com/tcfw/mastersched/pkg/schedule"
	"github.com/tcfw/mastersched/pkg/storage"
)

var (
	authorityCmd = &cobra.Command{
		Use:   "authority",
		Short: "block signing authority commands",
	}

	authority_validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "validate a producer authority file",
		RunE:  runAuthorityValidate,
	}

	authority_checkCmd = &cobra.Command{
		Use:   "check",
		Short: "check whether a set of signing keys satisfies an authority",
		RunE:  runAuthorityCheck,
	}
)

func init() {
	for _, c := range []*cobra.Command{authority_validateCmd, authority_checkCmd} {
		c.Flags().StringP("file", "f", "-", "authority file. Use '-' for stdin")
	}

	authority_checkCmd.Flags().StringArrayP("signer", "s", []string{}, "signing public key. Can be used multiple times")
}

func authorityFromFlags(cmd *cobra.Command) (*schedule.ProducerAuthority, error) {
	path, _ := cmd.Flags().GetString("file")

	f, err := readProducerFile(path)
	if err != nil {
		return nil, err
	}

	a, err := f.ProducerAuthority()
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func runAuthorityValidate(cmd *cobra.Command, args []string) error {
	a, err := authorityFromFlags(cmd)
	if err != nil {
		return err
	}

	v := storage.NewScheduleValidator(storage.NewMemStore())
	if err := v.IsAuthorityValid(context.Background(), a); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "valid")

	return nil
}

func runAuthorityCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := authorityFromFlags(cmd)
	if err != nil {
		return err
	}

	v0, ok := a.Authority.(schedule.BlockSigningAuthorityV0)
	if !ok {
		return errors.Errorf("unsupported authority tag %d", a.Authority.Tag())
	}

	signerStrs, _ := cmd.Flags().GetStringArray("signer")
	signers := make([]cryptography.PublicKey, 0, len(signerStrs))
	for _, s := range signerStrs {
		k, err := cryptography.ParsePublicKey(s)
		if err != nil {
			return errors.Wrapf(err, "signer %s", s)
		}
		signers = append(signers, k)
	}

	h, err := host.NewLocal(ctx)
	if err != nil {
		return err
	}

	_, err = h.Execute(func() {
		host.Check(h, a.IsValid(), "authority is not valid")
		host.Check(h, v0.KeysSatisfy(signers), fmt.Sprintf("signers do not satisfy authority of %s", a.ProducerName))
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "satisfied")

	return nil
}
