package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcfw/mastersched/pkg/cryptography"
)

var (
	keyCmd = &cobra.Command{
		Use:   "key",
		Short: "public key commands",
	}

	key_inspectCmd = &cobra.Command{
		Use:   "inspect KEY",
		Short: "print the forms of a public key",
		Args:  cobra.ExactArgs(1),
		RunE:  runKeyInspect,
	}
)

func runKeyInspect(cmd *cobra.Command, args []string) error {
	k, err := cryptography.ParsePublicKey(args[0])
	if err != nil {
		k, err = cryptography.DecodeMultibase(args[0])
		if err != nil {
			return err
		}
	}

	mb, err := cryptography.EncodeMultibase(k)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "type: %s\n", k.Type)
	fmt.Fprintf(w, "key: %s\n", k.String())
	if k.Type == cryptography.KeyTypeK1 {
		fmt.Fprintf(w, "legacy: %s\n", k.LegacyString())
	}
	fmt.Fprintf(w, "multibase: %s\n", mb)
	fmt.Fprintf(w, "wire: %s\n", hex.EncodeToString(k.Bytes()))

	if err := k.Validate(); err != nil {
		fmt.Fprintf(w, "valid: false (%s)\n", err)
	} else {
		fmt.Fprintln(w, "valid: true")
	}

	return nil
}
