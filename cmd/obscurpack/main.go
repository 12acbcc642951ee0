// Command obscurpack is a minimal demonstration CLI over the obscurcore
// library: pack a directory of files into a single encrypted package
// stream. Its unpack command always returns an error. It exists to exercise the library end
// to end, not as a spec'd component in its own right.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rescale-labs/obscurcore"
	"github.com/rescale-labs/obscurcore/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "obscurpack",
		Short: "Pack and unpack directories as ObscurCore packages",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose {
				logging.SetGlobalLevel(-1)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newPackCmd(), newUnpackCmd())
	return root
}

func newPackCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "pack <srcDir> <outFile>",
		Short: "Encrypt every file under srcDir into a single package stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcDir, outPath := args[0], args[1]
			preKey := []byte(key)
			if len(preKey) == 0 {
				return fmt.Errorf("--key is required")
			}

			var paths []string
			if err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
				if err != nil || info.IsDir() {
					return err
				}
				paths = append(paths, path)
				return nil
			}); err != nil {
				return fmt.Errorf("walking %s: %w", srcDir, err)
			}

			items := make([]*obscurcore.PayloadItem, 0, len(paths))
			readers := make(map[uuid.UUID]io.Reader)
			for _, p := range paths {
				rel, err := filepath.Rel(srcDir, p)
				if err != nil {
					return err
				}
				info, err := os.Stat(p)
				if err != nil {
					return err
				}
				item := obscurcore.NewPayloadItem(rel, info.Size(),
					obscurcore.CipherConfiguration{
						Kind: obscurcore.CipherBlock, Algorithm: "aes", Mode: obscurcore.ModeCtr,
						KeySizeBits: 256, IVSizeBytes: 16,
					},
					obscurcore.AuthenticationConfiguration{
						Kind: obscurcore.AuthMac, Algorithm: "hmac-sha256", KeySizeBits: 256,
					},
				)
				item.PreKey = preKey
				items = append(items, item)
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				defer f.Close()
				readers[item.ID] = f
				logger.Debug().Str("item", rel).Msg("queued")
			}

			pkg, err := obscurcore.NewEncryptingPackage(items, obscurcore.PayloadConfiguration{Scheme: obscurcore.LayoutSimple})
			if err != nil {
				return fmt.Errorf("constructing package: %w", err)
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			if err := pkg.Encrypt(out, readers); err != nil {
				return fmt.Errorf("encrypting: %w", err)
			}
			logger.Info().Int("items", len(items)).Str("out", outPath).Msg("packed")
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "pre-key material shared by every item (demo only — not a KDF over a passphrase)")
	return cmd
}

func newUnpackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Not yet wired: unpacking needs the same item manifest used at pack time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("unpack requires the item manifest (ID, path, length) produced at pack time; this demo CLI does not yet persist one")
		},
	}
	return cmd
}
