package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rvpacker/internal/assetcrypto"
	"rvpacker/internal/fileutil"
	"rvpacker/internal/logging"
)

func newAssetCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Decrypt and encrypt MV/MZ media assets",
	}
	cmd.AddCommand(newAssetDecryptCommand(ctx))
	cmd.AddCommand(newAssetEncryptCommand(ctx))
	cmd.AddCommand(newAssetExtractKeyCommand(ctx))
	return cmd
}

func newAssetDecryptCommand(ctx *commandContext) *cobra.Command {
	var file string
	var keyFlag string

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt encrypted asset files",
		Long: fmt.Sprintf(`Decrypt encrypted media assets (%s) back into their plain
formats. The key is taken from --key, or recovered from the game's
System.json when it sits under the input directory.`,
			strings.Join(assetcrypto.SortedExtensions(assetcrypto.OpDecrypt, assetcrypto.VariantMV), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveDecryptKey(ctx, keyFlag)
			if err != nil {
				return err
			}
			return runAssetOp(ctx, cmd, assetcrypto.OpDecrypt, assetcrypto.VariantMV, key, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Process a single file instead of the input directory")
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "", "Encryption key as 32 hex characters")

	return cmd
}

func newAssetEncryptCommand(ctx *commandContext) *cobra.Command {
	var file string
	var keyFlag string
	var engineFlag string

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt plain asset files",
		Long: `Encrypt plain media assets (.png, .ogg, .m4a) into the engine's encrypted
formats. --engine selects the extension scheme: mv produces .rpgmvp style
names, mz appends an underscore. Without --key the engine's well-known
default key is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := assetcrypto.ParseVariant(engineFlag)
			if err != nil {
				return err
			}
			key := assetcrypto.DefaultEncryptKey
			if keyFlag != "" {
				key, err = assetcrypto.ParseKey(keyFlag)
				if err != nil {
					return err
				}
			}
			return runAssetOp(ctx, cmd, assetcrypto.OpEncrypt, variant, key, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Process a single file instead of the input directory")
	cmd.Flags().StringVarP(&keyFlag, "key", "k", "", "Encryption key as 32 hex characters")
	cmd.Flags().StringVar(&engineFlag, "engine", "mv", "Target engine: mv or mz")

	return cmd
}

func newAssetExtractKeyCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "extract-key",
		Short: "Recover the asset encryption key",
		Long: `Recover the asset encryption key from a System.json file or from an
encrypted PNG asset. Without --file the input directory's System.json is
probed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var key assetcrypto.Key
			var err error
			switch {
			case file == "":
				key, err = keyFromInputDir(ctx)
			case strings.EqualFold(filepath.Ext(file), ".json"):
				key, err = keyFromSystemFile(file)
			default:
				var data []byte
				data, err = os.ReadFile(file)
				if err == nil {
					key, err = assetcrypto.KeyFromPNG(data)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "System.json or encrypted PNG to recover the key from")

	return cmd
}

func runAssetOp(ctx *commandContext, cmd *cobra.Command, op assetcrypto.Op, variant assetcrypto.Variant, key assetcrypto.Key, file string) error {
	log, err := ctx.logger()
	if err != nil {
		return err
	}

	var results []assetcrypto.Result
	if file != "" {
		result, err := assetcrypto.ProcessFile(file, op, variant, key)
		if err != nil {
			return err
		}
		results = []assetcrypto.Result{result}
	} else {
		results, err = assetcrypto.ProcessDir(ctx.inputDir(), op, variant, key)
		if err != nil {
			return err
		}
	}

	if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files to %s in %s\n", op, ctx.inputDir())
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			filepath.Base(result.Source),
			filepath.Base(result.Output),
			strconv.Itoa(result.Bytes),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Source", "Output", "Bytes"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))

	log.Info("assets processed",
		logging.String("op", op.String()),
		logging.Int("files", len(results)))
	return nil
}

// resolveDecryptKey prefers an explicit --key and falls back to the
// System.json under the input directory.
func resolveDecryptKey(ctx *commandContext, keyFlag string) (assetcrypto.Key, error) {
	if keyFlag != "" {
		return assetcrypto.ParseKey(keyFlag)
	}
	key, err := keyFromInputDir(ctx)
	if err != nil {
		return assetcrypto.Key{}, fmt.Errorf("no --key given and no key found under %s: %w", ctx.inputDir(), err)
	}
	return key, nil
}

// keyFromInputDir probes the MV and MZ System.json locations under the
// input directory.
func keyFromInputDir(ctx *commandContext) (assetcrypto.Key, error) {
	for _, rel := range []string{
		filepath.Join("data", "System.json"),
		filepath.Join("www", "data", "System.json"),
	} {
		path := filepath.Join(ctx.inputDir(), rel)
		if fileutil.Exists(path) {
			return keyFromSystemFile(path)
		}
	}
	return assetcrypto.Key{}, fmt.Errorf("no System.json under %s", ctx.inputDir())
}

func keyFromSystemFile(path string) (assetcrypto.Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assetcrypto.Key{}, err
	}
	key, err := assetcrypto.KeyFromSystemJSON(data)
	if err != nil {
		return assetcrypto.Key{}, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}
