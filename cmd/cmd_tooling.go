package cmd

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/drop-offerer/common/errs"
	"github.com/gaze-network/drop-offerer/internal/config"
	"github.com/gaze-network/drop-offerer/modules/drop"
	"github.com/gaze-network/drop-offerer/pkg/crypto"
	"github.com/gaze-network/drop-offerer/pkg/eip712"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type ioOptions struct {
	Input  string
	Output string
}

func (o *ioOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.Input, "input", "i", "-", "Input JSON file, `-` reads stdin")
	flags.StringVarP(&o.Output, "output", "o", "-", "Output JSON file, `-` writes stdout")
}

func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(errs.InvalidArgument, "invalid input: "+err.Error())
	}
	return nil
}

func writeJSON(cmd *cobra.Command, path string, v any) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(v), "write output")
}

func NewAllowListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Allow-list tooling",
	}

	opts := &ioOptions{}
	buildCmd := &cobra.Command{
		Use:     "build",
		Short:   "Build the allow-list merkle root and the proof of every entry",
		Example: `drop-offerer allowlist build -i entries.json -o allowlist.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entries []drop.AllowListEntry
			if err := readJSON(cmd, opts.Input, &entries); err != nil {
				return errors.WithStack(err)
			}
			allowList, err := drop.BuildAllowList(entries)
			if err != nil {
				return errors.WithStack(err)
			}
			return writeJSON(cmd, opts.Output, allowList)
		},
	}
	opts.bind(buildCmd)

	cmd.AddCommand(buildCmd)
	return cmd
}

type signMintCmdOptions struct {
	ioOptions
	KeyFile           string
	ChainID           uint64
	VerifyingContract string
}

func NewSignMintCommand() *cobra.Command {
	opts := &signMintCmdOptions{}

	cmd := &cobra.Command{
		Use:     "sign-mint",
		Short:   "Sign a signed-mint authorization and print its extra data",
		Example: `drop-offerer sign-mint --key-file /data/keys/priv.key -i request.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return signMintHandler(opts, cmd)
		},
	}

	opts.bind(cmd)
	flags := cmd.Flags()
	flags.StringVar(&opts.KeyFile, "key-file", "/data/keys/priv.key", "Hex encoded signer private key file")
	flags.Uint64Var(&opts.ChainID, "chain-id", 0, "Domain chain id. Default is modules.drop.chain_id")
	flags.StringVar(&opts.VerifyingContract, "verifying-contract", "", "Domain verifying contract. Default is modules.drop.self")

	return cmd
}

func signMintHandler(opts *signMintCmdOptions, cmd *cobra.Command) error {
	conf := config.Load().Modules.Drop

	domain := eip712.Domain{
		Name:    conf.Name,
		Version: conf.DomainVersion,
		ChainID: lo.Ternary(opts.ChainID != 0, opts.ChainID, conf.ChainID),
	}
	if domain.ChainID == 0 {
		return errors.Wrap(errs.InvalidArgument, "--chain-id is required when modules.drop.chain_id is not configured")
	}
	verifyingContract := lo.Ternary(opts.VerifyingContract != "", opts.VerifyingContract, conf.Self)
	if !common.IsHexAddress(verifyingContract) {
		return errors.Wrapf(errs.InvalidArgument, "invalid verifying contract %q", verifyingContract)
	}
	domain.VerifyingContract = common.HexToAddress(verifyingContract)

	key, err := os.ReadFile(opts.KeyFile)
	if err != nil {
		return errors.Wrap(err, "read key file")
	}
	signer, err := crypto.New(strings.TrimSpace(string(key)))
	if err != nil {
		return errors.WithStack(err)
	}

	var req drop.SignMintRequest
	if err := readJSON(cmd, opts.Input, &req); err != nil {
		return errors.WithStack(err)
	}
	signed, err := drop.SignMint(signer, domain, req)
	if err != nil {
		return errors.WithStack(err)
	}
	return writeJSON(cmd, opts.Output, signed)
}
