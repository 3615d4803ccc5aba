package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"zns/internal/platform/config"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

func newQuoteCmd(c *cli) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "quote <label>",
		Short: "Price a registration against the configured state",
		Long: `Price registering <label> under --parent, which is either a 0x-prefixed
domain hash or a dot-separated name such as "wilder.cat". Without --parent
the label is priced as a top-level domain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentHash, err := parseParent(parent)
			if err != nil {
				return err
			}
			return quote(cmd, c, parentHash, args[0])
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent domain hash or name")
	return cmd
}

func quote(cmd *cobra.Command, c *cli, parent common.Hash, label string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	// An in-memory store starts empty on every run.
	if c.cfg.Storage.Backend == config.BackendMemory {
		if err := a.bootstrap(ctx); err != nil {
			return err
		}
	}

	q, err := a.sys.Quote(ctx, parent, label)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(q)
}

func parseParent(raw string) (common.Hash, error) {
	if raw == "" {
		return domain.Root, nil
	}
	if strings.HasPrefix(raw, "0x") {
		b, err := hexutil.Decode(raw)
		if err != nil || len(b) != common.HashLength {
			return common.Hash{}, dErrors.Newf(dErrors.CodeValidation, "%q is not a 32-byte hex hash", raw)
		}
		return common.BytesToHash(b), nil
	}
	labels := strings.Split(raw, ".")
	for _, label := range labels {
		if err := domain.ValidateLabel(label); err != nil {
			return common.Hash{}, err
		}
	}
	return domain.HashPath(labels...), nil
}
