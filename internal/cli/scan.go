package cli

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/request"
	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Key string // key condition; turns the scan into a query

	newClient func(ctx context.Context, cfg request.ClientConfig) (request.Client, error)
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	return newScanCommand(rootOpts, newClient)
}

func newScanCommand(
	rootOpts *RootOptions, connect func(context.Context, request.ClientConfig) (request.Client, error),
) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts, newClient: connect}

	cmd := &cobra.Command{
		Use:   "scan [predicate]",
		Short: "Read the items of the configured table matching a predicate",
		Long: `Scan the table named in the config file, filtered by the predicate.
With --key the table is queried instead. Items are printed as JSON.`,
		Example: `  dynapred -c orders.yaml scan 'total > 100' --key 'pk == "ORDER#1"'`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			return runScan(opts, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "key condition predicate")

	return cmd
}

func newClient(ctx context.Context, cfg request.ClientConfig) (request.Client, error) {
	return request.NewClient(ctx, cfg)
}

func runScan(opts *ScanOptions, text string, cmd *cobra.Command) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Table == "" {
		return errors.New("scan needs a table in the config file")
	}
	filter, err := parseOptional(cfg, text)
	if err != nil {
		return errors.Wrap(err, "filter")
	}
	key, err := parseOptional(cfg, opts.Key)
	if err != nil {
		return errors.Wrap(err, "key")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := opts.newClient(ctx, cfg.Client)
	if err != nil {
		return err
	}
	logger := opts.Logger(cmd.ErrOrStderr())
	tableOpts := []request.TableOption{request.WithLogger(logger)}
	if schema := cfg.Schema(); schema != nil {
		tableOpts = append(tableOpts, request.WithSchema(schema))
	}
	table := request.NewTable(client, cfg.Table, tableOpts...)

	var items []map[string]types.AttributeValue
	if key != nil {
		items, err = table.Query(ctx, key, filter)
	} else {
		items, err = table.Scan(ctx, filter)
	}
	if err != nil {
		return err
	}

	out := make([]map[string]any, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return errors.Wrap(err, "decoding items")
	}
	return spec.WriteJSON(cmd.OutOrStdout(), out)
}

func parseOptional(cfg *Config, text string) (s.Visitable, error) {
	if text == "" {
		return nil, nil
	}
	return cfg.Parse(text)
}
