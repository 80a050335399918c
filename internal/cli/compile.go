package cli

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/cobra"

	s "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/domain"
	spec "github.com/krew-solutions/ascetic-dynamodb-go/asceticdynamo/specification/infrastructure"
)

// CompileOptions holds flags for the compile and conditions commands.
type CompileOptions struct {
	*RootOptions
	Key bool // restrict to key condition operators
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <predicate>",
		Short: "Compile a CEL predicate to a condition expression",
		Long: `Compile a CEL predicate to a DynamoDB condition expression with its
ExpressionAttributeNames and ExpressionAttributeValues.`,
		Example: `  dynapred compile 'pk == "ORDER#1" && size(tags) > 2'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Key, "key", "k", false, "allow key condition operators only")

	return cmd
}

func runCompile(opts *CompileOptions, text string, cmd *cobra.Command) error {
	visitorOpts, n, err := opts.prepare(text, cmd)
	if err != nil {
		return err
	}
	exp, err := spec.BuildExpression(n, visitorOpts...)
	if err != nil {
		return err
	}
	return spec.WriteJSON(cmd.OutOrStdout(), exp)
}

// NewConditionsCommand creates the conditions command.
func NewConditionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "conditions <predicate>",
		Short: "Compile a CEL predicate to legacy conditions",
		Long: `Compile a CEL predicate to the legacy ScanFilter/QueryFilter/KeyConditions
form. Conditions with no legacy form (size, attribute_type, negations) are
left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConditions(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Key, "key", "k", false, "allow key condition operators only")

	return cmd
}

// ConditionsOutput is what the conditions command prints.
type ConditionsOutput struct {
	Conditions          map[string]any            `json:"Conditions"`
	ConditionalOperator types.ConditionalOperator `json:"ConditionalOperator,omitempty"`
}

func runConditions(opts *CompileOptions, text string, cmd *cobra.Command) error {
	visitorOpts, n, err := opts.prepare(text, cmd)
	if err != nil {
		return err
	}
	v := spec.NewDynamodbVisitor(visitorOpts...)
	if err := n.Accept(v); err != nil {
		return err
	}
	conditions, err := v.Conditions()
	if err != nil {
		return err
	}
	out := ConditionsOutput{Conditions: spec.ConditionsJSON(conditions)}
	if len(conditions) > 1 {
		if out.ConditionalOperator, err = v.ConditionalOperator(); err != nil {
			return err
		}
	}
	return spec.WriteJSON(cmd.OutOrStdout(), out)
}

func (o *CompileOptions) prepare(text string, cmd *cobra.Command) ([]spec.DynamodbVisitorOption, s.Visitable, error) {
	cfg, err := LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	n, err := cfg.Parse(text)
	if err != nil {
		return nil, nil, err
	}
	visitorOpts := cfg.VisitorOptions(o.Logger(cmd.ErrOrStderr()))
	if o.Key {
		visitorOpts = append(visitorOpts, spec.WithAllowedOperations(spec.KeyConditionsOnly))
	}
	return visitorOpts, n, nil
}
