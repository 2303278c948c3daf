package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"greptui/internal/config"
	"greptui/internal/domain"
)

var version = "dev"

type flagSpec struct {
	flag  domain.Flag
	short string
	usage string
}

var flagSpecs = []flagSpec{
	{domain.IgnoreCase, "i", "ignore case differences"},
	{domain.FixedStrings, "F", "match the pattern as a fixed string"},
	{domain.WordRegexp, "w", "match only at word boundaries"},
	{domain.InvertMatch, "v", "select non-matching lines"},
	{domain.ExtendedRegexp, "E", "use POSIX extended regexps"},
	{domain.PerlRegexp, "P", "use Perl-compatible regexps"},
	{domain.Untracked, "", "also search untracked files"},
	{domain.NoIndex, "", "search files in the current directory not managed by git"},
	{domain.NoRecursive, "", "do not descend into subdirectories"},
}

type options struct {
	configPath string
	logLevel   string
	pattern    string
	andPattern string
	notPattern string
	flags      map[domain.Flag]*bool
}

// set returns the search flags given on the command line
func (o *options) set() []domain.Flag {
	var out []domain.Flag
	for _, spec := range flagSpecs {
		if on := o.flags[spec.flag]; on != nil && *on {
			out = append(out, spec.flag)
		}
	}
	return out
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "greptui: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{flags: make(map[domain.Flag]*bool)}

	cmd := &cobra.Command{
		Use:   "greptui [pattern] [-- pathspec...]",
		Short: "Interactive git grep",
		Long: `Interactive front end for git grep.

Type a pattern and press enter to search the current repository. Results are
grouped by file; move through them, open a match in the pager, refine the
pattern and search again. On exit the last git grep command line is printed
so it can be reused in a shell.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	for _, spec := range flagSpecs {
		opts.flags[spec.flag] = cmd.Flags().BoolP(spec.flag.String(), spec.short, false, spec.usage)
	}
	cmd.Flags().StringVarP(&opts.pattern, "regexp", "e", "", "initial pattern; all arguments are then pathspecs")
	cmd.Flags().StringVarP(&opts.andPattern, "and", "a", "", "lines must also match this pattern")
	cmd.Flags().StringVar(&opts.notPattern, "not", "", "lines must not match this pattern")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.NewConfigService(opts.configPath).Path())
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := config.NewConfigService(opts.configPath)
			if _, err := os.Stat(svc.Path()); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", svc.Path())
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config file: %w", err)
			}
			if err := svc.Save(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", svc.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
