// Package cli defines the tirmite command tree. Commands decode their
// options through internal/config and hand them to a Runner.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tirmite/internal/cliutil"
	"tirmite/internal/config"
	"tirmite/internal/version"
)

// Runner executes a decoded command.
type Runner func(ctx context.Context, o config.Options) error

// UsageError marks errors caused by bad arguments or options.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usage(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// NewRoot builds a fresh command tree writing to stdout and stderr.
func NewRoot(stdout, stderr io.Writer, run Runner) *cobra.Command {
	root := &cobra.Command{
		Use:   "tirmite",
		Short: "Annotate MITEs and DNA transposons from terminal inverted repeat hits",
		Long: `tirmite finds terminal inverted repeat (TIR) hits in a genome, pairs
hits of the same model on opposite strands by iterated mutual-best matching,
and reports each pair as a candidate element.

"tirmite run" searches the genome with nhmmer (or bowtie2) first;
"tirmite pair" pairs hit tables you already have.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("tirmite version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usage(err) })

	root.AddCommand(newRunCmd(run), newPairCmd(run), newVersionCmd())
	return root
}

func newRunCmd(run Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run --genome FILE (--hmm-dir DIR | --hmm-file FILE | --aln-dir DIR | --aln-file FILE | --use-bowtie2 --bt-tir FILE)",
		Short: "Search a genome for TIR hits and pair them",
		Example: `  tirmite run --genome genome.fa --hmm-file DTA.hmm --max-dist 10000 --gff-out elements.gff3
  tirmite run --genome genome.fa --aln-dir alignments/ --aln-format clustal --cores 8
  tirmite run --genome genome.fa --use-bowtie2 --bt-tir shortTIR.fa --prefix run1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := config.Load(viper.New(), cmd.Flags(), config.ModeRun, nil)
			if err != nil {
				return usage(err)
			}
			return run(cmd.Context(), o)
		},
	}
	config.RegisterShared(cmd.Flags())
	config.RegisterRun(cmd.Flags())
	return cmd
}

func newPairCmd(run Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair [hit files...]",
		Short: "Pair pre-computed TIR hits (nhmmer tblout, BED or SAM)",
		Example: `  tirmite pair hits/*.tab --genome genome.fa --gff-out elements.gff3
  tirmite pair --hits mapped.bed --model Tc1 --max-dist 5000 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := cliutil.ExpandPositionals(args)
			if err != nil {
				return usage(err)
			}
			o, err := config.Load(viper.New(), cmd.Flags(), config.ModePair, files)
			if err != nil {
				return usage(err)
			}
			return run(cmd.Context(), o)
		},
	}
	config.RegisterShared(cmd.Flags())
	config.RegisterPair(cmd.Flags())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tirmite version %s\n", version.Version)
		},
	}
}
