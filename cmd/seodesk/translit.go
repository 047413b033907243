package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/seodesk/seodesk/translit"
	"github.com/spf13/cobra"
)

func newTranslitCommand() *cobra.Command {
	var (
		urlMode bool
		format  string
	)

	cmd := &cobra.Command{
		Use:   "translit [text...]",
		Short: "Turn Cyrillic text or URL paths into Latin slugs",
		Long: `Transliterates each line of input. Arguments are joined into one line;
without arguments, lines are read from stdin. With --url only the path of
each URL is rewritten.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			input := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				input = string(data)
			}

			pairs := translit.ProcessLines(input, urlMode)
			if format == formatJSON {
				if pairs == nil {
					pairs = []translit.Pair{}
				}
				return printJSON(pairs)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Original", "Translit"})
			for _, p := range pairs {
				if p.Translit == "" {
					continue
				}
				t.AppendRow(table.Row{p.Original, p.Translit})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&urlMode, "url", false, "treat each line as a URL and rewrite only its path")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table or json")
	return cmd
}
