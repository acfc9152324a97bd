package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/event"
	"github.com/sells-group/leadscout/internal/export"
)

var (
	searchLimit  int
	searchExport string
	searchOut    string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Discover businesses matching a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env := initPipeline()
		defer env.Close()

		found := 0
		for ev := range env.Orchestrator.Search(ctx, args[0], searchLimit) {
			switch ev.Type {
			case event.TypeStatus:
				fmt.Println(ev.Message)
			case event.TypeCompany:
				found++
				fmt.Printf("  - %s (%s)\n", ev.Data.Name, ev.Data.SourceURL)
			case event.TypeError:
				fmt.Fprintln(os.Stderr, ev.Message)
			case event.TypeDone:
				if ev.Message != "" {
					fmt.Println(ev.Message)
				}
			}
		}

		if ctx.Err() != nil {
			return eris.New("search interrupted")
		}

		if searchExport != "" {
			data, err := export.Marshal(env.Buffer.Snapshot(), searchExport)
			if err != nil {
				return err
			}
			out := searchOut
			if out == "" {
				out = export.Filename(searchExport)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return eris.Wrap(err, "write export file")
			}
			fmt.Printf("Wrote %d companies to %s\n", found, out)
		}

		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "max search candidates to consider")
	searchCmd.Flags().StringVar(&searchExport, "export", "", "export results after the session (json or csv)")
	searchCmd.Flags().StringVar(&searchOut, "out", "", "export file path (default companies.<format>)")
	rootCmd.AddCommand(searchCmd)
}
