package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/event"
	"github.com/sells-group/leadscout/internal/export"
	"github.com/sells-group/leadscout/internal/model"
)

var (
	enrichExport string
	enrichOut    string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <companies.json>",
	Short: "Enrich contact details for previously discovered companies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read companies file")
		}
		var companies []model.Company
		if err := json.Unmarshal(raw, &companies); err != nil {
			return eris.Wrap(err, "parse companies file")
		}

		env := initPipeline()
		defer env.Close()

		for ev := range env.Orchestrator.Enrich(ctx, companies) {
			switch ev.Type {
			case event.TypeStatus:
				fmt.Println(ev.Message)
			case event.TypeCompany:
				fmt.Printf("  - %s email=%q phone=%q\n", ev.Data.Name, ev.Data.Email, ev.Data.Phone)
			case event.TypeError:
				fmt.Fprintln(os.Stderr, ev.Message)
			case event.TypeDone:
				if ev.Message != "" {
					fmt.Println(ev.Message)
				}
			}
		}

		if ctx.Err() != nil {
			return eris.New("enrichment interrupted")
		}

		if enrichExport != "" {
			data, err := export.Marshal(env.Buffer.Snapshot(), enrichExport)
			if err != nil {
				return err
			}
			out := enrichOut
			if out == "" {
				out = export.Filename(enrichExport)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return eris.Wrap(err, "write export file")
			}
			fmt.Printf("Wrote enriched companies to %s\n", out)
		}

		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichExport, "export", "", "export enriched results (json or csv)")
	enrichCmd.Flags().StringVar(&enrichOut, "out", "", "export file path (default companies.<format>)")
	rootCmd.AddCommand(enrichCmd)
}
