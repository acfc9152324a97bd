package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Anthropic.APIKey != "" {
			shown.Anthropic.APIKey = "[redacted]"
		}
		out, err := yaml.Marshal(shown)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
