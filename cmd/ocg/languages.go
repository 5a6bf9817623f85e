package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/ocg/internal/clientgen"
	_ "github.com/pthm/ocg/internal/factory" // registers the generators
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, lang := range clientgen.Languages() {
			status := "available"
			if !clientgen.Registered(lang) {
				status = "no generator"
			}
			fmt.Printf("%-12s %s\n", lang, status)
		}
	},
}
