package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnavshah/duty-scheduler-go/pkg/database"
	"github.com/arnavshah/duty-scheduler-go/pkg/report"
	"github.com/arnavshah/duty-scheduler-go/pkg/roster"
)

func newRosterCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster related commands",
	}

	var class string
	contacts := &cobra.Command{
		Use:   "contacts",
		Short: "Print family contacts class by class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cfg, opts.rosterPath)
			if err != nil {
				return err
			}
			classes, err := report.SelectClasses(reg, class)
			if err != nil {
				return err
			}
			return report.WriteClassContacts(cmd.OutOrStdout(), classes)
		},
	}
	contacts.Flags().StringVar(&class, "class", "language", `"language", "culture" or class names, e.g. B1P,Dance`)

	var checkClass string
	checks := &cobra.Command{
		Use:   "checks",
		Short: "Summarise tuition checks of classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cfg, opts.rosterPath)
			if err != nil {
				return err
			}
			classes, err := report.SelectClasses(reg, checkClass)
			if err != nil {
				return err
			}
			return report.WriteCheckSummary(cmd.OutOrStdout(), checkClass, classes)
		},
	}
	checks.Flags().StringVar(&checkClass, "class", "", "class names, e.g. B1P,B2P")
	_ = checks.MarkFlagRequired("class")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Store the roster file in the registrations table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			path := opts.rosterPath
			if path == "" {
				path = cfg.Roster.Path
			}
			rows, err := readRows(path)
			if err != nil {
				return err
			}
			if _, err := roster.Build(rows); err != nil {
				return err
			}
			db, err := database.InitDB(cfg.Database)
			if err != nil {
				return err
			}
			n, err := database.ImportRoster(db, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d registrations\n", n)
			return nil
		},
	}

	cmd.AddCommand(contacts, checks, importCmd)
	return cmd
}
