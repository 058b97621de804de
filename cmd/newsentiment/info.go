package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/sources"
)

// sourcesCmd creates the "sources" subcommand.
func sourcesCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the configured news sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			reg, err := sourceInfo(cfg)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}

			w := cmd.OutOrStdout()
			if dump {
				list := make([]sources.Source, 0, reg.Len())
				for _, name := range reg.Names() {
					s, err := reg.Describe(name)
					if err != nil {
						return err
					}
					list = append(list, s)
				}
				data, err := sources.Marshal(list)
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			}

			rows := [][]string{{"NAME", "METHOD", "REGION", "LISTINGS", "FEEDS"}}
			for _, name := range reg.Names() {
				s, err := reg.Describe(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					s.Name,
					string(s.Method),
					s.Region,
					fmt.Sprint(len(s.ListingURLs)),
					fmt.Sprint(len(s.FeedURLs)),
				})
			}
			fmt.Fprint(w, table(rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "yaml", false, "print the sources as an editable YAML sources file")
	return cmd
}

// table left-aligns columns by display width.
func table(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]+2))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsentiment %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			applyStorageOverrides(cfg)
			if err := config.Validate(cfg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
