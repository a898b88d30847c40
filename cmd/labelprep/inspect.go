package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hejijunhao/labelprep/internal/engine/normalizer"
	"github.com/hejijunhao/labelprep/internal/engine/taxonomy"
)

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <annotation>",
		Short: "Normalize one annotation string and print its codes",
		Example: `  labelprep parse "['Drugs', 'weapon.']"
  labelprep parse --exclude 7 "['nsfw', 'gambling']"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, err := a.taxonomy()
			if err != nil {
				return err
			}
			exclude, err := a.cfg.ExcludeSet()
			if err != nil {
				return err
			}
			if err := tax.CheckCodes(exclude); err != nil {
				return err
			}
			set, err := normalizer.New(tax).Normalize(args[0], exclude)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, set)
			for _, c := range set {
				name, _ := tax.Name(c)
				fmt.Fprintf(a.stdout, "  %d\t%s\n", c, name)
			}
			return nil
		},
	}
}

func newTaxonomyCmd(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Validate the taxonomy and list each code with its surface forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, err := a.taxonomy()
			if err != nil {
				return err
			}
			if asYAML {
				enc := yaml.NewEncoder(a.stdout)
				enc.SetIndent(2)
				if err := enc.Encode(taxonomy.Document{Labels: tax.Labels()}); err != nil {
					return err
				}
				return enc.Close()
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tFORMS")
			for _, l := range tax.Labels() {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", l.Code, l.Name, strings.Join(tax.Forms(l.Code), ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the effective taxonomy as YAML")
	return cmd
}
