package main

import (
	"fmt"
	"os"

	"github.com/bcnelson/yatube/internal/service"
	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage groups",
}

var groupsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create or update groups from a YAML file",
	Long: `Reads a YAML document of the form

  groups:
    - title: Cats
      slug: cats
      description: Everything about cats

Groups whose slug already exists get their title and description replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := service.NewGroupService(store, logger).Import(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		cmd.Printf("created %d, updated %d groups\n", result.Created, result.Updated)
		return nil
	},
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		groups, err := service.NewGroupService(store, logger).List(cmd.Context())
		if err != nil {
			return err
		}
		for _, g := range groups {
			cmd.Printf("%s\t%s\n", g.Slug, g.Title)
		}
		return nil
	},
}

func init() {
	groupsCmd.AddCommand(groupsImportCmd, groupsListCmd)
}
