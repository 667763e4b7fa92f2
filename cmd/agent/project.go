package main

import (
	"github.com/cmlabs-hris/sitecrew-go/internal/domain/project"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage construction sites",
}

var projectAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Register a project",
	Example: `  agent project add --name "Tower B" --location "Whitefield, Bengaluru"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		created, err := app.projects.Create(ctx, projectRequestFromFlags(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd, created)
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project-id>",
	Short: "Replace a project's details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		updated, err := app.projects.Update(ctx, project.UpdateProjectRequest{
			ID:                   args[0],
			CreateProjectRequest: projectRequestFromFlags(cmd),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, updated)
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		projects, err := app.projects.List(cmd.Context(), all)
		if err != nil {
			return err
		}
		return printJSON(cmd, projects)
	},
}

var projectDeactivateCmd = &cobra.Command{
	Use:   "deactivate <project-id>",
	Short: "Soft delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		p, err := app.projects.Deactivate(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, p)
	},
}

func projectRequestFromFlags(cmd *cobra.Command) project.CreateProjectRequest {
	name, _ := cmd.Flags().GetString("name")
	status, _ := cmd.Flags().GetString("status")
	return project.CreateProjectRequest{
		Name:     name,
		Location: optionalString(cmd, "location"),
		Status:   status,
	}
}

func init() {
	for _, c := range []*cobra.Command{projectAddCmd, projectUpdateCmd} {
		c.Flags().String("name", "", "Project name")
		c.Flags().String("location", "", "Site location")
		c.Flags().String("status", "", "active, inactive or completed (default active)")
		_ = c.MarkFlagRequired("name")
	}
	projectListCmd.Flags().Bool("all", false, "Include deactivated projects")

	projectCmd.AddCommand(projectAddCmd, projectUpdateCmd, projectListCmd, projectDeactivateCmd)
	rootCmd.AddCommand(projectCmd)
}
