package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/vfs/pkg/vfs"
	"github.com/arthur-debert/vfs/pkg/vfs/plan"
)

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage step plans",
		Long:  "Create, validate and execute plans of filesystem steps stored as JSON or YAML",
	}

	cmd.AddCommand(newPlanExecuteCommand())
	cmd.AddCommand(newPlanCreateCommand())
	cmd.AddCommand(newPlanValidateCommand())

	return cmd
}

func readPlan(planFile string) (*plan.Plan, error) {
	data, err := os.ReadFile(planFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", planFile, err)
	}
	p, err := plan.Unmarshal(data, plan.FormatOf(planFile))
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return p, nil
}

func newPlanExecuteCommand() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "execute <plan-file>",
		Short: "Execute a plan",
		Long:  "Execute the steps of a plan file in dependency order against the selected backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			b := vfs.Current()
			result, err := plan.Execute(cmd.Context(), p, b)
			if err != nil {
				return fmt.Errorf("plan validation failed: %w", err)
			}

			fmt.Fprintf(out, "Plan '%s' execution summary (%s):\n", p.Metadata.Description, b.Kind())
			for _, sr := range result.Steps {
				status := "✓"
				if sr.Status != plan.StatusSuccess {
					status = "✗"
				}
				fmt.Fprintf(out, "  %s %s (%s) - %v\n", status, sr.Step.ID, sr.Status, sr.Duration)
				if sr.Error != nil {
					fmt.Fprintf(out, "    Error: %v\n", sr.Error)
				}
			}

			if dump {
				if s, ok := b.(fmt.Stringer); ok {
					fmt.Fprintf(out, "\n%s", s)
				}
			}

			if result.Success {
				fmt.Fprintf(out, "\n✓ Plan executed successfully in %v\n", result.Duration)
				return nil
			}
			fmt.Fprintf(out, "\n✗ Plan execution failed in %v\n", result.Duration)
			fmt.Fprintf(out, "Errors:\n")
			for _, err := range result.Errors {
				fmt.Fprintf(out, "  - %v\n", err)
			}
			return fmt.Errorf("plan execution failed")
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Print the resulting tree (memfs only)")

	return cmd
}

func newPlanCreateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Create a new plan",
		Long:  "Create a sample plan file. The format follows the output file extension.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := args[0]
			if output == "" {
				output = "plan.json"
			}

			p := plan.New(description)
			if err := p.Add(
				plan.Step{ID: "dir", Type: plan.TypeMkdir, Path: "example"},
				plan.Step{ID: "file", Type: plan.TypeWrite, Path: "example/hello.txt", Content: "Hello, World!\n", Mode: "0644", DependsOn: []plan.StepID{"dir"}},
				plan.Step{ID: "link", Type: plan.TypeSymlink, Path: "example/latest.txt", Target: "example/hello.txt", DependsOn: []plan.StepID{"file"}},
			); err != nil {
				return err
			}

			data, err := plan.Marshal(p, plan.FormatOf(output))
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write plan file %s: %w", output, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created plan file: %s\n", output)
			fmt.Fprintf(out, "Description: %s\n", description)
			fmt.Fprintf(out, "Steps: %d\n", len(p.Steps))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output plan file, .json or .yaml (default: plan.json)")

	return cmd
}

func newPlanValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Validate a plan",
		Long:  "Validate the structure and dependencies of a plan without touching the filesystem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(args[0])
			if err != nil {
				return err
			}
			steps, err := p.Resolve()
			if err != nil {
				return fmt.Errorf("plan validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Plan file is valid\n")
			fmt.Fprintf(out, "Description: %s\n", p.Metadata.Description)
			fmt.Fprintf(out, "Version: %s\n", p.Metadata.Version)
			fmt.Fprintf(out, "Steps: %d\n", len(steps))

			for i, s := range steps {
				fmt.Fprintf(out, "  %d. %s: %s\n", i+1, s.ID, s.Describe())
				if len(s.DependsOn) > 0 {
					fmt.Fprintf(out, "     Dependencies: %v\n", s.DependsOn)
				}
			}
			return nil
		},
	}
}
