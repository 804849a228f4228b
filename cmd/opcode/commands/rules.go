package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRulesCommand creates the rules command group.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage proposed business rules",
	}

	cmd.AddCommand(newRulesPendingCommand())
	cmd.AddCommand(newRulesValidateCommand())
	cmd.AddCommand(newRulesProposeCommand())

	return cmd
}

func newRulesPendingCommand() *cobra.Command {
	var path, configFile string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List business rules awaiting validation",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			rules, err := e.GetPendingBusinessRules()
			if err != nil {
				return fmt.Errorf("list pending rules: %w", err)
			}

			for _, rule := range rules {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", rule.ID, rule.Entity, rule.File, rule.AIInterpretation)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")

	return cmd
}

func newRulesValidateCommand() *cobra.Command {
	var path, configFile, correction string

	cmd := &cobra.Command{
		Use:   "validate <rule-id> <description>",
		Short: "Record a human-validated description for a proposed rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse rule id: %w", err)
			}

			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.ValidateBusinessRule(id, args[1], correction); err != nil {
				return fmt.Errorf("validate rule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "validated rule %d\n", id)

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	cmd.Flags().StringVar(&correction, "correction", "", "Correction to the AI's original interpretation")

	return cmd
}

func newRulesProposeCommand() *cobra.Command {
	var path, configFile string

	cmd := &cobra.Command{
		Use:   "propose <entity> <file> <interpretation>",
		Short: "Propose an AI-authored business rule awaiting validation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(path, configFile)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.ProposeBusinessRule(args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("propose rule: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "proposed rule %d\n", id)

			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Project root")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")

	return cmd
}
