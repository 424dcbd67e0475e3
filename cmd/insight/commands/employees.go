package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightportal/attrition/internal/cli"
	"github.com/insightportal/attrition/internal/client"
	"github.com/insightportal/attrition/internal/store"
)

var (
	employeesDepartment string
	employeesRiskLevel  string
	employeesSearch     string
	employeesPage       int
	employeesLimit      int
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "Browse the employee roster",
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees with optional filters",
	Long: `List employees from the roster with optional filters.

Examples:
  insight employees list
  insight employees list --department Engineering
  insight employees list --risk-level "High Risk" --format json
  insight employees list --search EMP-10 --page 2 --limit 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		page, err := c.ListEmployees(ctx, store.Filter{
			Department: employeesDepartment,
			RiskLevel:  employeesRiskLevel,
			Search:     employeesSearch,
			Page:       employeesPage,
			Limit:      employeesLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}

		if !quiet {
			if page.Total == 0 {
				fmt.Println("No employees found")
				return nil
			}
			return cli.PrintEmployees(page, cli.OutputFormat(format))
		}
		return nil
	},
}

var employeesGetCmd = &cobra.Command{
	Use:   "get <employee-id>",
	Short: "Get a single employee",
	Long: `Get details of a single employee by ID.

Examples:
  insight employees get EMP-001
  insight employees get EMP-001 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		emp, err := c.GetEmployee(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		if !quiet {
			page := &store.Page{Employees: []store.Employee{*emp}, Total: 1, Page: 1, Limit: 1, TotalPages: 1}
			return cli.PrintEmployees(page, cli.OutputFormat(format))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(employeesCmd)
	employeesCmd.AddCommand(employeesListCmd)
	employeesCmd.AddCommand(employeesGetCmd)

	employeesListCmd.Flags().StringVar(&employeesDepartment, "department", "", "Filter by department")
	employeesListCmd.Flags().StringVar(&employeesRiskLevel, "risk-level", "", "Filter by risk level (High Risk, Medium Risk, Low Risk)")
	employeesListCmd.Flags().StringVar(&employeesSearch, "search", "", "Search by name or employee ID")
	employeesListCmd.Flags().IntVar(&employeesPage, "page", 1, "Page number")
	employeesListCmd.Flags().IntVar(&employeesLimit, "limit", 50, "Results per page")
}
