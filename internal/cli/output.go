package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/insightportal/attrition/internal/artifact"
	"github.com/insightportal/attrition/internal/client"
	"github.com/insightportal/attrition/internal/store"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintPrediction outputs a scored prediction in the specified format
func PrintPrediction(pred *client.Prediction, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(pred)
	case FormatYAML:
		return printYAML(pred)
	case FormatTable:
		return printPredictionTable(pred)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintEmployees outputs a roster page in the specified format
func PrintEmployees(page *store.Page, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(page)
	case FormatYAML:
		return printYAML(page)
	case FormatTable:
		printEmployeeTable(page)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintArtifacts outputs artifact load statuses in the specified format
func PrintArtifacts(statuses []artifact.Status, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]artifact.Status{"artifacts": statuses})
	case FormatYAML:
		return printYAML(statuses)
	case FormatTable:
		printArtifactTable(statuses)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printPredictionTable(pred *client.Prediction) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Subject", "Prediction", "Probability", "Status"})

	label := pred.PredictionLabel
	if label == "" {
		label = fmt.Sprintf("%d", pred.Prediction)
	}
	table.Append([]string{
		pred.SubjectID(),
		label,
		fmt.Sprintf("%.1f%%", pred.Probability*100),
		pred.Status,
	})
	table.Render()

	fmt.Println("\nSuggestions:")
	for i, suggestion := range pred.Suggestions {
		fmt.Printf("  %d. %s\n", i+1, suggestion)
	}
	return nil
}

func printEmployeeTable(page *store.Page) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Department", "Tenure", "Satisfaction", "Churn Prob", "Status"})

	for _, emp := range page.Employees {
		table.Append([]string{
			emp.EmployeeID,
			emp.Name,
			emp.Department,
			fmt.Sprintf("%d", emp.Tenure),
			fmt.Sprintf("%.0f%%", emp.SatisfactionLevel*100),
			fmt.Sprintf("%.1f%%", emp.ChurnProbability*100),
			emp.Status,
		})
	}
	table.Render()
	fmt.Printf("Page %d of %d (%d employees)\n", page.Page, page.TotalPages, page.Total)
}

func printArtifactTable(statuses []artifact.Status) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Variant", "Loaded", "Fingerprint"})

	for _, st := range statuses {
		loaded := "no"
		if st.Loaded {
			loaded = "yes"
		}
		table.Append([]string{string(st.Variant), loaded, st.Fingerprint})
	}
	table.Render()
}
