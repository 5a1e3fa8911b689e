package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atliq/coldreach/internal/config"
	"github.com/atliq/coldreach/internal/portfolio"
	"github.com/atliq/coldreach/internal/scrape"
	"github.com/atliq/coldreach/internal/workflow"
)

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate [url]",
	Short: "Generate cold outreach emails from a career page",
	Long: `Generate cold outreach emails from a career page.

Examples:
  coldreach generate https://example.com/careers/jobs/12345
  coldreach generate --file ./posting.pdf
  coldreach generate --text "$(pbpaste)" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		var url string
		if len(args) == 1 {
			url = args[0]
		}

		sources := 0
		for _, s := range []string{url, text, file} {
			if s != "" {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("exactly one of a URL argument, --text, or --file is required")
		}

		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		switch {
		case url != "":
			printStep("Fetching %s", url)
			text, err = app.fetcher.FetchAndClean(ctx, url)
			if err != nil {
				return err
			}
		case file != "":
			printStep("Reading %s", file)
			text, err = scrape.ReadLocalFile(file)
			if err != nil {
				return err
			}
		}

		printStep("Running pipeline")
		result, err := app.engine.Run(ctx, text)
		if errors.Is(err, workflow.ErrNotConverged) {
			printError("Pipeline did not converge: %v", err)
			return err
		}
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if len(result.Emails) == 0 {
			printWarning("No job postings found.")
			return nil
		}

		for i, job := range result.Jobs {
			fmt.Printf("\n%s\n", colorize(colorBold, fmt.Sprintf("=== %s (%s) ===", job.Role, job.Experience)))
			if len(job.Skills) > 0 {
				fmt.Printf("%s\n\n", colorize(colorCyan, "Skills: "+strings.Join(job.Skills, ", ")))
			}
			fmt.Println(result.Emails[i])
		}
		printSuccess("Generated %d email(s)", len(result.Emails))
		printStatus("Coherence", "%.2f", result.CoherenceScore)
		printStatus("Relevance", "%.2f", result.RelevanceScore)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("text", "", "pre-scraped page text instead of a URL")
	generateCmd.Flags().String("file", "", "local file (.pdf or text) with the job posting")
	generateCmd.Flags().Bool("json", false, "print the full result as JSON")
}

// --- portfolio ---

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage the portfolio catalog",
}

var portfolioLoadCmd = &cobra.Command{
	Use:   "load <csv>",
	Short: "Load portfolio entries from a Techstack,Links CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := portfolio.ReadCSVFile(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			printWarning("No entries found in %s", args[0])
			return nil
		}

		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		printStep("Embedding %d entries", len(entries))
		if err := app.index.Load(ctx, entries); err != nil {
			return err
		}

		count, err := app.index.Count()
		if err != nil {
			return err
		}
		printSuccess("Portfolio holds %d entries", count)
		return nil
	},
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add <descriptor> <link>",
	Short: "Add a single portfolio entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.index.Add(ctx, portfolio.Entry{Descriptor: args[0], Link: args[1]}); err != nil {
			return err
		}
		printSuccess("Added %q -> %s", args[0], args[1])
		return nil
	},
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolio entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListPortfolioEntries(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No portfolio entries. Load some with 'coldreach portfolio load <csv>'.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s\n", colorize(colorCyan, e.Link), e.Descriptor)
		}
		return nil
	},
}

func init() {
	portfolioListCmd.Flags().Int("limit", 50, "maximum number of entries to list")
	portfolioCmd.AddCommand(portfolioLoadCmd)
	portfolioCmd.AddCommand(portfolioAddCmd)
	portfolioCmd.AddCommand(portfolioListCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("usage: coldreach config set <key> <value>\nvalid keys: %s",
				strings.Join(config.ValidKeys(), ", "))
		}
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
