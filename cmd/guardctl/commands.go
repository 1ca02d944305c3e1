package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/achtung-live/guard-go/core"
	"github.com/achtung-live/guard-go/service"
)

const version = "1.0.0"

func newRootCommand(cfg cliConfig) *cobra.Command {
	root := &cobra.Command{
		Use:     "guardctl",
		Short:   "Detect personal data, dark patterns and consent problems in web content",
		Version: version,
	}
	root.SilenceUsage = true

	root.AddCommand(analyzeCommand(cfg))
	root.AddCommand(formCommand(cfg))
	root.AddCommand(darkPatternsCommand(cfg))
	root.AddCommand(cookiesCommand(cfg))
	root.AddCommand(catalogCommand(cfg))
	root.AddCommand(serveCommand(cfg))

	return root
}

func buildService(cfg cliConfig) (*service.AnalyzerService, error) {
	catalog := core.DefaultCatalog()
	if cfg.CatalogPath != "" {
		loaded, err := core.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}

	var store service.Store
	if cfg.StoreDir != "" {
		fileStore, err := service.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	}

	var activity *core.ActivityLogger
	if cfg.ActivityLog != "" {
		logger, err := core.NewActivityLogger(core.ActivityLoggerConfig{Path: cfg.ActivityLog})
		if err != nil {
			return nil, err
		}
		activity = logger
	}

	var backend service.Backend
	if cfg.Backend.URL != "" {
		timeout, _ := time.ParseDuration(cfg.Backend.Timeout)
		backend = service.NewHTTPBackend(service.HTTPBackendConfig{
			BaseURL: cfg.Backend.URL,
			APIKey:  cfg.Backend.APIKey,
			Timeout: timeout,
		})
	}

	return service.NewAnalyzerService(service.Config{
		Catalog:  catalog,
		Store:    store,
		Backend:  backend,
		Activity: activity,
	}), nil
}

func analyzeCommand(cfg cliConfig) *cobra.Command {
	var locale string
	var minLength int
	var threshold int
	var anonymize bool

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Scan text for personal data",
		Long:  "Scan text for personal data. Reads from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			svc, err := buildService(cfg)
			if err != nil {
				return err
			}

			result, decision, err := svc.AnalyzeText(cmd.Context(), "cli", core.AnalyzeTextRequest{
				Text:             text,
				Locale:           core.Locale(locale),
				MinLength:        minLength,
				WarningThreshold: threshold,
			})
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("analysis skipped: %s", decision.Reason)
			}

			if anonymize {
				cleaned, err := svc.ApplyQuickAction(service.ActionAnonymizeAll, text, result)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cleaned)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&locale, "locale", cfg.Locale, "Rule locale (de, en)")
	cmd.Flags().IntVar(&minLength, "min-length", cfg.MinTextLength, "Minimum text length before analysis runs")
	cmd.Flags().IntVar(&threshold, "warning-threshold", cfg.WarningThreshold, "Risk score at which text is no longer safe")
	cmd.Flags().BoolVar(&anonymize, "anonymize", false, "Print the text with all findings replaced instead of the report")

	return cmd
}

func formCommand(cfg cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form [file]",
		Short: "Flag sensitive fields in a form definition",
		Long:  "Flag sensitive fields in a JSON form definition. Reads from stdin when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var fields []core.FieldDescriptor
			if err := json.Unmarshal([]byte(data), &fields); err != nil {
				return fmt.Errorf("invalid form definition: %w", err)
			}

			svc, err := buildService(cfg)
			if err != nil {
				return err
			}

			result, decision, err := svc.AnalyzeForm(cmd.Context(), "cli", core.AnalyzeFormRequest{Fields: fields})
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("analysis skipped: %s", decision.Reason)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	return cmd
}

func darkPatternsCommand(cfg cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "darkpatterns [file]",
		Short: "Detect manipulative design in page element descriptors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var elements core.PageElements
			if err := json.Unmarshal([]byte(data), &elements); err != nil {
				return fmt.Errorf("invalid page elements: %w", err)
			}

			svc, err := buildService(cfg)
			if err != nil {
				return err
			}

			result, decision, err := svc.AnalyzeDarkPatterns(cmd.Context(), "cli", core.AnalyzeDarkPatternsRequest{Elements: &elements})
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("analysis skipped: %s", decision.Reason)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	return cmd
}

func cookiesCommand(cfg cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies [file]",
		Short: "Check a consent banner and tracker list for GDPR problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var req core.AnalyzeCookiesRequest
			if err := json.Unmarshal([]byte(data), &req); err != nil {
				return fmt.Errorf("invalid consent payload: %w", err)
			}

			svc, err := buildService(cfg)
			if err != nil {
				return err
			}

			result, decision, err := svc.AnalyzeCookies(cmd.Context(), "cli", req)
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("analysis skipped: %s", decision.Reason)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	return cmd
}

func catalogCommand(cfg cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and export rule catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the active catalog to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := core.DefaultCatalog()
			if cfg.CatalogPath != "" {
				loaded, err := core.LoadCatalog(cfg.CatalogPath)
				if err != nil {
					return err
				}
				catalog = loaded
			}
			if err := core.SaveCatalog(catalog, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog written to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a YAML catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := core.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			total := 0
			for _, byLocale := range catalog.Rules {
				for _, rules := range byLocale {
					total += len(rules)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s is valid: %d rules\n", args[0], total)
			return nil
		},
	})

	return cmd
}

func serveCommand(cfg cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzers as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(cfg)
			if err != nil {
				return err
			}
			return service.NewMCPServer(svc, version).ServeStdio()
		},
	}
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		if _, err := os.Stat(args[0]); err == nil {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
