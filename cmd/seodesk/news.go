package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/seodesk/seodesk/discovery"
	"github.com/seodesk/seodesk/newsfeed"
	"github.com/seodesk/seodesk/sources"
	"github.com/spf13/cobra"
)

func newNewsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Collect and browse SEO news",
	}
	cmd.AddCommand(newNewsSyncCommand(a), newNewsListCommand(a))
	return cmd
}

func newNewsSyncCommand(a *app) *cobra.Command {
	var (
		cleanup bool
		days    int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Parse every news source now and store new items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newsfeed.NewStore(a.cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("failed to open news store: %w", err)
			}
			defer store.Close()

			opts := sources.Options{WindowDays: a.cfg.News.WindowDays}
			extractors, err := sources.FromConfig(a.cfg.News.Feeds, opts)
			if err != nil {
				return fmt.Errorf("failed to build sources: %w", err)
			}

			aggregator := discovery.NewAggregator(extractors, discovery.Config{
				Timeout: a.cfg.News.Timeout,
				Delay:   a.cfg.News.Delay,
			}, a.log)
			service := discovery.NewService(aggregator, store, a.log)

			if days <= 0 {
				days = a.cfg.News.ArchiveDays
			}

			fmt.Printf("Syncing %d sources...\n", len(extractors))
			result, err := service.Sync(cmd.Context(), discovery.SyncOptions{Cleanup: cleanup, ArchiveDays: days})
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			printSourceReports(result.Sources)

			fmt.Println()
			fmt.Println("Sync completed:")
			fmt.Printf("  Items found: %d\n", result.Total)
			fmt.Printf("  Items added: %d\n", result.Added)
			if cleanup {
				fmt.Printf("  Items archived (older than %d days): %d\n", days, result.Archived)
			}
			if len(result.Errors) > 0 {
				fmt.Fprintf(os.Stderr, "\nWarning: %d item(s) could not be stored:\n", len(result.Errors))
				for _, storeErr := range result.Errors {
					fmt.Fprintf(os.Stderr, "  %s\n", storeErr.Error())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "archive stored news older than --days")
	cmd.Flags().IntVar(&days, "days", 0, "archive threshold in days (default from config, 30)")
	return cmd
}

func printSourceReports(reports []discovery.SourceReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Items", "Skipped", "Error"})
	for _, r := range reports {
		t.AppendRow(table.Row{r.Name, r.Items, r.ItemErrors, truncate(r.Error, 60)})
	}
	t.Render()
}

func newNewsListCommand(a *app) *cobra.Command {
	var (
		source   string
		archived bool
		limit    int
		offset   int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored news, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			store, err := newsfeed.NewStore(a.cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("failed to open news store: %w", err)
			}
			defer store.Close()

			items, err := store.List(newsfeed.Filter{
				Source:          source,
				IncludeArchived: archived,
				Limit:           limit,
				Offset:          offset,
			})
			if err != nil {
				return fmt.Errorf("failed to list news: %w", err)
			}

			if format == formatJSON {
				if items == nil {
					items = []newsfeed.NewsItem{}
				}
				return printJSON(map[string]any{"items": items, "total": len(items)})
			}
			printNewsTable(items)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "only show news from this source")
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived news")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of items (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of items to skip")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table or json")
	return cmd
}

func printNewsTable(items []newsfeed.NewsItem) {
	if len(items) == 0 {
		fmt.Println("No items to display.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Published", "Source", "Title", "URL"})
	for _, item := range items {
		title := truncate(item.Title, 70)
		if item.IsArchived {
			title = "[archived] " + title
		}
		t.AppendRow(table.Row{
			item.PublishedAt.Local().Format("2006-01-02 15:04"),
			item.Source,
			title,
			item.URL,
		})
	}
	t.Render()
}
