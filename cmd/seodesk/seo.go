package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/seodesk/seodesk/seo"
	"github.com/spf13/cobra"
)

func newSEOCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo",
		Short: "Analyse pages for SEO problems",
	}
	cmd.AddCommand(newSEOAnalyzeCommand(a))
	return cmd
}

// analyzeOutput is the JSON shape of "seo analyze".
type analyzeOutput struct {
	seo.Result
	SiteFiles *seo.SiteFiles `json:"site_files,omitempty"`
}

func newSEOAnalyzeCommand(a *app) *cobra.Command {
	var (
		keywords     []string
		keywordsFile string
		siteFiles    bool
		format       string
	)

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Fetch a page and report meta tags, headings, links and issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			input := strings.Join(keywords, "\n")
			if keywordsFile != "" {
				data, err := os.ReadFile(keywordsFile)
				if err != nil {
					return fmt.Errorf("failed to read keywords file: %w", err)
				}
				input += "\n" + string(data)
			}

			analyzer := seo.New(seo.Config{
				Timeout:   a.cfg.SEO.Timeout,
				UserAgent: a.cfg.SEO.UserAgent,
			}, a.log)

			out := analyzeOutput{Result: analyzer.Analyze(cmd.Context(), args[0], seo.ParseKeywords(input))}
			if siteFiles && out.OK() {
				files := analyzer.SiteFiles(cmd.Context(), args[0])
				out.SiteFiles = &files
			}

			if format == formatJSON {
				if err := printJSON(out); err != nil {
					return err
				}
			} else {
				printAnalysis(out)
			}

			if !out.OK() {
				return errors.New(out.Error.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&keywords, "keywords", "k", nil, "keyword to measure (repeatable, newlines split)")
	cmd.Flags().StringVar(&keywordsFile, "keywords-file", "", "file with one keyword per line")
	cmd.Flags().BoolVar(&siteFiles, "site-files", false, "also fetch robots.txt and sitemap.xml")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table or json")
	return cmd
}

func printAnalysis(out analyzeOutput) {
	if !out.OK() {
		rows := [][2]any{{"Error", out.Error.Error}}
		if out.Error.StatusCode != 0 {
			rows = append(rows, [2]any{"Status", out.Error.StatusCode})
		}
		if out.Error.PageSize != 0 {
			rows = append(rows, [2]any{"Page size", out.Error.PageSize})
		}
		printPairs("Analysis failed", rows)
		return
	}

	p := out.Page
	printPairs(p.URL, [][2]any{
		{"Status", p.StatusCode},
		{"Response time", fmt.Sprintf("%.2fs", p.ResponseTime)},
		{"Page size", fmt.Sprintf("%d bytes", p.PageSize)},
		{"Title", fmt.Sprintf("%s (%d)", p.Title, p.TitleLength)},
		{"Description", fmt.Sprintf("%s (%d)", wrapText(p.MetaDescription, 80), p.DescriptionLength)},
		{"Keywords", p.MetaKeywords},
		{"Robots", p.MetaRobots},
		{"Canonical", p.CanonicalURL},
		{"Words", p.WordCount},
		{"Links", fmt.Sprintf("%d internal, %d external", p.InternalLinkCount, p.ExternalLinkCount)},
		{"Images without alt", p.ImagesMissingAlt},
	})

	headings := table.NewWriter()
	headings.SetOutputMirror(os.Stdout)
	headings.SetStyle(table.StyleLight)
	headings.SetTitle("Headings")
	headings.AppendHeader(table.Row{"Level", "Count", "First"})
	for level := 1; level <= 6; level++ {
		texts := p.Headings.Level(level)
		first := ""
		if len(texts) > 0 {
			first = truncate(texts[0], 60)
		}
		headings.AppendRow(table.Row{fmt.Sprintf("H%d", level), len(texts), first})
	}
	headings.Render()

	if len(p.KeywordDensity) > 0 {
		kw := table.NewWriter()
		kw.SetOutputMirror(os.Stdout)
		kw.SetStyle(table.StyleLight)
		kw.SetTitle("Keywords")
		kw.AppendHeader(table.Row{"Keyword", "Count", "Density %"})
		for keyword, stat := range p.KeywordDensity {
			kw.AppendRow(table.Row{keyword, stat.Count, stat.Density})
		}
		kw.SortBy([]table.SortBy{{Name: "Count", Mode: table.DscNumeric}})
		kw.Render()
	}

	if len(p.Issues) == 0 {
		fmt.Println("No issues found.")
	} else {
		issues := table.NewWriter()
		issues.SetOutputMirror(os.Stdout)
		issues.SetStyle(table.StyleLight)
		issues.SetTitle("Issues")
		issues.AppendHeader(table.Row{"Severity", "Category", "Issue", "Recommendation"})
		for _, issue := range p.Issues {
			issues.AppendRow(table.Row{issue.Severity, issue.Category, issue.Title, wrapText(issue.Recommendation, 50)})
		}
		issues.Render()
	}

	if files := out.SiteFiles; files != nil {
		printPairs("Site files", [][2]any{
			{"robots.txt", presence(files.RobotsTxt)},
			{"Path allowed", files.PathAllowed},
			{"Declared sitemaps", strings.Join(files.DeclaredSitemaps, "\n")},
			{"sitemap.xml", presence(files.SitemapXML)},
			{"Sitemap URLs", files.SitemapURLs},
			{"Child sitemaps", files.SitemapChildren},
		})
	}
}

func presence(body string) string {
	if body == "" {
		return "missing"
	}
	return fmt.Sprintf("found (%d bytes)", len(body))
}
