package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/seodesk/seodesk/diagnostics"
	"github.com/spf13/cobra"
)

func newDiagCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "diag <url>",
		Short: "Run ping, HTTP, TLS, DNS and WHOIS probes against a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			prober := diagnostics.New(diagnostics.Config{
				Timeout:        a.cfg.Diagnostics.Timeout,
				CommandTimeout: a.cfg.Diagnostics.CommandTimeout,
				UserAgent:      a.cfg.SEO.UserAgent,
			}, a.log)

			report := prober.Run(cmd.Context(), args[0])
			if format == formatJSON {
				return printJSON(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table or json")
	return cmd
}

func printReport(r *diagnostics.Report) {
	printPairs("Ping", withError(r.Ping.Status, r.Ping.Error, [][2]any{
		{"Domain", r.Ping.Domain},
		{"Average", fmt.Sprintf("%.2f ms", r.Ping.AvgTime)},
		{"Samples", len(r.Ping.Times)},
	}))

	httpRows := [][2]any{
		{"Final URL", r.HTTP.FinalURL},
		{"Final status", fmt.Sprintf("%d %s", r.HTTP.FinalStatus, r.HTTP.FinalReason)},
		{"Response time", fmt.Sprintf("%.3fs", r.HTTP.ResponseTime)},
	}
	printPairs("HTTP", withError(r.HTTP.Status, r.HTTP.Error, httpRows))
	if len(r.HTTP.Redirects) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.SetTitle("Redirects")
		t.AppendHeader(table.Row{"#", "Status", "From", "To"})
		for i, hop := range r.HTTP.Redirects {
			t.AppendRow(table.Row{i + 1, fmt.Sprintf("%d %s", hop.Status, hop.Reason), hop.From, hop.To})
		}
		t.Render()
	}

	printPairs("SSL", withError(r.SSL.Status, r.SSL.Error, [][2]any{
		{"Issuer", r.SSL.Issuer},
		{"Subject", r.SSL.Subject},
		{"Valid until", r.SSL.NotAfter.Format("2006-01-02")},
		{"Days left", r.SSL.DaysUntilExpiry},
		{"Valid", r.SSL.IsValid},
	}))

	dnsRows := make([][2]any, 0, len(diagnostics.RecordTypes))
	for _, name := range diagnostics.RecordTypes {
		dnsRows = append(dnsRows, [2]any{name, strings.Join(r.DNS.Records[name], "\n")})
	}
	printPairs("DNS "+r.DNS.Domain, withError(r.DNS.Status, r.DNS.Error, dnsRows))

	whoisRows := [][2]any{
		{"Registrar", r.Whois.Info.Registrar},
		{"Created", r.Whois.Info.Created},
		{"Expires", r.Whois.Info.Expires},
		{"Status", r.Whois.Info.Status},
	}
	if r.Whois.Info.AgeDays != nil {
		whoisRows = append(whoisRows, [2]any{"Age", fmt.Sprintf("%d days (%d years)", *r.Whois.Info.AgeDays, *r.Whois.Info.AgeYears)})
	}
	printPairs("WHOIS "+r.Whois.Domain, withError(r.Whois.Status, r.Whois.Error, whoisRows))
}

// withError replaces rows with the status and error when a probe failed.
func withError(status, errText string, rows [][2]any) [][2]any {
	if status == diagnostics.StatusSuccess {
		return rows
	}
	return [][2]any{{"Status", status}, {"Error", errText}}
}
