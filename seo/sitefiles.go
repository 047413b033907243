package seo

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"

	"github.com/seodesk/seodesk/logger"
	"github.com/temoto/robotstxt"
)

// SiteFiles holds a site's robots.txt and sitemap.xml and what was read
// from them. Missing or failing files leave empty strings.
type SiteFiles struct {
	RobotsTxt  string `json:"robots_txt"`
	SitemapXML string `json:"sitemap_xml"`

	// DeclaredSitemaps lists Sitemap: lines from robots.txt.
	DeclaredSitemaps []string `json:"declared_sitemaps"`
	// PathAllowed reports whether robots.txt lets any agent fetch the
	// analysed path. True when there are no rules.
	PathAllowed bool `json:"path_allowed"`

	// SitemapURLs counts <url> entries of a urlset.
	SitemapURLs int `json:"sitemap_urls"`
	// SitemapChildren counts <sitemap> entries of a sitemap index.
	SitemapChildren int `json:"sitemap_children"`
}

type sitemapDoc struct {
	URLs     []struct{} `xml:"url"`
	Sitemaps []struct{} `xml:"sitemap"`
}

// SiteFiles fetches /robots.txt and /sitemap.xml from pageURL's host.
// Bodies are kept only for HTTP 200 responses.
func (a *Analyzer) SiteFiles(ctx context.Context, pageURL string) SiteFiles {
	files := SiteFiles{PathAllowed: true, DeclaredSitemaps: []string{}}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return files
	}
	root := u.Scheme + "://" + u.Host

	files.RobotsTxt = a.fetchText(ctx, root+"/robots.txt")
	files.SitemapXML = a.fetchText(ctx, root+"/sitemap.xml")

	if files.RobotsTxt != "" {
		if robots, err := robotstxt.FromString(files.RobotsTxt); err == nil {
			if robots.Sitemaps != nil {
				files.DeclaredSitemaps = robots.Sitemaps
			}
			path := u.EscapedPath()
			if path == "" {
				path = "/"
			}
			files.PathAllowed = robots.TestAgent(path, "*")
		}
	}

	if files.SitemapXML != "" {
		var doc sitemapDoc
		if err := xml.Unmarshal([]byte(files.SitemapXML), &doc); err == nil {
			files.SitemapURLs = len(doc.URLs)
			files.SitemapChildren = len(doc.Sitemaps)
		}
	}

	return files
}

func (a *Analyzer) fetchText(ctx context.Context, fileURL string) string {
	resp, err := a.siteClient.Do(ctx, fileURL)
	if err != nil {
		a.log.Debug("Site file request failed", logger.URL(fileURL), logger.Error(err))
		return ""
	}
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	return string(resp.Body)
}
