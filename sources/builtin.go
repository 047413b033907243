package sources

import (
	"fmt"

	"github.com/seodesk/seodesk/scraper"
)

// Built-in source identifiers.
const (
	SeoNews   = "seonews.ru"
	VCRu      = "vc.ru"
	Topvisor  = "journal.topvisor.com"
	Habr      = "habr.com"
	SeoFaqt   = "seofaqt.ru"
	PixelPlus = "tools.pixelplus.ru"
)

type builtin struct {
	name  string
	url   string
	list  scraper.ListConfig
	title TitleFunc
}

// builtins are listed in aggregation order.
var builtins = []builtin{
	{
		name: SeoNews,
		url:  "https://m.seonews.ru/",
		list: scraper.ListConfig{
			ItemSelector:  "div.item",
			DateSelector:  "div.date",
			LinkSelector:  "a",
			TitleSelector: "div.title",
		},
	},
	{
		// The vc.ru feed prints no dates: no freshness filter, dated today.
		name: VCRu,
		url:  "https://vc.ru/seo",
		list: scraper.ListConfig{
			ItemSelector:  "div.content__body",
			LinkSelector:  "div.content-title > a",
			ImageSelector: "img",
		},
	},
	{
		name: Topvisor,
		url:  "https://journal.topvisor.com/ru/news/",
		list: scraper.ListConfig{
			ItemSelector:  "div.journalArticlePreview",
			DateSelector:  "div.journalArticlePreview_date",
			LinkSelector:  "a[href]",
			TitleSelector: "h2.journalArticlePreview_title",
		},
	},
	{
		name: Habr,
		url:  "https://habr.com/ru/hubs/seo/articles/",
		list: scraper.ListConfig{
			ItemSelector:  "article.tm-articles-list__item",
			DateSelector:  "time[datetime]",
			DateAttr:      "datetime",
			LinkSelector:  "h2.tm-title > a.tm-title__link",
			ImageSelector: "img.tm-article-snippet__lead-image",
		},
	},
	{
		name: SeoFaqt,
		url:  "https://seofaqt.ru/",
		list: scraper.ListConfig{
			ItemSelector:  "div.white-box-question",
			DateSelector:  "div.question-footer p:last-child",
			LinkSelector:  "a.question-content-link",
			TitleSelector: "div.question-content p",
		},
		title: channelTitle,
	},
	{
		name: PixelPlus,
		url:  "https://tools.pixelplus.ru/news/",
		list: scraper.ListConfig{
			ItemSelector:  "article.news-card",
			DateSelector:  "div.news-card__date",
			LinkSelector:  "a.news-card__title",
			ImageSelector: "div.news-card__img img",
		},
	},
}

// channelTitle prefixes a seofaqt question with its channel, e.g.
// "[Яндекс] Почему выпал сайт?".
func channelTitle(entry scraper.Entry) string {
	channel := scraper.NormalizeText(entry.Node.Find("div.question-header-channel a").First().Text())
	if channel == "" {
		return entry.Title
	}
	return fmt.Sprintf("[%s] %s", channel, entry.Title)
}

// Default returns the six built-in HTML sources in aggregation order.
func Default(opts Options) []Extractor {
	extractors := make([]Extractor, 0, len(builtins))
	for _, b := range builtins {
		extractors = append(extractors, &HTMLSource{
			name:    b.name,
			url:     b.url,
			list:    b.list,
			titleFn: b.title,
			dates:   opts.normalizer(),
			window:  opts.window(),
		})
	}
	return extractors
}

// Names returns the built-in source identifiers in aggregation order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for _, b := range builtins {
		names = append(names, b.name)
	}
	return names
}
