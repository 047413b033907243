package sources

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/seodesk/seodesk/dates"
	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moscow = time.FixedZone("MSK", 3*60*60)

// fixedNow is the pinned clock used by every extractor test.
var fixedNow = time.Date(2025, 10, 10, 12, 0, 0, 0, moscow)

func testOptions() Options {
	return Options{Dates: dates.New(moscow, func() time.Time { return fixedNow })}
}

// Test helper: wrap markup as a fetched document
func docFor(t *testing.T, rawURL, body string) (*fetch.Document, *url.URL) {
	t.Helper()
	doc, err := fetch.Parse(&fetch.Response{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       []byte(body),
	})
	require.NoError(t, err)
	base, err := url.Parse(rawURL)
	require.NoError(t, err)
	return doc, base
}

// Test helper: find a built-in extractor by name
func builtinByName(t *testing.T, name string) Extractor {
	t.Helper()
	for _, e := range Default(testOptions()) {
		if e.Name() == name {
			return e
		}
	}
	t.Fatalf("no built-in source %q", name)
	return nil
}

func extract(t *testing.T, name, body string) *Result {
	t.Helper()
	e := builtinByName(t, name)
	doc, base := docFor(t, e.URL(), body)
	return e.Extract(doc, base)
}

// TestDefault_Order verifies the fixed aggregation order and valid configs
func TestDefault_Order(t *testing.T) {
	want := []string{SeoNews, VCRu, Topvisor, Habr, SeoFaqt, PixelPlus}
	assert.Equal(t, want, Names())

	extractors := Default(Options{})
	require.Len(t, extractors, len(want))
	for i, e := range extractors {
		assert.Equal(t, want[i], e.Name())
		assert.NoError(t, validateURL(e.URL()), e.Name())
	}
	for _, b := range builtins {
		assert.NoError(t, b.list.Validate(), b.name)
	}
}

// TestSeoNews verifies the freshness filter and relative link resolution
func TestSeoNews(t *testing.T) {
	body := `
	<div class="item"><div class="date">08.10.2025</div><a href="/news/1"><div class="title">Яндекс обновил выдачу</div></a></div>
	<div class="item"><div class="date">01.09.2025</div><a href="/news/2"><div class="title">Старое</div></a></div>
	<div class="item"><div class="date">2 часа назад</div><a href="/news/3"><div class="title">Свежее</div></a></div>
	<div class="item"><div class="date"></div><a href="/news/4"><div class="title">Без даты</div></a></div>
	<div class="item"><div class="date">09.10.2025</div><a href="/news/5"><div class="title"> </div></a></div>
	`
	result := extract(t, SeoNews, body)

	require.Len(t, result.Items, 2)
	first := result.Items[0]
	assert.Equal(t, "Яндекс обновил выдачу", first.Title)
	assert.Equal(t, "https://m.seonews.ru/news/1", first.URL)
	assert.Equal(t, SeoNews, first.Source)
	assert.True(t, time.Date(2025, 10, 8, 0, 0, 0, 0, moscow).Equal(first.PublishedAt))
	assert.Empty(t, first.ImageURL)

	assert.Equal(t, "Свежее", result.Items[1].Title)
	assert.True(t, fixedNow.Equal(result.Items[1].PublishedAt), "relative dates parse as now")
}

// TestVCRu_NoDateFilter verifies the undated source keeps every item and
// dates it at today's midnight
func TestVCRu_NoDateFilter(t *testing.T) {
	body := `
	<div class="content__body">
	  <div class="content-title"><a href="/seo/100-kak">Как продвигать сайт</a></div>
	  <img src="https://leonardo.osnova.io/a.jpg">
	</div>
	<div class="content__body">
	  <div class="content-title"><a href="https://vc.ru/seo/200">Второй пост</a></div>
	</div>
	<div class="content__body"><p>реклама</p></div>
	`
	result := extract(t, VCRu, body)

	require.Len(t, result.Items, 2)
	midnight := time.Date(2025, 10, 10, 0, 0, 0, 0, moscow)
	for _, item := range result.Items {
		assert.True(t, midnight.Equal(item.PublishedAt))
	}
	assert.Equal(t, "https://vc.ru/seo/100-kak", result.Items[0].URL)
	assert.Equal(t, "https://leonardo.osnova.io/a.jpg", result.Items[0].ImageURL)
	assert.Equal(t, "Второй пост", result.Items[1].Title)
}

// TestTopvisor verifies Russian month-name dates
func TestTopvisor(t *testing.T) {
	body := `
	<div class="journalArticlePreview">
	  <div class="journalArticlePreview_date">08 октября 2025</div>
	  <a href="/ru/news/google-update/"><h2 class="journalArticlePreview_title">Google Update</h2></a>
	</div>
	<div class="journalArticlePreview">
	  <div class="journalArticlePreview_date">08 октября 2024</div>
	  <a href="/ru/news/old/"><h2 class="journalArticlePreview_title">Old</h2></a>
	</div>
	`
	result := extract(t, Topvisor, body)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "https://journal.topvisor.com/ru/news/google-update/", result.Items[0].URL)
	assert.Equal(t, 8, result.Items[0].PublishedAt.Day())
}

// TestHabr verifies dates are read from the datetime attribute
func TestHabr(t *testing.T) {
	body := `
	<article class="tm-articles-list__item">
	  <time datetime="2025-10-09T08:15:00.000Z">вчера в 11:15</time>
	  <h2 class="tm-title"><a class="tm-title__link" href="/ru/articles/900001/"><span>Разбор  логов</span></a></h2>
	  <img class="tm-article-snippet__lead-image" src="https://habrastorage.org/x.png">
	</article>
	<article class="tm-articles-list__item">
	  <time datetime="2025-09-01T08:15:00.000Z">1 сен</time>
	  <h2 class="tm-title"><a class="tm-title__link" href="/ru/articles/800001/">Старая</a></h2>
	</article>
	`
	result := extract(t, Habr, body)

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "Разбор логов", item.Title)
	assert.Equal(t, "https://habr.com/ru/articles/900001/", item.URL)
	assert.Equal(t, "https://habrastorage.org/x.png", item.ImageURL)
	assert.True(t, time.Date(2025, 10, 9, 8, 15, 0, 0, time.UTC).Equal(item.PublishedAt))
}

// TestSeoFaqt verifies the channel prefix on titles
func TestSeoFaqt(t *testing.T) {
	body := `
	<div class="white-box-question">
	  <div class="question-header-channel"><a>Яндекс</a></div>
	  <a class="question-content-link" href="/question/1"><div class="question-content"><p>Почему выпал сайт?</p></div></a>
	  <div class="question-footer"><p>Ответов: 3</p><p>09.10.2025</p></div>
	</div>
	<div class="white-box-question">
	  <a class="question-content-link" href="/question/2"><div class="question-content"><p>Без канала</p></div></a>
	  <div class="question-footer"><p>сегодня</p></div>
	</div>
	`
	result := extract(t, SeoFaqt, body)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "[Яндекс] Почему выпал сайт?", result.Items[0].Title)
	assert.Equal(t, "https://seofaqt.ru/question/1", result.Items[0].URL)
	assert.Equal(t, "Без канала", result.Items[1].Title)
}

// TestPixelPlus verifies relative image URLs are resolved
func TestPixelPlus(t *testing.T) {
	body := `
	<article class="news-card">
	  <div class="news-card__img"><img src="/upload/news/1.png"></div>
	  <div class="news-card__date">10.10.2025</div>
	  <a class="news-card__title" href="/news/yandex-metrika/">Метрика</a>
	</article>
	`
	result := extract(t, PixelPlus, body)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "https://tools.pixelplus.ru/upload/news/1.png", result.Items[0].ImageURL)
	assert.Equal(t, "https://tools.pixelplus.ru/news/yandex-metrika/", result.Items[0].URL)
}

// TestHTMLSource_CustomWindow verifies the window option is honoured
func TestHTMLSource_CustomWindow(t *testing.T) {
	opts := testOptions()
	opts.WindowDays = 1

	source, err := NewHTMLSource("example.com", "https://example.com/", scraper.ListConfig{
		ItemSelector: "li",
		LinkSelector: "a",
		DateSelector: "span",
	}, opts)
	require.NoError(t, err)

	doc, base := docFor(t, source.URL(), `<ul>
		<li><span>09.10.2025</span><a href="/a">A</a></li>
		<li><span>07.10.2025</span><a href="/b">B</a></li>
	</ul>`)
	result := source.Extract(doc, base)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "A", result.Items[0].Title)
}

// TestNewHTMLSource_Validation verifies constructor checks
func TestNewHTMLSource_Validation(t *testing.T) {
	list := *scraper.NewListConfig("li", "a")

	_, err := NewHTMLSource("", "https://example.com", list, Options{})
	assert.ErrorIs(t, err, ErrEmptySourceName)

	_, err = NewHTMLSource("x", "/relative", list, Options{})
	assert.ErrorIs(t, err, ErrInvalidSourceURL)

	_, err = NewHTMLSource("x", "https://example.com", scraper.ListConfig{}, Options{})
	assert.Error(t, err)
}

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Search Engine News</title>
  <link>https://news.example.com/</link>
  <item>
    <title>Core update rolled out</title>
    <link>/2025/10/core-update</link>
    <description>&lt;p&gt;Google has &lt;b&gt;finished&lt;/b&gt; the rollout.&lt;/p&gt;</description>
    <pubDate>Thu, 09 Oct 2025 10:00:00 +0000</pubDate>
    <enclosure url="https://news.example.com/img.jpg" type="image/jpeg" length="100"/>
  </item>
  <item>
    <title>Ancient history</title>
    <link>https://news.example.com/2024/old</link>
    <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>No date</title>
    <link>https://news.example.com/undated</link>
  </item>
  <item>
    <title></title>
    <link>https://news.example.com/untitled</link>
    <pubDate>Thu, 09 Oct 2025 10:00:00 +0000</pubDate>
  </item>
</channel>
</rss>`

// TestFeedSource verifies feed items are filtered, resolved and stripped
func TestFeedSource(t *testing.T) {
	source, err := NewFeedSource(FeedConfig{Name: "news.example.com", URL: "https://news.example.com/feed.xml"}, testOptions())
	require.NoError(t, err)

	doc, base := docFor(t, source.URL(), rssFeed)
	result := source.Extract(doc, base)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, "Core update rolled out", item.Title)
	assert.Equal(t, "https://news.example.com/2025/10/core-update", item.URL)
	assert.Equal(t, "Google has finished the rollout.", item.Description)
	assert.Equal(t, "https://news.example.com/img.jpg", item.ImageURL)
	assert.Equal(t, "news.example.com", item.Source)
	assert.True(t, time.Date(2025, 10, 9, 10, 0, 0, 0, time.UTC).Equal(item.PublishedAt))
}

// TestFeedSource_InvalidFeed verifies unparseable feeds yield an error and
// no items
func TestFeedSource_InvalidFeed(t *testing.T) {
	source, err := NewFeedSource(FeedConfig{Name: "bad", URL: "https://bad.example.com/feed"}, testOptions())
	require.NoError(t, err)

	doc, base := docFor(t, source.URL(), "this is not a feed")
	result := source.Extract(doc, base)

	assert.Empty(t, result.Items)
	assert.Len(t, result.Errors, 1)
}

// TestFromConfig verifies feeds are appended after the built-in sources
func TestFromConfig(t *testing.T) {
	extractors, err := FromConfig([]FeedConfig{{Name: "feed.example", URL: "https://feed.example/rss"}}, Options{})
	require.NoError(t, err)
	require.Len(t, extractors, 7)
	assert.Equal(t, "feed.example", extractors[6].Name())

	_, err = FromConfig([]FeedConfig{{Name: "", URL: "https://x"}}, Options{})
	assert.ErrorIs(t, err, ErrEmptySourceName)
}

// TestPlainText verifies description truncation
func TestPlainText(t *testing.T) {
	long := make([]rune, 0, 600)
	for i := 0; i < 600; i++ {
		long = append(long, 'я')
	}
	got := plainText(string(long))
	assert.Equal(t, maxDescription+3, len([]rune(got)))
	assert.Equal(t, "", plainText(""))
}
