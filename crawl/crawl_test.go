package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/crawl"
	"github.com/fwojciec/thumbcrawl/fs"
	"github.com/fwojciec/thumbcrawl/goquery"
	"github.com/fwojciec/thumbcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSearchURL = "https://www.example.com/search?search_query={}&type=public"
	testCDN       = "https://cdn.example.com/media/videos"
)

// thumb returns an img tag served from the test CDN.
func thumb(name, title string) string {
	return fmt.Sprintf(`<a href="/video/%s"><img src="%s/tmb/%s.jpg" alt="%s"></a>`, name, testCDN, name, title)
}

func htmlPage(imgs ...string) string {
	return "<html><body>" + strings.Join(imgs, "\n") + "</body></html>"
}

// siteRenderer serves pages keyed by page number and records every render.
type siteRenderer struct {
	pages   map[int]string
	fail    map[int]error
	renders []string
}

func (s *siteRenderer) mock() *mock.Renderer {
	return &mock.Renderer{
		RenderFn: func(_ context.Context, url string) (thumbcrawl.RenderedPage, error) {
			s.renders = append(s.renders, url)
			var n int
			_, _ = fmt.Sscanf(url[strings.LastIndex(url, "page=")+len("page="):], "%d", &n)
			if err := s.fail[n]; err != nil {
				return nil, err
			}
			return goquery.NewPage(url, s.pages[n])
		},
	}
}

// diskImages writes the source URL to destPath, failing URLs listed in
// failures as many times as their count.
type diskImages struct {
	failures map[string]int
	calls    []string
}

func (d *diskImages) mock() *mock.ImageFetcher {
	return &mock.ImageFetcher{
		FetchImageFn: func(_ context.Context, url, destPath string) (*thumbcrawl.Image, error) {
			d.calls = append(d.calls, url)
			if d.failures[url] > 0 {
				d.failures[url]--
				return nil, &thumbcrawl.Error{Code: thumbcrawl.ENETWORK, Message: "HTTP 503", Status: 503}
			}
			if err := os.WriteFile(destPath, []byte(url), 0644); err != nil {
				return nil, thumbcrawl.Wrapf(err, thumbcrawl.EIO, "write")
			}
			return &thumbcrawl.Image{Path: destPath, Format: "jpg", Bytes: len(url)}, nil
		},
	}
}

func newCrawler(site *siteRenderer, images *diskImages, reports ...thumbcrawl.ReportWriter) *crawl.Crawler {
	return &crawl.Crawler{
		Renderer:  site.mock(),
		Extractor: goquery.NewExtractor(),
		Images:    images.mock(),
		Paths:     fs.NewDeduplicator(),
		Reports:   reports,
	}
}

func newRequest(t *testing.T, pages thumbcrawl.PageRange) crawl.RunRequest {
	t.Helper()
	return crawl.RunRequest{
		Query:     "cats",
		SearchURL: testSearchURL,
		Pages:     pages,
		Filter:    thumbcrawl.NewPrefixFilter(testCDN),
		Dir:       t.TempDir(),
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("downloads matching thumbnails and reports them", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("1", "Alpha"), thumb("2", "Beta"), `<img src="https://ads.example.com/banner.gif">`),
		}}
		images := &diskImages{}
		var reported *thumbcrawl.RunResult
		report := &mock.ReportWriter{
			WriteReportFn: func(_ context.Context, result *thumbcrawl.RunResult) error {
				reported = result
				return nil
			},
		}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})

		result, err := newCrawler(site, images, report).Run(context.Background(), req)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Alpha.jpg", "Beta.jpg"}, dirNames(t, req.Dir))
		assert.Equal(t, 2, result.Total())
		assert.Equal(t, 2, result.Succeeded())
		assert.Equal(t, 1, result.Skipped)
		assert.True(t, result.Sealed())
		assert.Same(t, result, reported)

		entries := result.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, testCDN+"/tmb/1.jpg", entries[0].URL)
		assert.Equal(t, "Alpha", entries[0].Title)
		assert.Equal(t, 1, entries[0].Page)
		assert.Equal(t, filepath.Join(req.Dir, "Alpha.jpg"), entries[0].Outcome.Path)
		assert.Equal(t, "Beta", entries[1].Title)
	})

	t.Run("visits pages in ascending order", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{
			2: htmlPage(thumb("a", "A")),
			3: htmlPage(thumb("b", "B")),
			4: htmlPage(thumb("c", "C")),
		}}
		req := newRequest(t, thumbcrawl.PageRange{First: 2, Last: 4})

		result, err := newCrawler(site, &diskImages{}).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://www.example.com/search?search_query=cats&type=public&page=2",
			"https://www.example.com/search?search_query=cats&type=public&page=3",
			"https://www.example.com/search?search_query=cats&type=public&page=4",
		}, site.renders)
		assert.Equal(t, 3, result.Succeeded())
	})

	t.Run("retries a failed download after the sweep", func(t *testing.T) {
		t.Parallel()

		bURL := testCDN + "/tmb/b.jpg"
		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("a", "A"), thumb("b", "B"), thumb("c", "C")),
		}}
		images := &diskImages{failures: map[string]int{bURL: 1}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})

		result, err := newCrawler(site, images).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Succeeded())
		assert.Empty(t, result.Failures())
		b, ok := result.Entry(bURL)
		require.True(t, ok)
		assert.True(t, b.Outcome.Done)
		assert.Empty(t, b.Outcome.Reason)
		assert.Equal(t, filepath.Join(req.Dir, "B.jpg"), b.Outcome.Path)
		assert.Equal(t, []string{testCDN + "/tmb/a.jpg", bURL, testCDN + "/tmb/c.jpg", bURL}, images.calls)
		assert.Len(t, site.renders, 1)
	})

	t.Run("retries at most once", func(t *testing.T) {
		t.Parallel()

		bURL := testCDN + "/tmb/b.jpg"
		site := &siteRenderer{pages: map[int]string{1: htmlPage(thumb("b", "B"))}}
		images := &diskImages{failures: map[string]int{bURL: 5}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})

		result, err := newCrawler(site, images).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Len(t, images.calls, 2)
		failures := result.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, "network: HTTP 503", failures[0].Outcome.Reason)
	})

	t.Run("retry none keeps failures", func(t *testing.T) {
		t.Parallel()

		bURL := testCDN + "/tmb/b.jpg"
		site := &siteRenderer{pages: map[int]string{1: htmlPage(thumb("b", "B"))}}
		images := &diskImages{failures: map[string]int{bURL: 1}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})
		req.Retry = crawl.RetryNone

		result, err := newCrawler(site, images).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Len(t, images.calls, 1)
		assert.Len(t, result.Failures(), 1)
	})

	t.Run("retry pages re-renders only pages with failures", func(t *testing.T) {
		t.Parallel()

		failing := testCDN + "/tmb/c.jpg"
		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("a", "A")),
			2: htmlPage(thumb("b", "B"), thumb("c", "C")),
		}}
		images := &diskImages{failures: map[string]int{failing: 1}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 2})
		req.Retry = crawl.RetryPages

		result, err := newCrawler(site, images).Run(context.Background(), req)

		require.NoError(t, err)
		require.Len(t, site.renders, 3)
		assert.Equal(t, site.renders[1], site.renders[2])
		assert.Equal(t, 3, result.Succeeded())
		assert.Equal(t, []string{testCDN + "/tmb/a.jpg", testCDN + "/tmb/b.jpg", failing, failing}, images.calls)
	})

	t.Run("skips pages that fail to render", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{
			pages: map[int]string{2: htmlPage(thumb("a", "A"))},
			fail:  map[int]error{1: thumbcrawl.Errorf(thumbcrawl.ETIMEOUT, "page did not settle")},
		}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 2})

		result, err := newCrawler(site, &diskImages{}).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Len(t, site.renders, 2)
		assert.Equal(t, 1, result.Succeeded())
	})

	t.Run("deduplicates colliding titles", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("1", "Same"), thumb("2", "Same"), thumb("3", "Same")),
		}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})

		_, err := newCrawler(site, &diskImages{}).Run(context.Background(), req)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Same.jpg", "Same(0).jpg", "Same(1).jpg"}, dirNames(t, req.Dir))
	})

	t.Run("rerun keeps existing files", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{1: htmlPage(thumb("1", "Alpha"))}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})
		existing := filepath.Join(req.Dir, "Alpha.jpg")
		require.NoError(t, os.WriteFile(existing, []byte("earlier run"), 0644))

		result, err := newCrawler(site, &diskImages{}).Run(context.Background(), req)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Alpha.jpg", "Alpha(0).jpg"}, dirNames(t, req.Dir))
		got, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, "earlier run", string(got))
		entries := result.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, filepath.Join(req.Dir, "Alpha(0).jpg"), entries[0].Outcome.Path)
	})

	t.Run("sequential naming keeps index across retry", func(t *testing.T) {
		t.Parallel()

		bURL := testCDN + "/tmb/b.jpg"
		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("a", "A"), thumb("b", "B")),
			2: htmlPage(thumb("c", "C")),
		}}
		images := &diskImages{failures: map[string]int{bURL: 1}}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 2})
		req.Naming = thumbcrawl.NamingOptions{Policy: thumbcrawl.NamingSequential}

		result, err := newCrawler(site, images).Run(context.Background(), req)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"1.jpg", "2.jpg", "3.jpg"}, dirNames(t, req.Dir))
		b, _ := result.Entry(bURL)
		assert.Equal(t, filepath.Join(req.Dir, "2.jpg"), b.Outcome.Path)
	})

	t.Run("exhausted path fails only that item", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("a", "A"), thumb("b", "B")),
		}}
		c := newCrawler(site, &diskImages{})
		c.Paths = &mock.PathDeduplicator{
			DedupeFn: func(path string) (string, error) {
				if strings.HasSuffix(path, "A.jpg") {
					return "", thumbcrawl.Errorf(thumbcrawl.EEXHAUSTED, "no free name")
				}
				return path, nil
			},
		}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})
		req.Retry = crawl.RetryNone

		result, err := c.Run(context.Background(), req)

		require.NoError(t, err)
		failures := result.Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, testCDN+"/tmb/a.jpg", failures[0].URL)
		assert.Equal(t, "path_exhausted: no free name", failures[0].Outcome.Reason)
		assert.Equal(t, 1, result.Succeeded())
	})

	t.Run("resolves pages when requested", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{
			1: htmlPage(thumb("a", "A")),
			2: htmlPage(thumb("b", "B")),
		}}
		var resolvedFrom string
		c := newCrawler(site, &diskImages{})
		c.Pagination = &mock.PaginationResolver{
			ResolvePageRangeFn: func(_ context.Context, baseURL string) (thumbcrawl.PageRange, error) {
				resolvedFrom = baseURL
				return thumbcrawl.PageRange{First: 1, Last: 2}, nil
			},
		}
		req := newRequest(t, thumbcrawl.PageRange{})
		req.AutoPages = true

		result, err := c.Run(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "https://www.example.com/search?search_query=cats&type=public&page=1", resolvedFrom)
		assert.Equal(t, thumbcrawl.PageRange{First: 1, Last: 2}, result.Pages)
		assert.Equal(t, 2, result.Succeeded())
	})

	t.Run("canceled page resolution is still finalized", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		site := &siteRenderer{}
		c := newCrawler(site, &diskImages{})
		c.Pagination = &mock.PaginationResolver{
			ResolvePageRangeFn: func(ctx context.Context, _ string) (thumbcrawl.PageRange, error) {
				cancel()
				return thumbcrawl.PageRange{}, ctx.Err()
			},
		}
		var reports int
		c.Reports = []thumbcrawl.ReportWriter{&mock.ReportWriter{
			WriteReportFn: func(context.Context, *thumbcrawl.RunResult) error {
				reports++
				return nil
			},
		}}
		req := newRequest(t, thumbcrawl.PageRange{})
		req.AutoPages = true

		result, err := c.Run(ctx, req)

		assert.True(t, errors.Is(err, context.Canceled))
		require.NotNil(t, result)
		assert.True(t, result.Sealed())
		assert.True(t, result.Pages.Empty())
		assert.Empty(t, site.renders)
		assert.Equal(t, 1, reports)
	})

	t.Run("empty range crawls nothing", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{}
		var reports int
		report := &mock.ReportWriter{
			WriteReportFn: func(context.Context, *thumbcrawl.RunResult) error {
				reports++
				return nil
			},
		}
		req := newRequest(t, thumbcrawl.PageRange{})

		result, err := newCrawler(site, &diskImages{}, report).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Empty(t, site.renders)
		assert.Zero(t, result.Total())
		assert.Equal(t, 1, reports)
	})

	t.Run("report errors are not fatal", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{1: htmlPage(thumb("a", "A"))}}
		var second bool
		failing := &mock.ReportWriter{
			WriteReportFn: func(context.Context, *thumbcrawl.RunResult) error {
				return thumbcrawl.Errorf(thumbcrawl.EIO, "disk full")
			},
		}
		ok := &mock.ReportWriter{
			WriteReportFn: func(context.Context, *thumbcrawl.RunResult) error {
				second = true
				return nil
			},
		}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})

		_, err := newCrawler(site, &diskImages{}, failing, ok).Run(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, second)
	})

	t.Run("canceled run is still finalized", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		site := &siteRenderer{pages: map[int]string{1: htmlPage(thumb("a", "A"))}}
		var reportCtxErr error
		report := &mock.ReportWriter{
			WriteReportFn: func(ctx context.Context, _ *thumbcrawl.RunResult) error {
				reportCtxErr = ctx.Err()
				return nil
			},
		}
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 3})

		result, err := newCrawler(site, &diskImages{}, report).Run(ctx, req)

		assert.True(t, errors.Is(err, context.Canceled))
		require.NotNil(t, result)
		assert.True(t, result.Sealed())
		assert.Empty(t, site.renders)
		assert.NoError(t, reportCtxErr)
	})

	t.Run("reports progress", func(t *testing.T) {
		t.Parallel()

		site := &siteRenderer{pages: map[int]string{1: htmlPage(thumb("a", "A"))}}
		var types []crawl.ProgressType
		req := newRequest(t, thumbcrawl.PageRange{First: 1, Last: 1})
		req.Progress = func(e crawl.ProgressEvent) {
			types = append(types, e.Type)
		}

		_, err := newCrawler(site, &diskImages{}).Run(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, []crawl.ProgressType{
			crawl.ProgressStarted,
			crawl.ProgressPage,
			crawl.ProgressCompleted,
			crawl.ProgressFinished,
		}, types)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(&siteRenderer{}, &diskImages{})

		_, err := c.Run(context.Background(), crawl.RunRequest{Dir: t.TempDir()})
		assert.Equal(t, thumbcrawl.EINVALID, thumbcrawl.ErrorCode(err))

		_, err = c.Run(context.Background(), crawl.RunRequest{SearchURL: testSearchURL})
		assert.Equal(t, thumbcrawl.EINVALID, thumbcrawl.ErrorCode(err))

		req := newRequest(t, thumbcrawl.PageRange{First: 3, Last: 1})
		_, err = c.Run(context.Background(), req)
		assert.Equal(t, thumbcrawl.EINVALID, thumbcrawl.ErrorCode(err))
	})
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://www.example.com/search?search_query=black+cats&type=public&page=3",
		crawl.PageURL(testSearchURL, "black cats", "", 3))
	assert.Equal(t,
		"https://www.example.com/search?search_query=cats&type=public&sort=mr&page=1",
		crawl.PageURL(testSearchURL, "cats", "mr", 1))
}
