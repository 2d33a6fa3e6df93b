package feature

import (
	"context"

	"github.com/dshills/holonet/internal/host"
	"github.com/dshills/holonet/internal/lifecycle"
	"github.com/dshills/holonet/internal/ui"
)

// NameOpeningCrawl is the name of the opening crawl feature.
const NameOpeningCrawl = "opening-crawl"

// OpeningCrawl lets the GM pick a journal from the crawl folder and play it
// as an opening crawl.
type OpeningCrawl struct {
	base
}

var _ lifecycle.Activator = (*OpeningCrawl)(nil)

// NewOpeningCrawl creates the feature.
func NewOpeningCrawl() *OpeningCrawl {
	return &OpeningCrawl{base: newBase(NameOpeningCrawl)}
}

// Setup implements lifecycle.Feature.
func (o *OpeningCrawl) Setup(ctx context.Context, env *lifecycle.Env) error {
	o.bind(env)
	if env.UI == nil {
		return nil
	}
	return env.UI.Bind(ui.ActionOpeningCrawl, o.Select)
}

// Ready reports how many crawls are available.
func (o *OpeningCrawl) Ready(ctx context.Context, env *lifecycle.Env) error {
	crawls, err := o.crawls(ctx)
	if err != nil {
		return err
	}
	o.log.Debug("%d opening crawls in %q", len(crawls), env.Settings.String(KeyCrawlFolder))
	return nil
}

// Select opens the crawl picker, or warns when the folder is empty.
func (o *OpeningCrawl) Select(ctx context.Context) error {
	crawls, err := o.crawls(ctx)
	if err != nil {
		return err
	}
	folder := o.env.Settings.String(KeyCrawlFolder)
	if len(crawls) == 0 {
		o.env.Host.Notify(host.NoticeWarn, o.env.Host.Format("holonet.opening-crawl.none", folder))
		return nil
	}
	names := make([]string, 0, len(crawls))
	for _, c := range crawls {
		names = append(names, c.Name)
	}
	return o.env.Host.Open(ctx, "opening-crawl-select", map[string]any{
		"folder":   folder,
		"journals": names,
		"music":    o.env.Settings.String(KeyCrawlMusic),
	})
}

func (o *OpeningCrawl) crawls(ctx context.Context) ([]*host.Document, error) {
	journals, err := o.env.Host.List(ctx, host.KindJournal)
	if err != nil {
		return nil, err
	}
	folder := o.env.Settings.String(KeyCrawlFolder)
	var out []*host.Document
	for _, j := range journals {
		if j.Flags["folder"] == folder {
			out = append(out, j)
		}
	}
	return out, nil
}
