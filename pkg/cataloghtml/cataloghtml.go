package cataloghtml

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/facette/natsort"

	"github.com/hydrotools/cistern/csapi"
)

var (
	//go:embed catalogIndex.tmpl.html
	catalogIndexTemplate string

	//go:embed catalogSeries.tmpl.html
	catalogSeriesTemplate string

	//go:embed css/main.css
	mainCssBody []byte

	// FUTURE: consider the use of `embed.FS` and `template.ParseFS()`, if there grow to be many files here.
	// It has slightly less compile-time safety checks on filenames, though.
)

type SiteConfig struct {
	Ctx context.Context

	// The catalog being rendered.  Datasets are grouped by their A field
	// on the index page; each gets a page of its own.
	Cat csapi.Catalog

	// LoadSeries fetches one dataset when its page is rendered, typically
	// a session read behind a closure.  When nil, dataset pages carry the
	// path metadata but no payload document.
	LoadSeries func(csapi.DatasetPath) (*csapi.RegularTimeseries, error)

	// A plain string for output path prefix is used because golang still lacks
	// an interface for filesystem *writing* -- io/fs is only reading.  Sigh.
	OutputPath string

	// Set to "/" if you'll be publishing at the root of a subdomain.
	URLPrefix string
}

func (cfg SiteConfig) tfuncs() map[string]interface{} {
	return map[string]interface{}{
		"string": func(x interface{}) string {
			// Very small helper function to stringify things.
			// This is useful for things that are literally typedefs of string but the template package isn't smart enough to be calm about unboxing it.
			// (It also does return something for values of non-string types, but not something very useful.)
			return reflect.ValueOf(x).String()
		},
		"url": func(parts ...string) string {
			return path.Join(append([]string{cfg.URLPrefix}, parts...)...)
		},
	}
}

// CatalogAndChildrenToHtml performs CatalogToHtml, and also
// procedes to invoke the html'ing of all datasets within.
// Additionally, it does all the other "once" things
// (namely, outputs a copy of the css).
//
// Errors:
//
//   - cistern-error-io -- in case of errors writing out the new html content.
//   - cistern-error-internal -- in case of templating errors.
//   - cistern-error-path-not-found -- in case a cataloged dataset fails to load.
//   - cistern-error-source-unavailable -- in case a cataloged dataset fails to load.
//   - cistern-error-version-unsupported -- in case a cataloged dataset fails to load.
//   - cistern-error-validation -- in case a cataloged dataset is internally inconsistent.
func (cfg SiteConfig) CatalogAndChildrenToHtml() error {
	// Emit catalog index.
	if err := cfg.CatalogToHtml(); err != nil {
		return err
	}

	// Emit the "once" stuff.
	path := filepath.Join(cfg.OutputPath, "main.css")
	if err := os.WriteFile(path, mainCssBody, 0644); err != nil {
		return csapi.ErrorIo("couldn't open file for css as part of cataloghtml emission", path, err)
	}

	// Emit all datasets within.
	for _, p := range cfg.Cat.Paths() {
		if err := cfg.DatasetToHtml(p); err != nil {
			return err
		}
	}
	return nil
}

// doTemplate does the common bits of making files, processing the template,
// and getting the output where it needs to go.
//
// Errors:
//
//   - cistern-error-io -- in case of errors writing out the new html content.
//   - cistern-error-internal -- in case of templating errors.
func (cfg SiteConfig) doTemplate(outputPath string, tmpl string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0775); err != nil {
		return csapi.ErrorIo("couldn't mkdir during cataloghtml emission", outputPath, err)
	}
	f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0664)
	if err != nil {
		return csapi.ErrorIo("couldn't open file for writing during cataloghtml emission", outputPath, err)
	}
	defer f.Close()

	t := template.Must(template.New("main").Funcs(cfg.tfuncs()).Parse(tmpl))
	if err := t.Execute(f, data); err != nil {
		return csapi.ErrorInternal("templating failed", err)
	}
	return nil
}

// indexGroup is the index page's view of one A-field group: every dataset
// sharing that first path field, in natural text order.
type indexGroup struct {
	Name    string
	Entries []indexEntry
}

type indexEntry struct {
	Text string
	Href string
}

// CatalogToHtml generates a root page that links to all the datasets,
// grouped by their A field.
//
// This function has no parameters because it uses the catalog in the SiteConfig entirely.
//
// Errors:
//
//   - cistern-error-io -- in case of errors writing out the new html content.
//   - cistern-error-internal -- in case of templating errors.
func (cfg SiteConfig) CatalogToHtml() error {
	return cfg.doTemplate(
		filepath.Join(cfg.OutputPath, "index.html"),
		catalogIndexTemplate,
		map[string]interface{}{
			"Source": cfg.Cat.Source,
			"Groups": cfg.indexGroups(),
		},
	)
}

func (cfg SiteConfig) indexGroups() []indexGroup {
	byGroup := map[string][]string{}
	byText := map[string]csapi.DatasetPath{}
	for _, p := range cfg.Cat.Paths() {
		text := p.String()
		byGroup[p.A] = append(byGroup[p.A], text)
		byText[text] = p
	}
	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	natsort.Sort(names)

	groups := make([]indexGroup, 0, len(names))
	for _, name := range names {
		texts := byGroup[name]
		natsort.Sort(texts)
		entries := make([]indexEntry, 0, len(texts))
		for _, text := range texts {
			entries = append(entries, indexEntry{
				Text: text,
				Href: path.Join("datasets", pageName(byText[text])),
			})
		}
		groups = append(groups, indexGroup{Name: name, Entries: entries})
	}
	return groups
}

// DatasetToHtml generates a page for one dataset: its path fields, its
// metadata, and (when a loader is configured) a syntax-highlighted copy
// of its series document.
//
// Errors:
//
//   - cistern-error-io -- in case of errors writing out the new html content.
//   - cistern-error-internal -- in case of templating errors.
//   - cistern-error-path-not-found -- in case the dataset fails to load.
//   - cistern-error-source-unavailable -- in case the dataset fails to load.
//   - cistern-error-version-unsupported -- in case the dataset fails to load.
//   - cistern-error-validation -- in case the dataset is internally inconsistent.
func (cfg SiteConfig) DatasetToHtml(p csapi.DatasetPath) error {
	data := map[string]interface{}{
		"Source": cfg.Cat.Source,
		"Text":   p.String(),
		"Fields": [][2]string{
			{"A", p.A}, {"B", p.B}, {"C", p.C}, {"D", p.D}, {"E", p.E}, {"F", p.F},
		},
	}
	if cfg.LoadSeries != nil {
		rts, err := cfg.LoadSeries(p)
		if err != nil {
			return err
		}
		doc := rts.Document()
		serial, errRaw := json.Marshal(doc)
		if errRaw != nil {
			return csapi.ErrorSerialization("failed to serialize series document", errRaw)
		}
		data["Series"] = map[string]interface{}{
			"Len":        rts.Len(),
			"Units":      rts.Units,
			"Interval":   rts.Interval.String(),
			"PeriodType": string(rts.PeriodType),
			"FirstDate":  rts.Dates[0].UTC().Format(time.RFC3339),
			"LastDate":   rts.Dates[rts.Len()-1].UTC().Format(time.RFC3339),
		}
		data["SeriesFormatter"] = seriesFormatter{cfg: cfg, json: string(serial)}
	}
	return cfg.doTemplate(
		filepath.Join(cfg.OutputPath, "datasets", pageName(p)),
		catalogSeriesTemplate,
		data,
	)
}

// pageName flattens a path into one file name.  Collisions would need
// pathological field text (field content that itself looks like a
// separator), which the index page would still link correctly.
func pageName(p csapi.DatasetPath) string {
	s := strings.Trim(p.String(), csapi.Separator)
	s = strings.ReplaceAll(s, csapi.Separator, "_")
	s = strings.ReplaceAll(s, " ", "-")
	return url.PathEscape(s) + ".html"
}

// Helper type to format a JSON series document into highlighted HTML
type seriesFormatter struct {
	cfg  SiteConfig
	json string
}

func (sf seriesFormatter) FormattedJson() template.HTML {
	// indent the json
	var indentedJson bytes.Buffer
	err := json.Indent(&indentedJson, []byte(sf.json), "", "  ")
	if err != nil {
		panic("failed to indent json")
	}

	// apply syntax highlighting to json
	lexer := lexers.Get("json")
	style := styles.Get("dracula")
	formatter := formatters.Get("html")
	if lexer == nil || style == nil || formatter == nil {
		panic("failed to setup syntax highlighting")
	}
	iterator, err := lexer.Tokenise(nil, indentedJson.String())
	if err != nil {
		panic("failed to tokenize for syntax highlighting")
	}
	var outBuf bytes.Buffer
	err = formatter.Format(&outBuf, style, iterator)
	if err != nil {
		panic("failed to apply syntax highlighting")
	}
	return template.HTML(outBuf.String())
}

// DatasetPageUrl reports where a dataset's page lands relative to the
// site root, for callers that want to print or log a direct link.
func (cfg SiteConfig) DatasetPageUrl(p csapi.DatasetPath) string {
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "."
	}
	return fmt.Sprintf("%s/datasets/%s", prefix, pageName(p))
}
