package main

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-mdpost"
	"github.com/alnah/go-mdpost/internal/assets"
	"github.com/alnah/go-mdpost/internal/config"
	"github.com/alnah/go-mdpost/internal/hints"
)

// pageWriter wraps rendered fragments in a standalone HTML page.
type pageWriter struct {
	tmpl  *template.Template
	css   string
	title string
}

// pageData is the data passed to page templates.
type pageData struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

// newPageWriter loads the page stylesheet and template, appending the
// highlight stylesheet so fenced code keeps its colours.
func newPageWriter(cfg *config.Config) (*pageWriter, error) {
	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, err
	}

	styleName := cfg.Assets.Style
	if styleName == "" {
		styleName = assets.DefaultStyleName
	}
	pageCSS, err := resolver.LoadStyle(styleName)
	if err != nil {
		return nil, fmt.Errorf("loading page style: %w", err)
	}

	highlightCSS, err := mdpost.HighlightCSS(cfg.Highlight.Style)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForStyleNotFound(mdpost.HighlightStyles()))
	}

	templateName := cfg.Assets.Template
	if templateName == "" {
		templateName = assets.DefaultTemplateName
	}
	source, err := resolver.LoadTemplate(templateName)
	if err != nil {
		return nil, fmt.Errorf("loading page template: %w", err)
	}

	tmpl, err := template.New(templateName).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing page template %q: %v", ErrUsage, templateName, err)
	}

	return &pageWriter{
		tmpl:  tmpl,
		css:   pageCSS + "\n" + highlightCSS,
		title: cfg.Output.Title,
	}, nil
}

// Wrap renders the page template around a sanitized fragment. The file
// name is the title unless one is configured.
func (p *pageWriter) Wrap(fragment, name string) (string, error) {
	title := p.title
	if title == "" {
		title = name
	}

	var b strings.Builder
	err := p.tmpl.Execute(&b, pageData{
		Title: title,
		CSS:   template.CSS(p.css),     // #nosec G203 -- stylesheets come from trusted asset loaders
		Body:  template.HTML(fragment), // #nosec G203 -- fragment is sanitized by the pipeline
	})
	if err != nil {
		return "", fmt.Errorf("%w: executing page template: %v", ErrWriteHTML, err)
	}
	return b.String(), nil
}
