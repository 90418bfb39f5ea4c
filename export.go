package vorgaben

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"slices"
	"time"

	"github.com/alnah/go-vorgaben/internal/assets"
)

// defaultTimeout bounds PDF generation when no timeout is specified.
const defaultTimeout = 30 * time.Second

// Exporter renders stored documents as HTML pages and PDF files.
type Exporter struct {
	pool       *RendererPool
	styleName  string
	assetPath  string
	dateLayout string
	timeout    time.Duration

	css       string
	standard  *template.Template
	checklist *template.Template
	pdf       pdfConverter
}

// ExportOption configures an Exporter.
type ExportOption func(*Exporter)

// WithStyle selects the stylesheet by name (without .css).
func WithStyle(name string) ExportOption {
	return func(e *Exporter) {
		if name != "" {
			e.styleName = name
		}
	}
}

// WithAssetPath adds a directory whose styles/ and templates/ override the
// built-in assets.
func WithAssetPath(dir string) ExportOption {
	return func(e *Exporter) {
		e.assetPath = dir
	}
}

// WithDateLayout sets the Go time layout of dates shown in exports.
func WithDateLayout(layout string) ExportOption {
	return func(e *Exporter) {
		if layout != "" {
			e.dateLayout = layout
		}
	}
}

// WithTimeout sets the PDF generation timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) ExportOption {
	if d <= 0 {
		panic("vorgaben: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.timeout = d
	}
}

// withPDFConverter replaces the browser backend, for tests.
func withPDFConverter(c pdfConverter) ExportOption {
	return func(e *Exporter) {
		e.pdf = c
	}
}

// NewExporter loads the stylesheet and page templates. Sections are
// rendered through pool.
func NewExporter(pool *RendererPool, opts ...ExportOption) (*Exporter, error) {
	e := &Exporter{
		pool:       pool,
		styleName:  assets.DefaultStyleName,
		dateLayout: GermanDateLayout,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	loader, err := assets.NewAssetResolver(e.assetPath)
	if err != nil {
		return nil, err
	}
	if e.css, err = loader.LoadStyle(e.styleName); err != nil {
		return nil, err
	}
	if e.standard, err = loadTemplate(loader, assets.StandardTemplateName); err != nil {
		return nil, err
	}
	if e.checklist, err = loadTemplate(loader, assets.ChecklistTemplateName); err != nil {
		return nil, err
	}

	if e.pdf == nil {
		e.pdf = newRodConverter(e.timeout)
	}
	return e, nil
}

func loadTemplate(loader assets.AssetLoader, name string) (*template.Template, error) {
	src, err := loader.LoadTemplate(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrTemplateRender, name, err)
	}
	return tmpl, nil
}

// Close releases browser resources.
func (e *Exporter) Close() error {
	if e.pdf != nil {
		return e.pdf.Close()
	}
	return nil
}

// sectionView is a rendered section. Error is set instead of HTML when the
// section failed to render.
type sectionView struct {
	HTML  template.HTML
	Error string
}

type requirementView struct {
	Designation string
	Topic       string
	Title       string
	Status      string
	StatusText  string
	Keywords    []string
	ShortText   []sectionView
	LongText    []sectionView
	Checklist   []string
}

type pageView struct {
	ID           string
	Name         string
	DocumentType string
	ValidFrom    string
	ValidUntil   string
	CheckDate    string
	CSS          template.CSS
	Introduction []sectionView
	Scope        []sectionView
	Requirements []requirementView
}

// HTML renders the full document page as of checkDate: introduction, scope
// and requirements ordered by topic and number with their status.
func (e *Exporter) HTML(ctx context.Context, doc Document, checkDate time.Time) (string, error) {
	if doc.ID == "" {
		return "", fmt.Errorf("%w: missing id", ErrInvalidDocument)
	}

	reqs := slices.Clone(doc.Requirements)
	SortRequirements(reqs)

	// Render every section of the document in one batch, then slice the
	// results back per owner.
	var all []Section
	all = append(all, doc.Introduction...)
	all = append(all, doc.Scope...)
	for _, r := range reqs {
		all = append(all, r.ShortText...)
		all = append(all, r.LongText...)
	}
	rendered := e.pool.RenderSections(ctx, all)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	next := func(n int) []sectionView {
		views := toSectionViews(rendered[:n])
		rendered = rendered[n:]
		return views
	}

	page := e.newPageView(doc)
	page.CheckDate = checkDate.Format(e.dateLayout)
	page.Introduction = next(len(doc.Introduction))
	page.Scope = next(len(doc.Scope))
	for _, r := range reqs {
		page.Requirements = append(page.Requirements, requirementView{
			Designation: Designation(doc.ID, r),
			Topic:       r.Topic,
			Title:       r.Title,
			Status:      RequirementStatus(r, checkDate).String(),
			StatusText:  DescribeStatus(r, checkDate, e.dateLayout),
			Keywords:    r.Keywords,
			ShortText:   next(len(r.ShortText)),
			LongText:    next(len(r.LongText)),
			Checklist:   r.Checklist,
		})
	}
	return execute(e.standard, page)
}

// Checklist renders the checklist questions of every requirement.
func (e *Exporter) Checklist(doc Document) (string, error) {
	if doc.ID == "" {
		return "", fmt.Errorf("%w: missing id", ErrInvalidDocument)
	}

	page := e.newPageView(doc)
	for _, r := range doc.Requirements {
		if len(r.Checklist) == 0 {
			continue
		}
		page.Requirements = append(page.Requirements, requirementView{
			Designation: Designation(doc.ID, r),
			Topic:       r.Topic,
			Title:       r.Title,
			Checklist:   r.Checklist,
		})
	}
	return execute(e.checklist, page)
}

// PDF prints an exported HTML page through headless Chrome.
func (e *Exporter) PDF(ctx context.Context, html string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.pdf.ToPDF(ctx, html)
}

func (e *Exporter) newPageView(doc Document) pageView {
	page := pageView{
		ID:           doc.ID,
		Name:         doc.Name,
		DocumentType: doc.DocumentType,
		CSS:          template.CSS(e.css), // #nosec G203 -- stylesheet comes from trusted assets
	}
	if doc.ValidFrom != nil {
		page.ValidFrom = doc.ValidFrom.Format(e.dateLayout)
	}
	if doc.ValidUntil != nil {
		page.ValidUntil = doc.ValidUntil.Format(e.dateLayout)
	}
	return page
}

func toSectionViews(rs []RenderedSection) []sectionView {
	if len(rs) == 0 {
		return nil
	}
	views := make([]sectionView, len(rs))
	for i, r := range rs {
		if r.Err != nil {
			views[i].Error = r.Err.Error()
			continue
		}
		views[i].HTML = template.HTML(r.HTML) // #nosec G203 -- authored content, raw HTML allowed
	}
	return views
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}
