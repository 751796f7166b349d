package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode"

	"github.com/leolynk/leolynk/internal/cache"
	"github.com/leolynk/leolynk/internal/observability"
	"github.com/nguyenthenguyen/docx"
	"go.opentelemetry.io/otel/attribute"
)

const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	ErrTemplateNotFound = errors.New("report template not found")
	ErrRenderTimeout    = errors.New("report render timed out")
)

// TemplateError lists everything wrong with a template or the images sent to it.
type TemplateError struct {
	Errors []string
}

func (e *TemplateError) Error() string {
	return "template error: " + strings.Join(e.Errors, "; ")
}

type Request struct {
	Kind string
	Data map[string]any
	// Uploads fill the kind's upload image slots in order.
	Uploads []Image
}

type Result struct {
	Filename string
	Body     []byte
}

type Renderer struct {
	catalog   Catalog
	templates fs.FS
	cache     *cache.Cache[*Template]
	timeout   time.Duration
	prom      *observability.Prom
	now       func() time.Time
}

func NewRenderer(catalog Catalog, templates fs.FS, cacheTTL, timeout time.Duration, prom *observability.Prom) *Renderer {
	return &Renderer{
		catalog:   catalog,
		templates: templates,
		cache:     cache.New[*Template](cacheTTL),
		timeout:   timeout,
		prom:      prom,
		now:       time.Now,
	}
}

func (r *Renderer) Catalog() Catalog { return r.catalog }

// Render fills the kind's template with req.Data. It gives up after the
// configured timeout or when ctx is done, whichever comes first.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "reports.render",
		attribute.String("report.kind", req.Kind),
		attribute.Int("report.uploads", len(req.Uploads)),
	)

	res, err := r.render(ctx, req)
	result := outcome(err)
	r.prom.ObserveReport(req.Kind, time.Since(start), result)
	observability.EndSpan(span, err, result)
	return res, err
}

func outcome(err error) string {
	var te *TemplateError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrTemplateNotFound):
		return "not_found"
	case errors.As(err, &te):
		return "template_error"
	case errors.Is(err, ErrRenderTimeout):
		return "timeout"
	default:
		return "error"
	}
}

func (r *Renderer) render(ctx context.Context, req Request) (*Result, error) {
	kind, err := r.catalog.Kind(req.Kind)
	if err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	type rendered struct {
		res *Result
		err error
	}
	done := make(chan rendered, 1)

	go func() {
		res, err := r.fill(kind, req)
		done <- rendered{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", ErrRenderTimeout, kind.Name)
	}
}

func (r *Renderer) template(kind Kind) (*Template, error) {
	return r.cache.GetOrLoad(kind.Template, func() (*Template, error) {
		raw, err := fs.ReadFile(r.templates, kind.Template)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, kind.Template)
			}
			return nil, err
		}
		return prepareTemplate(raw)
	})
}

func (r *Renderer) fill(kind Kind, req Request) (*Result, error) {
	tpl, err := r.template(kind)
	if err != nil {
		return nil, err
	}

	problems := append([]string(nil), tpl.Errors...)

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	now := r.now()
	values := Flatten(data)
	derive(kind.Name, data, values, now)

	media, drawings, imgProblems := r.images(kind, tpl, values, req.Uploads)
	problems = append(problems, imgProblems...)
	if len(problems) > 0 {
		return nil, &TemplateError{Errors: problems}
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(tpl.Data), int64(len(tpl.Data)))
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", kind.Template, err)
	}
	defer doc.Close()
	editable := doc.Editable()

	pairs := make([]string, 0, 2*(len(tpl.Text)+len(tpl.Images)))
	for _, name := range tpl.Text {
		pairs = append(pairs, "{"+name+"}", bodyText(values[name]))
	}
	for _, name := range tpl.Images {
		pairs = append(pairs, "{%"+name+"}", drawings[name])
	}
	editable.SetContent(strings.NewReplacer(pairs...).Replace(editable.GetContent()))

	// headers and footers hold single line values
	for _, name := range tpl.Text {
		v := strings.Join(strings.Fields(xmlChars(values[name])), " ")
		if err := editable.ReplaceHeader("{"+name+"}", v); err != nil {
			return nil, err
		}
		if err := editable.ReplaceFooter("{"+name+"}", v); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := editable.Write(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	body, err := injectMedia(buf.Bytes(), media)
	if err != nil {
		return nil, fmt.Errorf("add report images: %w", err)
	}

	return &Result{Filename: filename(kind, values, now), Body: body}, nil
}

func (r *Renderer) images(kind Kind, tpl *Template, values map[string]string, uploads []Image) ([]mediaPart, map[string]string, []string) {
	var (
		media    []mediaPart
		problems []string
	)
	drawings := map[string]string{}
	next := 0

	for _, slot := range kind.Images {
		if !contains(tpl.Images, slot.Name) {
			if slot.Source == UploadSource && next < len(uploads) {
				next++
			}
			continue
		}

		var (
			img Image
			ok  bool
		)
		switch {
		case slot.Source == UploadSource:
			if next < len(uploads) {
				img, ok = uploads[next], true
				next++
			}
		case values[slot.Name] != "":
			decoded, err := DecodeDataURI(values[slot.Name])
			if err != nil {
				problems = append(problems, fmt.Sprintf("image %s: %v", slot.Name, err))
				continue
			}
			img, ok = decoded, true
		}
		if !ok {
			drawings[slot.Name] = ""
			continue
		}

		n := len(media) + 1
		part := mediaPart{
			relID:  fmt.Sprintf("rIdLeo%d", n),
			target: fmt.Sprintf("media/leolynk_%d.%s", n, img.ext()),
			image:  img,
		}
		media = append(media, part)
		drawings[slot.Name] = drawingXML(part.relID, 9000+n, slot)
	}

	for _, name := range tpl.Images {
		if _, ok := kind.Slot(name); !ok {
			problems = append(problems, fmt.Sprintf("image placeholder {%%%s} has no slot in report %q", name, kind.Name))
		}
	}
	return media, drawings, problems
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func xmlEscape(s string) string {
	return xmlReplacer.Replace(xmlChars(s))
}

// xmlChars drops runes XML 1.0 cannot carry, such as most C0 controls.
// Word refuses to open a part that contains them, even as character references.
func xmlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= unicode.MaxRune:
			return r
		}
		return -1
	}, s)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// bodyText escapes v for a <w:t> node and turns line breaks into <w:br/>.
func bodyText(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	lines := strings.Split(v, "\n")
	for i, l := range lines {
		lines[i] = xmlEscape(strings.ReplaceAll(l, "\t", " "))
	}
	return strings.Join(lines, `</w:t><w:br/><w:t xml:space="preserve">`)
}

func filename(kind Kind, values map[string]string, now time.Time) string {
	parts := []string{kind.FilenamePrefix}
	if kind.TitleField != "" {
		if s := slug(values[kind.TitleField]); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, now.Format("2006-01-02"))
	return strings.Join(parts, "_") + ".docx"
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 60 {
			break
		}
	}
	return strings.TrimRight(b.String(), "-")
}
