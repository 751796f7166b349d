package reports

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const testCatalog = `
[reports.activity]
template = "activity.docx"
filename_prefix = "activity_report"
title_field = "title"
fields = ["title", "date", "venue"]
images = [{ name = "logo", width_px = 100, height_px = 50 }]

[reports.treasurer]
template = "treasurer.docx"
filename_prefix = "treasurer_report"
multipart = true
images = [
  { name = "receipt_0", width_px = 200, height_px = 300, source = "upload" },
  { name = "receipt_1", width_px = 200, height_px = 300, source = "upload" },
]

[reports.script]
template = "missing.docx"
`

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

func paragraph(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		b.WriteString("<w:r><w:t>" + r + "</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

// buildDocx builds a minimal Word package around body, with an optional header.
func buildDocx(t *testing.T, body, header string) []byte {
	t.Helper()

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/></Types>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`},
	}
	if header != "" {
		parts = append(parts, struct{ name, content string }{
			"word/header1.xml", `<w:hdr ` + wordNS + `>` + header + `</w:hdr>`,
		})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("create %s: %v", p.name, err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			t.Fatalf("write %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readPart(t *testing.T, pkg []byte, name string) (string, bool) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		t.Fatalf("rendered report is not a zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b), true
	}
	return "", false
}

func newTestRenderer(t *testing.T, files fs.FS, timeout time.Duration) *Renderer {
	t.Helper()

	cat, err := ParseCatalog(testCatalog)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	r := NewRenderer(cat, files, time.Minute, timeout, nil)
	r.now = func() time.Time { return time.Date(2025, 9, 14, 10, 0, 0, 0, time.UTC) }
	return r
}

func TestRender_FillsTextPlaceholders(t *testing.T) {
	body := paragraph("Title: {title}") +
		paragraph("Venue: {venue}") +
		paragraph("Year {leoisticYear}, on {formattedDate}") +
		paragraph("Notes: {notes}")
	files := fstest.MapFS{
		"activity.docx": {Data: buildDocx(t, body, paragraph("{title} | {missingInHeader}"))},
	}
	r := newTestRenderer(t, files, time.Second)

	res, err := r.Render(context.Background(), Request{
		Kind: "activity",
		Data: map[string]any{
			"title": "Beach Clean-up & Awareness",
			"date":  "2025-08-03",
			"notes": []any{"bring gloves", "bring bags"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(res.Body) == 0 {
		t.Fatalf("expected a non-empty document")
	}
	if res.Filename != "activity_report_beach-clean-up-awareness_2025-09-14.docx" {
		t.Fatalf("unexpected filename %q", res.Filename)
	}

	doc, ok := readPart(t, res.Body, "word/document.xml")
	if !ok {
		t.Fatalf("document.xml missing from output")
	}
	for _, want := range []string{
		"Title: Beach Clean-up &amp; Awareness",
		"Year 2025-2026, on 3 August 2025",
		`bring gloves</w:t><w:br/><w:t xml:space="preserve">bring bags`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "{") {
		t.Fatalf("unreplaced placeholder left in document:\n%s", doc)
	}
	// missing venue renders as an empty string
	if !strings.Contains(doc, "Venue: <") {
		t.Fatalf("expected empty venue substitution:\n%s", doc)
	}

	hdr, ok := readPart(t, res.Body, "word/header1.xml")
	if !ok {
		t.Fatalf("header1.xml missing from output")
	}
	if !strings.Contains(hdr, "Beach Clean-up &amp; Awareness | ") || strings.Contains(hdr, "{") {
		t.Fatalf("unexpected header:\n%s", hdr)
	}
}

func TestRender_MergesSplitRuns(t *testing.T) {
	body := `<w:p><w:r><w:t>Hello {ti</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>tle</w:t></w:r><w:r><w:t>}!</w:t></w:r></w:p>`
	files := fstest.MapFS{"activity.docx": {Data: buildDocx(t, body, "")}}
	r := newTestRenderer(t, files, time.Second)

	res, err := r.Render(context.Background(), Request{Kind: "activity", Data: map[string]any{"title": "Leos"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, _ := readPart(t, res.Body, "word/document.xml")
	if !strings.Contains(doc, "Hello Leos!") {
		t.Fatalf("split placeholder not merged:\n%s", doc)
	}
}

func TestRender_DropsXMLIllegalRunes(t *testing.T) {
	files := fstest.MapFS{
		"activity.docx": {Data: buildDocx(t, paragraph("Title: {title}"), paragraph("{title}"))},
	}
	r := newTestRenderer(t, files, time.Second)

	res, err := r.Render(context.Background(), Request{
		Kind: "activity",
		Data: map[string]any{"title": "Clean\u0001up\u000b & \ufffeWalk"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, part := range []string{"word/document.xml", "word/header1.xml"} {
		xmlBody, ok := readPart(t, res.Body, part)
		if !ok {
			t.Fatalf("%s missing from output", part)
		}
		wellFormed(t, part, xmlBody)
		if !strings.Contains(xmlBody, "Cleanup &amp; Walk") {
			t.Fatalf("%s: control characters not dropped:\n%s", part, xmlBody)
		}
	}
}

func wellFormed(t *testing.T, name, body string) {
	t.Helper()

	dec := xml.NewDecoder(strings.NewReader(body))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well-formed XML: %v", name, err)
		}
	}
}

func TestBodyText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a < b & c", "a &lt; b &amp; c"},
		{"tab\there", "tab here"},
		{"one\r\ntwo", `one</w:t><w:br/><w:t xml:space="preserve">two`},
		{"bell\u0007 nul\u0000 esc\u001b", "bell nul esc"},
		{"emoji \U0001F981 kept", "emoji \U0001F981 kept"},
	}
	for _, c := range cases {
		if got := bodyText(c.in); got != c.want {
			t.Fatalf("bodyText(%q): got %q want %q", c.in, got, c.want)
		}
	}
}

func TestRender_TemplateErrors(t *testing.T) {
	body := paragraph("{broken") + paragraph("{ }") + paragraph("{%signature}")
	files := fstest.MapFS{"activity.docx": {Data: buildDocx(t, body, "")}}
	r := newTestRenderer(t, files, time.Second)

	_, err := r.Render(context.Background(), Request{Kind: "activity"})

	var te *TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
	if len(te.Errors) != 3 {
		t.Fatalf("expected 3 problems, got %v", te.Errors)
	}
}

func TestRender_DataURIImage(t *testing.T) {
	body := paragraph("Logo: {%logo} end")
	files := fstest.MapFS{"activity.docx": {Data: buildDocx(t, body, "")}}
	r := newTestRenderer(t, files, time.Second)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	res, err := r.Render(context.Background(), Request{Kind: "activity", Data: map[string]any{"logo": uri}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc, _ := readPart(t, res.Body, "word/document.xml")
	if !strings.Contains(doc, `r:embed="rIdLeo1"`) || !strings.Contains(doc, `cx="952500" cy="476250"`) {
		t.Fatalf("drawing not inserted:\n%s", doc)
	}
	if media, ok := readPart(t, res.Body, "word/media/leolynk_1.png"); !ok || media != string(pngBytes) {
		t.Fatalf("media part missing or wrong")
	}
	rels, _ := readPart(t, res.Body, "word/_rels/document.xml.rels")
	if !strings.Contains(rels, `Id="rIdLeo1"`) || !strings.Contains(rels, `Target="media/leolynk_1.png"`) {
		t.Fatalf("relationship not added:\n%s", rels)
	}
	types, _ := readPart(t, res.Body, "[Content_Types].xml")
	if !strings.Contains(types, `Extension="png" ContentType="image/png"`) {
		t.Fatalf("content type not added:\n%s", types)
	}
}

func TestRender_MissingImageIsBlank(t *testing.T) {
	body := paragraph("Logo: {%logo}")
	files := fstest.MapFS{"activity.docx": {Data: buildDocx(t, body, "")}}
	r := newTestRenderer(t, files, time.Second)

	res, err := r.Render(context.Background(), Request{Kind: "activity"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	doc, _ := readPart(t, res.Body, "word/document.xml")
	if strings.Contains(doc, "{%logo}") || strings.Contains(doc, "w:drawing") {
		t.Fatalf("expected placeholder removed without a drawing:\n%s", doc)
	}
}

func TestRender_InvalidImageData(t *testing.T) {
	files := fstest.MapFS{"activity.docx": {Data: buildDocx(t, paragraph("{%logo}"), "")}}
	r := newTestRenderer(t, files, time.Second)

	uri := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("not an image"))
	_, err := r.Render(context.Background(), Request{Kind: "activity", Data: map[string]any{"logo": uri}})

	var te *TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
}

func TestRender_UploadSlots(t *testing.T) {
	body := paragraph("{%receipt_0}") + paragraph("{%receipt_1}") + paragraph("Closing {closingBalance}")
	files := fstest.MapFS{"treasurer.docx": {Data: buildDocx(t, body, "")}}
	r := newTestRenderer(t, files, time.Second)

	gif, err := NewImage([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	if err != nil {
		t.Fatalf("gif: %v", err)
	}

	res, err := r.Render(context.Background(), Request{
		Kind:    "treasurer",
		Data:    map[string]any{"openingBalance": 100, "income": []any{map[string]any{"description": "Dues", "amount": 50}}},
		Uploads: []Image{gif},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if _, ok := readPart(t, res.Body, "word/media/leolynk_1.gif"); !ok {
		t.Fatalf("uploaded receipt not embedded")
	}
	if _, ok := readPart(t, res.Body, "word/media/leolynk_2.gif"); ok {
		t.Fatalf("only one receipt was uploaded")
	}
	doc, _ := readPart(t, res.Body, "word/document.xml")
	if strings.Count(doc, "<w:drawing>") != 1 || !strings.Contains(doc, "Closing 150.00") {
		t.Fatalf("unexpected document:\n%s", doc)
	}
	if res.Filename != "treasurer_report_2025-09-14.docx" {
		t.Fatalf("unexpected filename %q", res.Filename)
	}
}

func TestRender_UnknownKindAndMissingTemplate(t *testing.T) {
	r := newTestRenderer(t, fstest.MapFS{}, time.Second)

	if _, err := r.Render(context.Background(), Request{Kind: "minutes"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := r.Render(context.Background(), Request{Kind: "script"}); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

// blockingFS never finishes opening a file until release is closed.
type blockingFS struct {
	release chan struct{}
}

func (b blockingFS) Open(name string) (fs.File, error) {
	<-b.release
	return nil, fs.ErrNotExist
}

func TestRender_Timeout(t *testing.T) {
	files := blockingFS{release: make(chan struct{})}
	t.Cleanup(func() { close(files.release) })

	r := newTestRenderer(t, files, 20*time.Millisecond)

	start := time.Now()
	_, err := r.Render(context.Background(), Request{Kind: "activity"})
	if !errors.Is(err, ErrRenderTimeout) {
		t.Fatalf("expected ErrRenderTimeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not enforced")
	}
}

// countingFS counts template reads.
type countingFS struct {
	files fstest.MapFS
	opens int
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens++
	return c.files.Open(name)
}

func TestRender_CachesPreparedTemplate(t *testing.T) {
	files := &countingFS{files: fstest.MapFS{"activity.docx": {Data: buildDocx(t, paragraph("{title}"), "")}}}
	r := newTestRenderer(t, files, time.Second)

	for i := 0; i < 3; i++ {
		if _, err := r.Render(context.Background(), Request{Kind: "activity"}); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
	}
	if files.opens != 1 {
		t.Fatalf("expected template read once, got %d", files.opens)
	}
}

func TestDecodeDataURI(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(pngBytes)

	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{"png", "data:image/png;base64," + good, false},
		{"unpadded", "data:image/png;base64," + strings.TrimRight(good, "="), false},
		{"not a data uri", "https://example.com/logo.png", true},
		{"not base64", "data:image/png," + good, true},
		{"garbage", "data:image/png;base64,!!!", true},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if err == nil && img.ContentType != "image/png" {
				t.Fatalf("content type %q", img.ContentType)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Beach Clean-up 2025":  "beach-clean-up-2025",
		"  --Hello, World!-- ": "hello-world",
		"Café Night":           "caf-night",
		"":                     "",
	}
	for in, want := range tests {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
