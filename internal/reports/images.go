package reports

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// emuPerPixel converts 96 dpi pixels to English Metric Units.
const emuPerPixel = 9525

var errNotImage = errors.New("unsupported image type, expected png, jpeg or gif")

type Image struct {
	Data        []byte
	ContentType string
}

func (img Image) ext() string {
	switch img.ContentType {
	case "image/jpeg":
		return "jpeg"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// NewImage sniffs data and accepts the formats Word renders inline.
func NewImage(data []byte) (Image, error) {
	ct := http.DetectContentType(data)
	switch ct {
	case "image/png", "image/jpeg", "image/gif":
		return Image{Data: data, ContentType: ct}, nil
	}
	return Image{}, errNotImage
}

// DecodeDataURI reads "data:image/png;base64,...".
func DecodeDataURI(uri string) (Image, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "data:") {
		return Image{}, errors.New("image must be a base64 data URI")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Image{}, errors.New("image data URI must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	return NewImage(data)
}

type mediaPart struct {
	relID  string
	target string
	image  Image
}

// drawingXML closes the placeholder's text run, adds a run holding an inline
// picture and reopens a text run for whatever followed the placeholder.
func drawingXML(relID string, id int, slot ImageSlot) string {
	cx, cy := slot.WidthPx*emuPerPixel, slot.HeightPx*emuPerPixel
	name := xmlEscape(slot.Name)

	return fmt.Sprintf(`</w:t></w:r><w:r><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
		`<wp:extent cx="%[1]d" cy="%[2]d"/><wp:docPr id="%[3]d" name="%[4]s"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%[3]d" name="%[4]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[5]s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/>`+
		`<a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[1]d" cy="%[2]d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline>`+
		`</w:drawing></w:r><w:r><w:t xml:space="preserve">`,
		cx, cy, id, name, relID)
}

const imageRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

// injectMedia adds image parts to a written package and registers them in the
// document relationships and content types.
func injectMedia(pkg []byte, media []mediaPart) ([]byte, error) {
	if len(media) == 0 {
		return pkg, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		body, err := readZipFile(f)
		if err != nil {
			return nil, err
		}

		switch f.Name {
		case "word/_rels/document.xml.rels":
			body = []byte(addRelationships(string(body), media))
		case "[Content_Types].xml":
			body = []byte(addContentTypes(string(body), media))
		}

		if err := writeZipFile(zw, f.Name, body); err != nil {
			return nil, err
		}
	}

	for _, m := range media {
		if err := writeZipFile(zw, "word/"+m.target, m.image.Data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeZipFile(zw *zip.Writer, name string, body []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func addRelationships(rels string, media []mediaPart) string {
	var b strings.Builder
	for _, m := range media {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, m.relID, imageRelType, m.target)
	}
	return strings.Replace(rels, "</Relationships>", b.String()+"</Relationships>", 1)
}

func addContentTypes(types string, media []mediaPart) string {
	var b strings.Builder
	seen := map[string]bool{}
	for _, m := range media {
		ext := m.image.ext()
		if seen[ext] || strings.Contains(types, `Extension="`+ext+`"`) {
			continue
		}
		seen[ext] = true
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, ext, m.image.ContentType)
	}
	return strings.Replace(types, "</Types>", b.String()+"</Types>", 1)
}
