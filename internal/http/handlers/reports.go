package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/leolynk/leolynk/internal/reports"
)

const maxReceipts = 10

type ReportRenderer interface {
	Catalog() reports.Catalog
	Render(ctx context.Context, req reports.Request) (*reports.Result, error)
}

type ReportsHandler struct {
	renderer ReportRenderer
}

func NewReportsHandler(renderer ReportRenderer) *ReportsHandler {
	return &ReportsHandler{renderer: renderer}
}

type reportKindView struct {
	Kind      string   `json:"kind"`
	Multipart bool     `json:"multipart"`
	Fields    []string `json:"fields"`
	Images    []string `json:"images"`
}

func (h *ReportsHandler) ListReports(ctx *gin.Context) {
	if _, ok := actorFrom(ctx); !ok {
		return
	}

	cat := h.renderer.Catalog()
	out := make([]reportKindView, 0, len(cat.Reports))
	for _, name := range cat.Names() {
		k, _ := cat.Kind(name)
		v := reportKindView{Kind: name, Multipart: k.Multipart, Fields: k.Fields, Images: []string{}}
		if v.Fields == nil {
			v.Fields = []string{}
		}
		for _, s := range k.Images {
			v.Images = append(v.Images, s.Name)
		}
		out = append(out, v)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": out, "count": len(out)})
}

// RenderReport answers with the filled .docx. JSON bodies carry the form data;
// multipart kinds take it from the "data" field and images from "receipts".
func (h *ReportsHandler) RenderReport(ctx *gin.Context) {
	if _, ok := actorFrom(ctx); !ok {
		return
	}

	kind, err := h.renderer.Catalog().Kind(ctx.Param("kind"))
	if err != nil {
		RespondNotFound(ctx, "Unknown report kind")
		return
	}

	req := reports.Request{Kind: kind.Name}

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		if !kind.Multipart {
			RespondError(ctx, http.StatusUnsupportedMediaType, "unsupported_media_type", "This report takes a JSON body", nil)
			return
		}
		if !h.readMultipart(ctx, &req) {
			return
		}
	} else {
		raw, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			RespondBadRequest(ctx, "Could not read request body", nil)
			return
		}
		data, err := reports.DecodeObject(raw)
		if err != nil {
			RespondBadRequest(ctx, "Body must be a JSON object", nil)
			return
		}
		req.Data = data
	}

	res, err := h.renderer.Render(ctx.Request.Context(), req)
	if err != nil {
		var te *reports.TemplateError
		switch {
		case errors.Is(err, reports.ErrUnknownKind), errors.Is(err, reports.ErrTemplateNotFound):
			RespondNotFound(ctx, "Report template not found")
		case errors.As(err, &te):
			logError(ctx, "reports.template", err, "kind", kind.Name)
			RespondTemplateError(ctx, te.Errors)
		case errors.Is(err, reports.ErrRenderTimeout):
			RespondTimeout(ctx, "Report rendering took too long")
		default:
			logError(ctx, "reports.render", err, "kind", kind.Name)
			RespondInternal(ctx, "Could not render report")
		}
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	ctx.Data(http.StatusOK, reports.ContentType, res.Body)
}

func (h *ReportsHandler) readMultipart(ctx *gin.Context, req *reports.Request) bool {
	form, err := ctx.MultipartForm()
	if err != nil {
		RespondBadRequest(ctx, "Invalid multipart body", nil)
		return false
	}

	raw := ""
	if v := form.Value["data"]; len(v) > 0 {
		raw = v[0]
	}
	data, err := reports.DecodeObject([]byte(raw))
	if err != nil {
		RespondBadRequest(ctx, "data must be a JSON object", gin.H{"field": "data"})
		return false
	}
	req.Data = data

	files := form.File["receipts"]
	if len(files) > maxReceipts {
		RespondBadRequest(ctx, fmt.Sprintf("At most %d receipts are accepted", maxReceipts), gin.H{"field": "receipts"})
		return false
	}

	var problems []string
	for i, fh := range files {
		img, err := readImage(fh)
		if err != nil {
			problems = append(problems, fmt.Sprintf("receipt %d (%s): %v", i+1, fh.Filename, err))
			continue
		}
		req.Uploads = append(req.Uploads, img)
	}
	if len(problems) > 0 {
		RespondTemplateError(ctx, problems)
		return false
	}
	return true
}

func readImage(fh *multipart.FileHeader) (reports.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return reports.Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return reports.Image{}, err
	}
	return reports.NewImage(data)
}
