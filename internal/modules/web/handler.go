package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"urlboard/internal/models"
	"urlboard/internal/modules/pipeline"
	"urlboard/internal/modules/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Handler serves the URL board page and its JSON API.
type Handler struct {
	store     *store.Store
	pipeline  *pipeline.Pipeline
	maxUpload int64
	logger    *zap.Logger
}

// NewHandler creates a Handler. maxUpload bounds the size of a submitted form.
func NewHandler(st *store.Store, p *pipeline.Pipeline, maxUpload int64, logger *zap.Logger) *Handler {
	return &Handler{store: st, pipeline: p, maxUpload: maxUpload, logger: logger}
}

// Router wires every route of the board.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(h.logger))

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/urls", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/urls/{index:[0-9]+}/delete", h.Delete).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/urls", h.ListJSON).Methods(http.MethodGet)
	api.HandleFunc("/urls", h.AddJSON).Methods(http.MethodPost)
	api.HandleFunc("/urls/{index:[0-9]+}", h.DeleteJSON).Methods(http.MethodDelete)
	return r
}

type card struct {
	Index int
	URL   string
	Href  template.URL
	Image template.URL
}

// scriptSchemes never become clickable links.
var scriptSchemes = map[string]bool{
	"javascript": true,
	"vbscript":   true,
	"data":       true,
}

// linkHref trusts every validated scheme as a link target except script-capable ones.
func linkHref(raw string) template.URL {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || scriptSchemes[strings.ToLower(u.Scheme)] {
		return "#"
	}
	return template.URL(trimmed)
}

type pageData struct {
	Cards          []card
	Flash          *Flash
	StorageWarning string
	Pending        bool
}

// Index renders the board.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	records := h.store.Records()
	data := pageData{
		Cards:   make([]card, 0, len(records)),
		Flash:   lookupFlash(r.URL.Query().Get("flash")),
		Pending: h.pipeline.Pending(),
	}
	if h.store.Degraded() {
		data.StorageWarning = storageWarning
	}
	for i, rec := range records {
		c := card{Index: i, URL: rec.URL, Href: linkHref(rec.URL)}
		// Only data URIs produced by the encoder are trusted as image sources.
		if strings.HasPrefix(rec.Image, "data:") {
			c.Image = template.URL(rec.Image)
		}
		data.Cards = append(data.Cards, c)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("render page failed", zap.Error(err))
	}
}

// Add handles the add form and redirects back to the board.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	sub, cleanup, err := h.readSubmission(w, r)
	if err != nil {
		h.redirect(w, r, err)
		return
	}
	defer cleanup()

	h.redirect(w, r, h.pipeline.Run(r.Context(), sub))
}

// Delete removes the record at the path index and redirects back to the board.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.removeAt(r); err != nil {
		h.redirect(w, r, err)
		return
	}
	h.redirectFlash(w, r, flashDeleted)
}

func (h *Handler) removeAt(r *http.Request) error {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return store.ErrIndexOutOfRange
	}
	return h.store.RemoveAt(r.Context(), index)
}

// readSubmission extracts the candidate URL and optional image from a form.
// The returned cleanup closes the uploaded file.
func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.Submission, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, err
	}

	sub := &models.Submission{Candidate: r.FormValue("url")}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return sub, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	sub.Image = &models.Attachment{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}
	return sub, func() { file.Close() }, nil
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		h.redirectFlash(w, r, flashAdded)
		return
	}
	code, status := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.redirectFlash(w, r, code)
}

func (h *Handler) redirectFlash(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/?flash="+url.QueryEscape(code), http.StatusSeeOther)
}
