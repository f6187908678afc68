package web

import (
	"errors"
	"net/http"

	"urlboard/internal/modules/encoder"
	"urlboard/internal/modules/pipeline"
	"urlboard/internal/modules/store"
	"urlboard/internal/modules/validation"
)

// Flash kinds.
const (
	kindSuccess = "success"
	kindError   = "error"
)

// Flash codes carried in the redirect query string.
const (
	flashAdded    = "added"
	flashDeleted  = "deleted"
	flashEmpty    = "empty"
	flashInvalid  = "invalid"
	flashImage    = "image"
	flashPending  = "pending"
	flashNotFound = "notfound"
	flashTooLarge = "toolarge"
	flashUnknown  = "error"
)

// Flash is a transient toast message.
type Flash struct {
	Kind string
	Text string
}

var flashes = map[string]Flash{
	flashAdded:    {Kind: kindSuccess, Text: "URL başarıyla eklendi"},
	flashDeleted:  {Kind: kindSuccess, Text: "URL başarıyla silindi"},
	flashEmpty:    {Kind: kindError, Text: "URL alanı boş olamaz"},
	flashInvalid:  {Kind: kindError, Text: "Geçersiz URL formatı"},
	flashImage:    {Kind: kindError, Text: "Görsel okunamadı, lütfen tekrar deneyin"},
	flashPending:  {Kind: kindError, Text: "Önceki ekleme işlemi devam ediyor"},
	flashNotFound: {Kind: kindError, Text: "Kayıt bulunamadı"},
	flashTooLarge: {Kind: kindError, Text: "Dosya çok büyük"},
	flashUnknown:  {Kind: kindError, Text: "Beklenmeyen bir hata oluştu"},
}

const storageWarning = "Yerel depolama kullanılamıyor, değişiklikler yalnızca bu oturumda saklanacak"

// lookupFlash returns the flash for code, or nil for unknown codes.
func lookupFlash(code string) *Flash {
	f, ok := flashes[code]
	if !ok {
		return nil
	}
	return &f
}

// classify maps a domain error to its flash code and HTTP status.
func classify(err error) (string, int) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, validation.ErrEmptyURL):
		return flashEmpty, http.StatusBadRequest
	case errors.Is(err, validation.ErrInvalidURL):
		return flashInvalid, http.StatusBadRequest
	case errors.Is(err, encoder.ErrImageRead):
		return flashImage, http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrSubmissionPending):
		return flashPending, http.StatusConflict
	case errors.Is(err, store.ErrIndexOutOfRange):
		return flashNotFound, http.StatusNotFound
	case errors.As(err, &maxBytes):
		return flashTooLarge, http.StatusRequestEntityTooLarge
	default:
		return flashUnknown, http.StatusInternalServerError
	}
}
