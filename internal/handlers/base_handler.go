package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
}

// renderHTML executes the named template and sends it as an HTML response.
// The template is rendered into a buffer first so a failing template never sends a partial page.
func (h *BaseHandler) renderHTML(w http.ResponseWriter, status int, tmpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write HTML response", zap.Error(err))
	}
}

// respondError sends a plain text error response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}
