package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csv2cypher/internal/core"
	"github.com/JonMunkholm/csv2cypher/internal/handler"
	"github.com/JonMunkholm/csv2cypher/internal/history"
	"github.com/JonMunkholm/csv2cypher/internal/tabular"
)

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 << 20

var errInvalidLimit = errors.New("invalid limit")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":    "ok",
		"active":    s.limiter.Active(),
		"available": s.limiter.Available(),
	})
}

func (s *Server) handleConvertKnowledgePoints(w http.ResponseWriter, r *http.Request) {
	s.handleConvert(w, r, core.KindKnowledgePoints)
}

func (s *Server) handleConvertPrerequisites(w http.ResponseWriter, r *http.Request) {
	s.handleConvert(w, r, core.KindPrerequisites)
}

// handleConvert converts the multipart "file" field and returns the Cypher
// text. Encoding and record count travel in response headers.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request, kind core.Kind) {
	if err := s.parseForm(w, r, 1); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	u, err := s.saveUpload(r, "file")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer u.remove()

	if err := s.limiter.Acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	res, err := s.pipeline.ConvertNamed(r.Context(), kind, u.path, u.name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("X-Encoding", res.Encoding)
	w.Header().Set("X-Records", strconv.Itoa(res.Records))
	if res.Lossy {
		w.Header().Set("X-Lossy", "true")
	}
	writeCypher(w, res.Cypher, "")
}

// handleConvertScript converts the "knowledge" and "prerequisite" fields
// together and returns the composite script.
func (s *Server) handleConvertScript(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	k, err := s.saveUpload(r, "knowledge")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer k.remove()

	p, err := s.saveUpload(r, "prerequisite")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer p.remove()

	if err := s.limiter.Acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	pair := handler.Pair{Knowledge: k.path, Prerequisite: p.path}
	res, err := s.pipeline.ProcessNamedPair(r.Context(), pair, k.name, p.name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("X-Nodes", strconv.Itoa(res.Nodes.Result.Records))
	w.Header().Set("X-Relationships", strconv.Itoa(res.Relationships.Result.Records))
	writeCypher(w, res.Script, handler.NamesFor(k.name, p.name).Complete)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("%w: %q", errInvalidLimit, raw))
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, r, map[string]any{"entries": entries})
}

// parseForm caps the body at files uploads of the configured size.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int64) error {
	if s.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, files*s.maxFileSize+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return errNoFile
		}
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// upload is a form file copied to a temporary path so the reader can
// sniff and, for workbooks, reopen it.
type upload struct {
	path string
	name string // client file name, reduced to its base
}

func (u upload) remove() {
	_ = os.Remove(u.path)
}

func (s *Server) saveUpload(r *http.Request, field string) (upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload{}, fmt.Errorf("%w: %s", errNoFile, field)
		}
		return upload{}, err
	}
	defer file.Close()

	name := sanitizeName(header)
	ext := ".csv"
	if tabular.IsWorkbook(name) {
		ext = strings.ToLower(filepath.Ext(name))
	}

	tmp, err := os.CreateTemp("", "csv2cypher-*"+ext)
	if err != nil {
		return upload{}, fmt.Errorf("create temp file: %w", err)
	}
	u := upload{path: tmp.Name(), name: name}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		u.remove()
		return upload{}, fmt.Errorf("store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		u.remove()
		return upload{}, fmt.Errorf("store upload: %w", err)
	}
	return u, nil
}

func sanitizeName(h *multipart.FileHeader) string {
	name := filepath.Base(strings.ReplaceAll(h.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload.csv"
	}
	return name
}

func writeCypher(w http.ResponseWriter, text, filename string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}
