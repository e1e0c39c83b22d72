package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/conneroisu/vedit/internal/batch"
	"github.com/conneroisu/vedit/internal/errors"
	"github.com/conneroisu/vedit/internal/inject"
	"github.com/conneroisu/vedit/internal/jsx"
	"github.com/conneroisu/vedit/internal/patch"
	"github.com/conneroisu/vedit/internal/storage"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/conneroisu/vedit/internal/validation"
)

// Edit modes accepted by /api/visual-edit.
const (
	ModeDeterministic = "deterministic"
	ModeAI            = "ai"
)

const maxRequestBody = 8 << 20

// VisualEditRequest asks for one element's changes to be written to its
// source file. When Changes is empty the element's pending changes are used.
type VisualEditRequest struct {
	ProjectID  string              `json:"projectId"`
	FilePath   string              `json:"filePath"`
	ElementID  string              `json:"elementId"`
	SourceLine int                 `json:"sourceLine"`
	Changes    []types.StyleChange `json:"changes"`
	Mode       string              `json:"mode,omitempty"`
	Element    *types.ElementInfo  `json:"element,omitempty"`
}

// VisualEditResponse reports the outcome of a visual edit.
type VisualEditResponse struct {
	Success     bool               `json:"success"`
	UpdatedCode string             `json:"updatedCode,omitempty"`
	Error       string             `json:"error,omitempty"`
	Mode        string             `json:"mode"`
	Applied     int                `json:"applied"`
	Failed      []patch.FailedEdit `json:"failed,omitempty"`
	HistoryID   string             `json:"historyId,omitempty"`
}

// BatchEditRequest edits several elements of one file in a single request.
type BatchEditRequest struct {
	ProjectID string              `json:"projectId"`
	FilePath  string              `json:"filePath"`
	Edits     []batch.ElementEdit `json:"edits"`
}

// LocateRequest asks where the element at Line (1-based) sits in Code.
type LocateRequest struct {
	Code string `json:"code"`
	Line int    `json:"line"`
}

// LocateResponse carries the located element, if any.
type LocateResponse struct {
	Found    bool          `json:"found"`
	Location *jsx.Location `json:"location,omitempty"`
}

type fileKey struct {
	projectID string
	path      string
}

func (s *Server) handleVisualEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req VisualEditRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	key, err := validateFileKey(req.ProjectID, req.FilePath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.SourceLine <= 0 {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeValidationFailed,
			"element has no source location; sourceLine is required"))
		return
	}
	if len(req.Changes) == 0 && req.ElementID != "" {
		req.Changes = s.pending.Get(req.ElementID)
	}

	mode := req.Mode
	switch mode {
	case "":
		mode = ModeAI
		if s.config.Editor.Deterministic {
			mode = ModeDeterministic
		}
	case ModeDeterministic, ModeAI:
	default:
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeValidationFailed,
			fmt.Sprintf("unknown mode %q", req.Mode)))
		return
	}

	file, err := s.loadFile(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := VisualEditResponse{Mode: mode}
	switch mode {
	case ModeDeterministic:
		result := s.generator.GenerateSearchReplaceEdit(file.Content, req.ElementID, req.Changes, key.path, req.SourceLine)
		resp.Success = result.Success
		resp.UpdatedCode = result.UpdatedCode
		resp.Error = result.Error
		resp.Applied = result.Applied
		resp.Failed = result.Failed
	case ModeAI:
		result, err := s.aiEditor.Edit(r.Context(), file.Content, req.SourceLine, req.Changes, req.Element)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Success = result.Success
		resp.UpdatedCode = result.UpdatedCode
		resp.Error = result.Error
		if result.Success {
			resp.Applied = len(req.Changes)
		}
	}

	if !resp.Success {
		s.logger.Warn(r.Context(), nil, "Visual edit not applied",
			"file", key.path, "element_id", req.ElementID, "mode", mode, "reason", resp.Error)
		resp.UpdatedCode = ""
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	entry, err := s.commit(r.Context(), key, file.Content, resp.UpdatedCode, types.HistoryEntry{
		ElementID:   req.ElementID,
		Changes:     req.Changes,
		Description: describeChanges(req.Changes),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ElementID != "" {
		s.pending.Clear(req.ElementID)
	}

	resp.HistoryID = entry.ID
	s.logger.Info(r.Context(), "Visual edit applied",
		"file", key.path, "element_id", req.ElementID, "mode", mode, "applied", resp.Applied)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatchEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchEditRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key, err := validateFileKey(req.ProjectID, req.FilePath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	edits := make([]batch.ElementEdit, 0, len(req.Edits))
	for _, edit := range req.Edits {
		if len(edit.Changes) == 0 {
			edit.Changes = s.pending.Get(edit.ElementID)
		}
		if edit.SourceLine <= 0 || len(edit.Changes) == 0 {
			continue
		}
		edits = append(edits, edit)
	}

	file, err := s.loadFile(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.batcher.Apply(r.Context(), file.Content, edits)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	ids := make([]string, 0, len(edits))
	var changes []types.StyleChange
	for _, edit := range edits {
		ids = append(ids, edit.ElementID)
		changes = append(changes, edit.Changes...)
	}
	if _, err := s.commit(r.Context(), key, file.Content, result.UpdatedCode, types.HistoryEntry{
		ElementID:   strings.Join(ids, ","),
		Changes:     changes,
		Description: fmt.Sprintf("Batch edit of %d elements", len(edits)),
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, id := range ids {
		s.pending.Clear(id)
	}

	writeJSON(w, http.StatusOK, result)
}

// commit writes updated to the store and records the edit in history.
func (s *Server) commit(ctx context.Context, key fileKey, before, updated string, entry types.HistoryEntry) (types.HistoryEntry, error) {
	if err := s.store.UpdateFile(ctx, key.projectID, key.path, storage.FileUpdate{Content: updated}); err != nil {
		return entry, storeError(err, key)
	}
	entry.ProjectID = key.projectID
	entry.FilePath = key.path
	entry.Before = before
	entry.After = updated
	return s.history.Push(entry), nil
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LocateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Line <= 0 {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeValidationFailed, "line must be positive"))
		return
	}

	loc := jsx.FindElementInText(req.Code, req.Line)
	if !loc.Found() {
		writeJSON(w, http.StatusOK, LocateResponse{})
		return
	}
	writeJSON(w, http.StatusOK, LocateResponse{Found: true, Location: &loc})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pending := make(map[string][]types.StyleChange)
		for _, id := range s.pending.ElementIDs() {
			pending[id] = s.pending.Get(id)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"pending": pending})
	case http.MethodDelete:
		if id := r.URL.Query().Get("elementId"); id != "" {
			s.pending.Clear(id)
		} else {
			s.pending.ClearAll()
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	key, err := validateFileKey(r.URL.Query().Get("projectId"), r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		file, err := s.loadFile(r.Context(), key)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, file)

	case http.MethodPut:
		var update storage.FileUpdate
		if err := decodeJSON(r, &update); err != nil {
			s.writeError(w, r, err)
			return
		}
		file := &storage.File{ProjectID: key.projectID, Path: key.path, Content: update.Content}
		if err := storage.Put(r.Context(), s.store, file); err != nil {
			s.writeError(w, r, storeError(err, key))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	case http.MethodDelete:
		if err := s.store.DeleteFile(r.Context(), key.projectID, key.path); err != nil {
			s.writeError(w, r, storeError(err, key))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.URL.Query().Get("projectId")
	if err := validation.ValidateProjectID(projectID); err != nil {
		s.writeError(w, r, errors.WrapValidation(err, errors.ErrCodeValidationFailed, "invalid projectId"))
		return
	}

	files, err := s.store.GetFiles(r.Context(), projectID)
	if err != nil {
		s.writeError(w, r, errors.WrapIO(err, errors.ErrCodeInternalError, "failed to list files"))
		return
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.Path)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projectId": projectID,
		"files":     paths,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": s.history.Entries(),
		"index":   s.history.Index(),
		"canUndo": s.history.CanUndo(),
		"canRedo": s.history.CanRedo(),
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, ok := s.history.Undo()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": "nothing to undo"})
		return
	}
	s.restore(w, r, entry, entry.Before)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, ok := s.history.Redo()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": "nothing to redo"})
		return
	}
	s.restore(w, r, entry, entry.After)
}

// restore writes one side of a history entry back to the store and tells
// editors the file changed.
func (s *Server) restore(w http.ResponseWriter, r *http.Request, entry types.HistoryEntry, content string) {
	if entry.ProjectID != "" && entry.FilePath != "" {
		key := fileKey{projectID: entry.ProjectID, path: entry.FilePath}
		file := &storage.File{ProjectID: key.projectID, Path: key.path, Content: content}
		if err := storage.Put(r.Context(), s.store, file); err != nil {
			s.writeError(w, r, storeError(err, key))
			return
		}
		s.notifyFileChanged(key.projectID + "/" + key.path)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entry":   entry,
		"canUndo": s.history.CanUndo(),
		"canRedo": s.history.CanRedo(),
	})
}

func (s *Server) handleInjectScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(inject.Script())
}

// handlePreview serves a stored file. HTML documents get the tracker script
// and element ids injected; other files are served as stored so pages can
// load their assets.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key, err := validateFileKey(r.PathValue("projectId"), r.PathValue("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	file, err := s.loadFile(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	if validation.ValidateFileExtension(key.path, []string{".html", ".htm"}) != nil {
		contentType := mime.TypeByExtension(path.Ext(key.path))
		if contentType == "" {
			contentType = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = io.WriteString(w, file.Content)
		return
	}

	page, err := inject.InjectHTML(strings.NewReader(file.Content))
	if err != nil {
		s.writeError(w, r, errors.WrapInternal(err, errors.ErrCodeInternalError, "failed to prepare preview"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.Copy(w, bytes.NewReader(page))
}

func (s *Server) loadFile(ctx context.Context, key fileKey) (*storage.File, error) {
	file, err := s.store.GetFile(ctx, key.projectID, key.path)
	if err != nil {
		return nil, storeError(err, key)
	}
	return file, nil
}

func validateFileKey(projectID, filePath string) (fileKey, error) {
	if err := validation.ValidateProjectID(projectID); err != nil {
		return fileKey{}, errors.WrapValidation(err, errors.ErrCodeValidationFailed, "invalid projectId")
	}
	cleaned, err := validation.CleanRelativePath(filePath)
	if err != nil {
		return fileKey{}, errors.WrapValidation(err, errors.ErrCodeInvalidPath, "invalid file path")
	}
	return fileKey{projectID: projectID, path: cleaned}, nil
}

// storeError maps store sentinels onto typed errors.
func storeError(err error, key fileKey) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.NewValidationError(errors.ErrCodeFileNotFound,
			fmt.Sprintf("file %s not found in project %s", key.path, key.projectID))
	case stderrors.Is(err, storage.ErrExists):
		return errors.NewValidationError(errors.ErrCodeFileExists,
			fmt.Sprintf("file %s already exists in project %s", key.path, key.projectID))
	default:
		return errors.WrapIO(err, errors.ErrCodeInternalError, "file store error")
	}
}

func describeChanges(changes []types.StyleChange) string {
	switch len(changes) {
	case 0:
		return "No changes"
	case 1:
		c := changes[0]
		if c.IsText() {
			return "Changed text"
		}
		return fmt.Sprintf("Changed %s to %s", c.Property, c.NewValue)
	default:
		return fmt.Sprintf("Changed %d properties", len(changes))
	}
}

func textChange(text string) types.StyleChange {
	return types.StyleChange{Property: types.TextContentProperty, NewValue: text}
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(out); err != nil {
		return errors.WrapValidation(err, errors.ErrCodeValidationFailed, "invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs err and writes it as JSON with the status its type maps to.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	fields := append([]interface{}{"path", r.URL.Path, "status", status}, errors.Fields(err)...)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "Request failed", fields...)
	} else {
		s.logger.Debug(r.Context(), "Request rejected", append(fields, "error", err.Error())...)
	}
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}
