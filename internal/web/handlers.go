package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hfauzan/marketimport/internal/importer"
	"github.com/hfauzan/marketimport/internal/logging"
	"github.com/hfauzan/marketimport/internal/store"
)

// importResponse is returned when a batch commits.
type importResponse struct {
	BatchID  string  `json:"batchId"`
	OrderIDs []int64 `json:"orderIds"`
	Rows     int     `json:"rows"`
}

// errorResponse carries a top-level error plus optional per-row failures.
type errorResponse struct {
	Error    string   `json:"error"`
	Failures []string `json:"failures,omitempty"`
}

// handleImport accepts a multipart order-export upload and runs the whole
// batch synchronously. Form fields:
//
//	file           — the export file (required)
//	file_type      — csv | xls | xlsx; inferred from the filename when omitted
//	marketplace_id — the operator-selected marketplace (required)
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.imp.MaxFileSize)
	if err := r.ParseMultipartForm(s.imp.MaxFileSize); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error: "upload exceeds the maximum allowed file size",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file"})
		return
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to read uploaded file"})
		return
	}

	ft := importer.FileType(r.FormValue("file_type"))
	if ft == "" {
		inferred, ok := importer.FileTypeForName(header.Filename)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "file_type not given and the filename extension is not recognized",
			})
			return
		}
		ft = inferred
	}

	marketplaceID, err := strconv.ParseInt(r.FormValue("marketplace_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid marketplace_id"})
		return
	}
	marketplace, err := s.store.FindOne(r.Context(), store.KindMarketplace, store.Eq("id", marketplaceID))
	if err != nil {
		logger.Error("marketplace lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if marketplace == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown marketplace_id"})
		return
	}

	batchID := uuid.New().String()
	logger = logger.With("batch_id", batchID, "file", header.Filename, "file_type", string(ft))
	logger.Info("import started", "bytes", len(blob))

	result, err := s.service.ImportBatch(r.Context(), blob, ft,
		importer.BatchContext{MarketplaceID: marketplaceID})
	if err != nil {
		var impErr *importer.ImportError
		var decErr *importer.DecodeError
		switch {
		case errors.As(err, &impErr):
			msgs := make([]string, len(impErr.Failures))
			for i, f := range impErr.Failures {
				msgs[i] = f.String()
			}
			logger.Warn("import rejected", "failed_rows", len(msgs))
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:    "import failed, all changes rolled back",
				Failures: msgs,
			})
		case errors.As(err, &decErr), errors.Is(err, importer.ErrUnsupportedFormat):
			logger.Warn("import file unreadable", "error", err)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			logger.Error("import failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	logger.Info("import committed", "rows", result.Rows, "orders", len(result.OrderIDs))
	writeJSON(w, http.StatusOK, importResponse{
		BatchID:  batchID,
		OrderIDs: result.OrderIDs,
		Rows:     result.Rows,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
