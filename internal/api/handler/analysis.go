package handler

import (
	"log/slog"
	"net/http"

	"github.com/optiretina/portal/internal/analysis"
	"github.com/optiretina/portal/internal/api/middleware"
	"github.com/optiretina/portal/internal/api/response"
	"github.com/optiretina/portal/internal/api/validation"
)

// analyzeResponse is the upstream result plus display formatting.
type analyzeResponse struct {
	analysis.Result
	ConfidenceLabel string `json:"confidenceLabel"`
}

// historyResponse is the full history snapshot with derived counts.
type historyResponse struct {
	Records []analysis.Record `json:"records"`
	Summary analysis.Summary  `json:"summary"`
}

// AnalysisHandler proxies uploads and history reads to the external
// analysis service.
type AnalysisHandler struct {
	client         *analysis.Client
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(client *analysis.Client, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		client:         client,
		maxUploadBytes: maxUploadBytes,
	}
}

// Analyze handles POST /api/analyze. The image is forwarded to the analysis
// service together with the authenticated user's email as patient_id.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	// Allow some slack over the image cap for multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_UPLOAD", "Request must be a multipart upload within the size limit", requestID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "file", Message: "an image file is required"}}, requestID)
		return
	}
	defer file.Close()

	fieldErrors := validation.ValidateUploadRequest(validation.UploadRequest{
		Filename: header.Filename,
		Size:     header.Size,
		MaxBytes: h.maxUploadBytes,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	patientID := ""
	if session := middleware.GetSession(r.Context()); session != nil {
		patientID = session.Email
	}

	result, err := h.client.Analyze(r.Context(), header.Filename, file, patientID)
	if err != nil {
		slog.Error("analysis request failed", "error", err, "filename", header.Filename, "requestId", requestID)
		response.Err(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Analysis failed. Check the analysis service connection.", requestID)
		return
	}

	response.Success(w, http.StatusOK, analyzeResponse{
		Result:          *result,
		ConfidenceLabel: analysis.Percent(result.Confidence),
	}, requestID)
}

// History handles GET /api/history. The snapshot is returned as-is along
// with the derived dashboard counts. The upstream contract has no identity
// parameter, so the snapshot is not scoped to the requesting user.
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	records, err := h.client.History(r.Context())
	if err != nil {
		slog.Error("history request failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Could not load analysis history.", requestID)
		return
	}

	response.Success(w, http.StatusOK, historyResponse{
		Records: records,
		Summary: analysis.Summarize(records),
	}, requestID)
}
