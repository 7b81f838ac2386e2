package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"

	"fraudlens/internal/domain/models"
	"fraudlens/internal/domain/services"
	"fraudlens/internal/upload"
	"fraudlens/pkg/logger"
)

// uploadField is the multipart field carrying the transaction table
const uploadField = "file"

// AnalysisHandler exposes the risk engine over HTTP
type AnalysisHandler struct {
	engine       *services.Engine
	stager       *upload.Stager
	rejections   RejectionRecorder
	maxBodyBytes int64
	logger       *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler. rejections may be nil.
func NewAnalysisHandler(engine *services.Engine, stager *upload.Stager, rejections RejectionRecorder, maxBodyBytes int64, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		engine:       engine,
		stager:       stager,
		rejections:   rejections,
		maxBodyBytes: maxBodyBytes,
		logger:       log.WithComponent("analysis-handler"),
	}
}

// TextRequest is the body of POST /api/analyze-text
type TextRequest struct {
	Text string `json:"text"`
}

// VoiceRequest is the body of POST /api/analyze-voice
type VoiceRequest struct {
	Transcript string `json:"transcript"`
}

// OCRRequest is the body of POST /api/analyze-ocr-text
type OCRRequest struct {
	OCRText string `json:"ocrText"`
}

// URLRequest is the body of POST /api/scan-url
type URLRequest struct {
	URL string `json:"url"`
}

// AnalyzeText handles POST /api/analyze-text
func (h *AnalysisHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !h.decode(w, r, models.ChannelText, &req) {
		return
	}
	h.scoreText(w, r, models.ChannelText, req.Text, "text required")
}

// AnalyzeVoice handles POST /api/analyze-voice. The client performs speech
// recognition and submits the transcript.
func (h *AnalysisHandler) AnalyzeVoice(w http.ResponseWriter, r *http.Request) {
	var req VoiceRequest
	if !h.decode(w, r, models.ChannelVoice, &req) {
		return
	}
	h.scoreText(w, r, models.ChannelVoice, req.Transcript, "transcript required")
}

// AnalyzeOCRText handles POST /api/analyze-ocr-text. The client runs OCR
// on the image and submits the recognised text.
func (h *AnalysisHandler) AnalyzeOCRText(w http.ResponseWriter, r *http.Request) {
	var req OCRRequest
	if !h.decode(w, r, models.ChannelOCR, &req) {
		return
	}
	h.scoreText(w, r, models.ChannelOCR, req.OCRText, "ocrText required")
}

// ScanURL handles POST /api/scan-url
func (h *AnalysisHandler) ScanURL(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if !h.decode(w, r, models.ChannelURL, &req) {
		return
	}

	result, err := h.engine.AnalyzeURL(req.URL)
	if errors.Is(err, models.ErrEmptyInput) {
		h.reject(w, models.ChannelURL, http.StatusBadRequest, "url required", "empty_input")
		return
	}
	if err != nil {
		h.requestLogger(r).Error().Err(err).Msg("url analysis failed")
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// AnalyzeBehavior handles POST /api/behavior with a multipart CSV upload
// in the "file" field. The upload is staged to a temporary file that is
// removed once the request finishes, whatever the outcome.
func (h *AnalysisHandler) AnalyzeBehavior(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	part, err := h.uploadPart(r)
	if err != nil {
		log.Debug().Err(err).Msg("no table upload in request")
		h.reject(w, models.ChannelBehavior, http.StatusBadRequest, models.ErrMissingUpload.Error(), "missing_upload")
		return
	}
	defer part.Close()

	var result *models.AnalysisResult
	err = h.stager.Stage(part, func(f *os.File) error {
		var analyzeErr error
		result, analyzeErr = h.engine.AnalyzeTable(f)
		return analyzeErr
	})

	var parseErr *models.TableParseError
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, result)
	case errors.Is(err, upload.ErrTooLarge):
		h.reject(w, models.ChannelBehavior, http.StatusRequestEntityTooLarge, err.Error(), "too_large")
	case errors.As(err, &parseErr):
		log.Warn().Err(err).Msg("transaction table could not be parsed")
		if h.rejections != nil {
			h.rejections.ObserveRejection(models.ChannelBehavior, "parse_error")
		}
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "CSV parse failed",
			Detail: parseErr.Detail(),
		})
	default:
		log.Error().Err(err).Msg("behavior analysis failed")
		respondError(w, http.StatusInternalServerError, "analysis failed")
	}
}

// uploadPart streams the multipart body up to the file field
func (h *AnalysisHandler) uploadPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, models.ErrMissingUpload
			}
			return nil, err
		}
		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func (h *AnalysisHandler) scoreText(w http.ResponseWriter, r *http.Request, channel models.Channel, text, missingMsg string) {
	result, err := h.engine.AnalyzeText(channel, text)
	if errors.Is(err, models.ErrEmptyInput) {
		h.reject(w, channel, http.StatusBadRequest, missingMsg, "empty_input")
		return
	}
	if err != nil {
		h.requestLogger(r).Error().Err(err).Str("channel", string(channel)).Msg("text analysis failed")
		respondError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// decode reads a JSON body into dst, replying 400 on failure
func (h *AnalysisHandler) decode(w http.ResponseWriter, r *http.Request, channel models.Channel, dst any) bool {
	body := io.Reader(r.Body)
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		h.requestLogger(r).Debug().Err(err).Msg("invalid request body")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, channel, http.StatusRequestEntityTooLarge, "request body too large", "too_large")
			return false
		}
		h.reject(w, channel, http.StatusBadRequest, "invalid request body", "invalid_body")
		return false
	}
	return true
}

func (h *AnalysisHandler) reject(w http.ResponseWriter, channel models.Channel, status int, message, reason string) {
	if h.rejections != nil {
		h.rejections.ObserveRejection(channel, reason)
	}
	respondError(w, status, message)
}

func (h *AnalysisHandler) requestLogger(r *http.Request) *logger.Logger {
	return h.logger.WithRequestID(middleware.GetReqID(r.Context()))
}
