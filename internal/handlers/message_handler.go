package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"khata/internal/classify"
	apperrors "khata/internal/errors"
	"khata/internal/services"
	"khata/internal/trace"
)

// MessageHandler handles message ingestion requests.
type MessageHandler struct {
	ingestionService services.IngestionServicer
	traceDir         string
	traceDebug       bool
}

// NewMessageHandler creates a new MessageHandler. traceDebug enables trace
// persistence for the sessions this handler opens.
func NewMessageHandler(ingestionService services.IngestionServicer, traceDir string, traceDebug bool) *MessageHandler {
	return &MessageHandler{ingestionService: ingestionService, traceDir: traceDir, traceDebug: traceDebug}
}

// MessageRequest is one raw notification message. Body is deliberately not
// required: an empty body classifies to a drop, never a binding error.
type MessageRequest struct {
	Sender     string  `json:"sender" binding:"required"`
	Body       string  `json:"body"`
	ReceivedAt *string `json:"received_at"`
}

// ScanRequest is a batch of messages in any order; the scan re-orders them
// oldest-first before processing.
type ScanRequest struct {
	Messages []MessageRequest `json:"messages" binding:"required,min=1,dive"`
}

// OutcomeResponse mirrors one IngestOutcome.
type OutcomeResponse struct {
	TransactionID string            `json:"transaction_id"`
	Decision      classify.Decision `json:"decision"`
	Merchant      string            `json:"merchant,omitempty"`
	CategoryName  string            `json:"category_name,omitempty"`
	EntryID       string            `json:"entry_id,omitempty"`
	Duplicate     bool              `json:"duplicate"`
}

func toOutcomeResponse(o *services.IngestOutcome) OutcomeResponse {
	resp := OutcomeResponse{
		TransactionID: o.TransactionID,
		Decision:      o.Decision,
		Merchant:      o.Merchant.NormalizedName,
		CategoryName:  o.CategoryName,
		Duplicate:     o.Duplicate,
	}
	if o.Entry != nil {
		resp.EntryID = o.Entry.ID
	}
	return resp
}

func (r MessageRequest) toRawMessage() (classify.RawMessage, error) {
	msg := classify.RawMessage{Sender: r.Sender, Body: r.Body, ReceivedAt: time.Now()}
	if r.ReceivedAt != nil && *r.ReceivedAt != "" {
		parsed, err := parseFlexibleTime(*r.ReceivedAt)
		if err != nil {
			return msg, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		msg.ReceivedAt = parsed
	}
	return msg, nil
}

// ClassifyMessage classifies a single message and persists the decision.
// Responds 201 when a ledger row was written, 200 otherwise.
func (h *MessageHandler) ClassifyMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	msg, err := req.toRawMessage()
	if err != nil {
		respondWithError(c, err)
		return
	}

	session := trace.NewSession(h.traceDir, trace.ModeImmediate, h.traceDebug)
	defer session.Flush()

	outcome, err := h.ingestionService.ClassifyMessage(msg, session)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if outcome.Entry != nil && !outcome.Duplicate {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"outcome": toOutcomeResponse(outcome)})
}

// ScanMessages ingests a batch of messages under one batch trace session,
// flushed once at scan end.
func (h *MessageHandler) ScanMessages(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	msgs := make([]classify.RawMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg, err := m.toRawMessage()
		if err != nil {
			respondWithError(c, err)
			return
		}
		msgs = append(msgs, msg)
	}

	session := trace.NewSession(h.traceDir, trace.ModeBatch, h.traceDebug)
	summary, err := h.ingestionService.ScanMessages(msgs, session)
	traceFile := session.Flush()
	if err != nil {
		respondWithError(c, err)
		return
	}

	outcomes := make([]OutcomeResponse, 0, len(summary.Outcomes))
	for i := range summary.Outcomes {
		outcomes = append(outcomes, toOutcomeResponse(&summary.Outcomes[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"processed":  summary.Processed,
		"inserted":   summary.Inserted,
		"dropped":    summary.Dropped,
		"duplicates": summary.Duplicates,
		"trace_file": traceFile,
		"outcomes":   outcomes,
	})
}
