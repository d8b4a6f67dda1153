package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AnalyzeRequest asks for a summary of previously uploaded text.
type AnalyzeRequest struct {
	ProposalHash string `json:"proposal_hash" validate:"omitempty,max=64"`
	TextContent  string `json:"text_content" validate:"required"`
	Filename     string `json:"filename"`
	SessionID    string `json:"session_id,omitempty" validate:"omitempty,max=100"`
}

// GenerateRequest asks for a memo and letter.
type GenerateRequest struct {
	ReasonCode      string          `json:"reason_code" validate:"required,max=50"`
	SpecificReasons string          `json:"specific_reasons" validate:"max=5000"`
	ProposalSummary ProposalSummary `json:"proposal_summary"`
	SessionID       string          `json:"session_id,omitempty" validate:"omitempty,max=100"`
}

// ExportRequest asks for a rendered decision packet.
type ExportRequest struct {
	GenerateRequest
	InternalRationale string `json:"internal_rationale" validate:"required"`
	ExternalReply     string `json:"external_reply" validate:"required"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ExportRequest using the validator.
func (r *ExportRequest) Validate() error {
	return validate.Struct(r)
}
