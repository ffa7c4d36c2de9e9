package handlers

import "encoding/json"

type envelopeKind int

const (
	kindOK envelopeKind = iota
	kindCode
	kindMessage
)

// Envelope is the body of every JSON response. Exactly one of its variants
// is set: a success payload, an error code or an error message.
type Envelope struct {
	kind     envelopeKind
	response interface{}
	text     string
}

// OK wraps a success payload as {"response": v}
func OK(v interface{}) Envelope {
	return Envelope{kind: kindOK, response: v}
}

// ErrorCode reports a data-store failure as {"code": code}
func ErrorCode(code string) Envelope {
	return Envelope{kind: kindCode, text: code}
}

// ErrorMessage reports a failure as {"message": msg}
func ErrorMessage(msg string) Envelope {
	return Envelope{kind: kindMessage, text: msg}
}

// IsError reports whether the envelope carries a failure
func (e Envelope) IsError() bool {
	return e.kind != kindOK
}

// MarshalJSON implements json.Marshaler
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case kindCode:
		return json.Marshal(CodeResponse{Code: e.text})
	case kindMessage:
		return json.Marshal(MessageResponse{Message: e.text})
	default:
		return json.Marshal(struct {
			Response interface{} `json:"response"`
		}{Response: e.response})
	}
}

// CodeResponse documents the data-store failure body
type CodeResponse struct {
	Code string `json:"code" example:"SQLITE_2067"`
}

// MessageResponse documents the message failure body
type MessageResponse struct {
	Message string `json:"message" example:"Not found"`
}

// SuccessResponse is the payload of write operations without a result
type SuccessResponse struct {
	Success bool `json:"success"`
}

// IDResponse is the payload of POST /orders
type IDResponse struct {
	ID string `json:"id"`
}

var success = SuccessResponse{Success: true}
