package models

// Confidence indicates how certain the parser was about an intent.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Intent field names used in MissingFields. Chain fields are always
// optional and never appear here.
const (
	FieldAmount    = "amount"
	FieldToken     = "token"
	FieldRecipient = "recipient"
)

// PaymentIntent represents a structured, possibly incomplete payment request
// produced by the parsing collaborator. Amounts are human-entered decimal
// strings, not yet scaled to the token's smallest unit.
type PaymentIntent struct {
	Amount           string     `json:"amount,omitempty"`
	Token            string     `json:"token,omitempty"`
	Recipient        string     `json:"recipient,omitempty"`
	SourceChain      string     `json:"source_chain,omitempty"`
	DestinationChain string     `json:"destination_chain,omitempty"`
	Confidence       Confidence `json:"confidence"`
	MissingFields    []string   `json:"missing_fields"`
	OriginalInput    string     `json:"original_input"`
}

// ComputeMissingFields derives the missing-field set from the intent's
// amount, token and recipient values.
func (p *PaymentIntent) ComputeMissingFields() []string {
	missing := []string{}
	if p.Amount == "" {
		missing = append(missing, FieldAmount)
	}
	if p.Token == "" {
		missing = append(missing, FieldToken)
	}
	if p.Recipient == "" {
		missing = append(missing, FieldRecipient)
	}
	return missing
}

// Unparseable reports whether the intent carries none of the three key
// fields. Such intents must be rejected before reconciliation.
func (p *PaymentIntent) Unparseable() bool {
	return p.Amount == "" && p.Token == "" && p.Recipient == ""
}
