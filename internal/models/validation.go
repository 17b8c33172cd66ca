package models

// Reason explains why a discount was not applied. The empty Reason means eligible.
type Reason string

const (
	ReasonExpired              Reason = "expired"
	ReasonNotStarted           Reason = "not-started"
	ReasonScopeMismatch        Reason = "scope-mismatch"
	ReasonUsageLimitReached    Reason = "usage-limit-reached"
	ReasonCustomerLimitReached Reason = "customer-limit-reached"
	ReasonArchived             Reason = "archived"
	ReasonNotFound             Reason = "not-found"
	ReasonNotADiscount         Reason = "not-a-discount"
)

type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason,omitempty"`
}

func Eligible() ValidationResult {
	return ValidationResult{Valid: true}
}

func Ineligible(r Reason) ValidationResult {
	return ValidationResult{Valid: false, Reason: r}
}
