package enums

import "fmt"

// SMSDispatchStatus tracks the outbound notification for a confirmation
// code, independent of the code's validity.
type SMSDispatchStatus string

const (
	SMSDispatchPending SMSDispatchStatus = "pending"
	SMSDispatchSent    SMSDispatchStatus = "sent"
	SMSDispatchFailed  SMSDispatchStatus = "failed"
)

var validSMSDispatchStatuses = []SMSDispatchStatus{
	SMSDispatchPending,
	SMSDispatchSent,
	SMSDispatchFailed,
}

// IsValid reports whether the value is a known SMSDispatchStatus.
func (s SMSDispatchStatus) IsValid() bool {
	for _, candidate := range validSMSDispatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSMSDispatchStatus converts raw input into an SMSDispatchStatus.
func ParseSMSDispatchStatus(value string) (SMSDispatchStatus, error) {
	for _, candidate := range validSMSDispatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sms dispatch status %q", value)
}
