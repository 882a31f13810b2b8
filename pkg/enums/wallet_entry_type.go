package enums

import "fmt"

// WalletEntryType classifies a wallet ledger entry.
type WalletEntryType string

const (
	WalletEntryDeliveryEarnings WalletEntryType = "delivery_earnings"
	WalletEntryWithdrawal       WalletEntryType = "withdrawal"
	WalletEntryAdjustment       WalletEntryType = "adjustment"
)

var validWalletEntryTypes = []WalletEntryType{
	WalletEntryDeliveryEarnings,
	WalletEntryWithdrawal,
	WalletEntryAdjustment,
}

// IsValid reports whether the value is a known WalletEntryType.
func (w WalletEntryType) IsValid() bool {
	for _, candidate := range validWalletEntryTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletEntryType converts raw input into a WalletEntryType.
func ParseWalletEntryType(value string) (WalletEntryType, error) {
	for _, candidate := range validWalletEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet entry type %q", value)
}
