package models

// Column widths of the funder schema, in characters.
const (
	MaxPubkeyLen         = 56
	MaxCallSignLen       = 32
	MaxFullNameLen       = 256
	MaxPhoneNumberLen    = 32
	MaxAddressLen        = 1024
	MaxTestNameLen       = 64
	MaxPaymentAddressLen = 128
)
