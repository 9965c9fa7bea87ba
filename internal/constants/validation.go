package constants

// Field Length Limits
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores input past 72 bytes
	MaxNameLength     = 120
	MaxEmailLength    = 255
	MaxShortTokenLen  = 64
	MaxJTILength      = 64
)

// Short token settings
const (
	DefaultShortTokenLength = 12
	ShortTokenMaxAttempts   = 3
)
