package config

const (
	// MaxUsernameLength is the maximum length for usernames.
	// Limited to 255 to fit in a single indexed column and provide
	// reasonable UX.
	MaxUsernameLength = 255

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxMultipartMemory is the in-memory buffer cap for multipart
	// parsing; larger uploads spill to temporary files.
	MaxMultipartMemory = 32 << 20 // 32 MB

	// MaxUploadBytes is the request body cap for upload endpoints.
	MaxUploadBytes = 256 << 20 // 256 MB
)
