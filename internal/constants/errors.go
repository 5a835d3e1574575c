package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no gateway endpoint configured, use 'quill config set endpoint <url>'")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrInvalidFormat        = errors.New("invalid output format")
)

// Session errors.
var (
	ErrInvalidJWTFormat   = errors.New("invalid JWT format")
	ErrSessionFileCorrupt = errors.New("session file is corrupt")
)

// Required field errors.
var (
	ErrEmailRequired    = errors.New("--email flag is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAvatarRequired   = errors.New("--file flag is required")
	ErrNothingToUpdate  = errors.New("no fields to update")
)

// Operation errors.
var (
	ErrRequestFailed   = errors.New("request failed")
	ErrInvalidMethod   = errors.New("invalid HTTP method")
	ErrInvalidPrefix   = errors.New("invalid client prefix")
	ErrInvalidBoolFlag = errors.New("invalid boolean flag value")
)
