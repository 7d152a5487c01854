package common

// Shared constants to enforce DRY and avoid magic strings/numbers.

// HTTP headers and content types
const (
	HeaderAPIKey      = "X-API-Key" // #nosec G101 - header name constant, not a credential
	HeaderGoogAPIKey  = "X-goog-api-key"
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
	ContentTypeJSON   = "application/json"
	ContentTypeForm   = "multipart/form-data"
	ContentTypeOctets = "application/octet-stream"
)

// API paths
const (
	PathHealthz      = "/healthz"
	PathRecognitions = "/v1/recognitions"
)

// Gemini defaults
const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel    = "gemini-flash-lite"
	DefaultTemperature    = 1.0
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderGenAI  = "genai"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// Flag value that switches an optional request feature on.
const FlagEnable = "enable"

// MIME types
const (
	MimeImagePNG  = "image/png"
	MimeImageJPEG = "image/jpeg"
	MimeImageJPG  = "image/jpg"
	MimeImageWebP = "image/webp"
)
