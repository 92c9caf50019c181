package transcribe

import "errors"

var (
	// ErrFileNotFound is returned when the audio path does not name an
	// existing regular file.
	ErrFileNotFound = errors.New("audio file not found")

	// ErrCorruptAudio is returned for files too small to hold a usable
	// audio stream.
	ErrCorruptAudio = errors.New("audio file corrupt or too small")

	// ErrMissingCredential is returned when the api backend is requested
	// explicitly but no credential is configured.
	ErrMissingCredential = errors.New("api credential not configured")

	// ErrSizeLimitExceeded is returned when an asset exceeds the api upload
	// ceiling even after compression.
	ErrSizeLimitExceeded = errors.New("audio exceeds api size limit")

	// ErrBackendFailure is returned when the selected backend ran and
	// failed. Under the auto backend this triggers the local fallback
	// instead of surfacing.
	ErrBackendFailure = errors.New("transcription backend failed")

	// ErrUnknownBackend is returned for backend values other than api,
	// local and auto.
	ErrUnknownBackend = errors.New("unknown transcription backend")
)
