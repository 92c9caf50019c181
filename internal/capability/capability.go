// Package capability probes the external pieces a pipeline run depends on:
// the ffmpeg and yt-dlp binaries, whisper model weights, and the
// transcription API credential. Detection is separated from judgment so the
// CLI can fail fast on what its run actually needs while the readiness
// endpoint keeps probing live.
package capability

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/health"
	"github.com/vidscribe/vidscribe/pkg/provider/stt/whisper"
)

// Capabilities is a point-in-time snapshot of what [Detect] found.
type Capabilities struct {
	// FFmpeg is the resolved ffmpeg path, empty when not found.
	FFmpeg string

	// YTDLP is the resolved yt-dlp path, empty when not found.
	YTDLP string

	// ModelFile is the expected whisper weights path for the configured
	// size class.
	ModelFile string

	// ModelPresent reports whether ModelFile exists.
	ModelPresent bool

	// HasCredential reports whether an API key is configured.
	HasCredential bool
}

// Detect probes the host for everything cfg might need. It never fails;
// callers decide with [Capabilities.Verify] what is fatal for their run.
func Detect(cfg *config.Config) Capabilities {
	caps := Capabilities{
		ModelFile:     whisper.ModelPath(cfg.Local.ModelsDir, string(cfg.Local.ModelSize)),
		HasCredential: cfg.API.Key != "",
	}
	if p, err := exec.LookPath(cfg.Tools.FFmpeg); err == nil {
		caps.FFmpeg = p
	}
	if p, err := exec.LookPath(cfg.Tools.YTDLP); err == nil {
		caps.YTDLP = p
	}
	if fi, err := os.Stat(caps.ModelFile); err == nil && !fi.IsDir() {
		caps.ModelPresent = true
	}
	return caps
}

// Verify reports whether a run can start. ffmpeg is always required;
// yt-dlp only when the input must be downloaded; model weights only for
// the local backend. A missing credential is not checked here: the
// transcription layer reports it with its own error so auto runs can
// degrade instead of aborting.
func (c Capabilities) Verify(backend config.Backend, needDownload bool) error {
	var errs []error
	if c.FFmpeg == "" {
		errs = append(errs, errors.New("capability: ffmpeg not found (install it or set tools.ffmpeg)"))
	}
	if needDownload && c.YTDLP == "" {
		errs = append(errs, errors.New("capability: yt-dlp not found (install it or set tools.ytdlp)"))
	}
	if backend == config.BackendLocal && !c.ModelPresent {
		errs = append(errs, fmt.Errorf("capability: whisper weights missing at %s", c.ModelFile))
	}
	return errors.Join(errs...)
}

// Checkers returns live readiness probes matching the configured run mode,
// for mounting on the health endpoint. Probes re-run on every request so a
// model file downloaded after startup flips the report without a restart.
func Checkers(cfg *config.Config) []health.Checker {
	checks := []health.Checker{
		{Name: "ffmpeg", Check: func(context.Context) error {
			return lookPath(cfg.Tools.FFmpeg)
		}},
		{Name: "yt-dlp", Check: func(context.Context) error {
			return lookPath(cfg.Tools.YTDLP)
		}},
	}
	if cfg.Backend != config.BackendAPI {
		checks = append(checks, health.Checker{Name: "whisper-model", Check: func(context.Context) error {
			path := whisper.ModelPath(cfg.Local.ModelsDir, string(cfg.Local.ModelSize))
			fi, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("weights not found at %s", path)
			}
			if fi.IsDir() {
				return fmt.Errorf("%s is a directory", path)
			}
			return nil
		}})
	}
	if cfg.Backend != config.BackendLocal {
		checks = append(checks, health.Checker{Name: "api-credential", Check: func(context.Context) error {
			if cfg.API.Key == "" {
				return errors.New("no api key configured")
			}
			return nil
		}})
	}
	return checks
}

func lookPath(bin string) error {
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found in PATH", bin)
	}
	return nil
}
