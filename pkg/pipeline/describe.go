package pipeline

import (
	"fmt"

	sterrors "github.com/starelements/starelements/pkg/errors"
)

// Describe maps a run error to the message shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := sterrors.UserMessage(err)

	switch sterrors.GetCode(err) {
	case sterrors.ErrCodeHTTPStatus:
		if se, ok := sterrors.AsStatus(err); ok {
			return fmt.Sprintf("Failed to fetch package: %d %s", se.StatusCode, se.URL)
		}
		return "Failed to fetch package: " + msg
	case sterrors.ErrCodeNetwork, sterrors.ErrCodeTimeout:
		return "Network request failed: " + msg
	case sterrors.ErrCodeFilesystem:
		return "File operation failed: " + msg
	case sterrors.ErrCodeInvalidInput, sterrors.ErrCodeInvalidSpec, sterrors.ErrCodeInvalidPackage,
		sterrors.ErrCodeInvalidPath, sterrors.ErrCodeInvalidConfig, sterrors.ErrCodeInvalidManifest,
		sterrors.ErrCodeInvalidLockFile:
		return "Invalid configuration: " + msg
	case sterrors.ErrCodeUnsupportedPlatform:
		return "Unsupported platform: " + msg
	case sterrors.ErrCodeVerificationFailed, sterrors.ErrCodeBundleFailed, sterrors.ErrCodeBundleTimeout,
		sterrors.ErrCodeMinifyFailed, sterrors.ErrCodeMinifyTimeout:
		return "Bundling failed: " + msg
	}
	return msg
}
