package deliver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"cvbuilder-backend/internal/shared/util"
)

// MimePDF is the MIME type of the generated artifact.
const MimePDF = "application/pdf"

// DefaultFilename is used when the session did not choose an output name.
const DefaultFilename = "cv.pdf"

// ErrEncoding marks a delivery encoding fault.
var ErrEncoding = errors.New("delivery encoding failed")

// Payload is the transport-safe representation of the final artifact. The
// encoded bytes travel through text-oriented channels; DownloadURI is an
// embeddable data link the caller can surface directly.
type Payload struct {
	MimeType     string `json:"mime_type"`
	Filename     string `json:"filename"`
	EncodedBytes string `json:"encoded_bytes"`
	DownloadURI  string `json:"download_uri"`
}

// EncodePDF packages PDF artifact bytes for delivery.
func EncodePDF(artifact []byte, filename string) (Payload, error) {
	if len(artifact) == 0 {
		return Payload{}, fmt.Errorf("%w: empty artifact", ErrEncoding)
	}

	if strings.TrimSpace(filename) == "" {
		filename = DefaultFilename
	}
	sanitized, err := util.SanitizeFileName(filename)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if !strings.HasSuffix(strings.ToLower(sanitized), ".pdf") {
		sanitized += ".pdf"
	}

	encoded := base64.StdEncoding.EncodeToString(artifact)
	return Payload{
		MimeType:     MimePDF,
		Filename:     sanitized,
		EncodedBytes: encoded,
		DownloadURI:  "data:" + MimePDF + ";base64," + encoded,
	}, nil
}
