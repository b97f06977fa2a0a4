package upload

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Windi-Fikriyansyah/studio_be/internal/apperr"
)

const MaxProofSize = 10 << 20

const (
	MsgTooLarge    = "Ukuran file maksimal 10MB"
	MsgUnsupported = "File harus berupa gambar atau PDF"
	MsgEmpty       = "File kosong"
)

// Proof is a payment proof ready to store on the project.
type Proof struct {
	MIME    string
	Size    int
	DataURL string
}

func allowed(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") || m.Is("application/pdf") {
			return true
		}
	}
	return false
}

// EncodeProof checks size and sniffed type, then encodes data as a data URL.
func EncodeProof(data []byte) (*Proof, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("payment_proof", MsgEmpty)
	}
	if len(data) > MaxProofSize {
		return nil, apperr.Validation("payment_proof", MsgTooLarge)
	}
	mime := mimetype.Detect(data)
	if !allowed(mime) {
		return nil, apperr.Validation("payment_proof", MsgUnsupported)
	}
	// buang parameter seperti "; charset=..."
	base, _, _ := strings.Cut(mime.String(), ";")
	return &Proof{
		MIME:    base,
		Size:    len(data),
		DataURL: fmt.Sprintf("data:%s;base64,%s", base, base64.StdEncoding.EncodeToString(data)),
	}, nil
}

// ReadProof reads at most one byte past the limit so oversize uploads are rejected without buffering them whole.
func ReadProof(r io.Reader) (*Proof, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxProofSize+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "Gagal membaca file")
	}
	return EncodeProof(data)
}

// DecodeDataURL accepts a proof already encoded by the browser and re-validates it.
func DecodeDataURL(s string) (*Proof, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, apperr.Validation("payment_proof", MsgUnsupported)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxProofSize+2 {
		return nil, apperr.Validation("payment_proof", MsgTooLarge)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperr.Validation("payment_proof", MsgUnsupported)
	}
	return EncodeProof(data)
}
