package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/url"
	"strings"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder

	domainerrors "github.com/inkwellpress/editorial-desk/internal/errors"
)

// blurHashSize is the thumbnail edge used for BlurHash computation.
const blurHashSize = 64

// Info describes a stored data URL.
type Info struct {
	MIME   string `json:"mime"`
	Bytes  int    `json:"bytes"` // decoded payload size
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	// BlurHash is a short placeholder for raster images; empty for other payloads.
	BlurHash string `json:"blurHash,omitempty"`
}

// Inspect decodes a data URL and reports its type, size and, for png, jpeg, gif and webp
// images, its dimensions and BlurHash.
func Inspect(dataURL string) (*Info, error) {
	mime, payload, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	info := &Info{MIME: mime, Bytes: len(payload)}
	if !strings.HasPrefix(mime, "image/") {
		return info, nil
	}

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		// SVG and other formats without a registered decoder.
		return info, nil //nolint:nilerr // unknown image formats are not an error
	}
	bounds := img.Bounds()
	info.Width, info.Height = bounds.Dx(), bounds.Dy()

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return nil, fmt.Errorf("encode blurhash: %w", err)
	}
	info.BlurHash = hash
	return info, nil
}

// decodeDataURL splits "data:[<mime>][;base64],<payload>" and decodes the payload.
func decodeDataURL(dataURL string) (mime string, payload []byte, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, domainerrors.Validation("not a data URL")
	}
	header, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, domainerrors.Validation("data URL has no payload separator")
	}

	header, isBase64 := strings.CutSuffix(header, ";base64")
	mime, _, _ = strings.Cut(header, ";")
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		payload, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", nil, domainerrors.Validationf("invalid base64 payload: %v", err)
		}
		return mime, payload, nil
	}

	unescaped, err := url.PathUnescape(data)
	if err != nil {
		return "", nil, domainerrors.Validationf("invalid percent-encoded payload: %v", err)
	}
	return mime, []byte(unescaped), nil
}

// thumbnail scales img down to at most blurHashSize on its longest edge with
// nearest-neighbour sampling. BlurHash only needs a low-resolution source.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()
	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	dstWidth, dstHeight := blurHashSize, blurHashSize
	if srcWidth > srcHeight {
		dstHeight = max(1, srcHeight*blurHashSize/srcWidth)
	} else {
		dstWidth = max(1, srcWidth*blurHashSize/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	for y := range dstHeight {
		for x := range dstWidth {
			srcX := x * srcWidth / dstWidth
			srcY := y * srcHeight / dstHeight
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}
