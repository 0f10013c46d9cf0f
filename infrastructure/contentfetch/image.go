package contentfetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// hardCap acota cuanto leemos de la red aun cuando vamos a reescalar.
const hardCap = 25 << 20

const downscaleWidth = 1280

// DownloadImage fetches image bytes enforcing the configured size cap.
// Oversized images are downscaled and re-encoded as JPEG before giving up;
// only when the result still exceeds the cap does the download fail.
func (f *Fetcher) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "az-digest/1.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image %s: status %d", imageURL, resp.StatusCode)
	}
	if resp.ContentLength > hardCap {
		return nil, fmt.Errorf("image %s: declared size %s exceeds limit",
			imageURL, humanize.Bytes(uint64(resp.ContentLength)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, hardCap+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s: empty body", imageURL)
	}
	if int64(len(data)) > hardCap {
		return nil, fmt.Errorf("image %s: body exceeds hard limit", imageURL)
	}

	if int64(len(data)) <= f.maxImageBytes {
		return data, nil
	}

	logrus.Infof("[CONTENT_FETCH] Image %s is %s, downscaling to fit %s",
		imageURL, humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(f.maxImageBytes)))

	resized, err := downscale(data)
	if err != nil {
		return nil, fmt.Errorf("image %s: too large and downscale failed: %w", imageURL, err)
	}
	if int64(len(resized)) > f.maxImageBytes {
		return nil, fmt.Errorf("image %s: still %s after downscale",
			imageURL, humanize.Bytes(uint64(len(resized))))
	}
	return resized, nil
}

func downscale(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > downscaleWidth {
		img = imaging.Resize(img, downscaleWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileNameFromURL derives an attachment file name from an image URL.
func FileNameFromURL(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "image.jpg"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || !strings.Contains(name, ".") {
		return "image.jpg"
	}
	return name
}
