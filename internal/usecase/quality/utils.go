package quality

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"pqms/internal/errs"
)

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return nil
}

// photoURL prefixes a relative image reference with the media base URL.
func (s *Service) photoURL(image string) string {
	image = strings.TrimSpace(image)
	base := strings.TrimSpace(s.opts.MediaBaseURL)
	if image == "" || base == "" || strings.HasPrefix(image, "/") {
		return image
	}
	if u, err := url.Parse(image); err == nil && u.IsAbs() {
		return image
	}
	return strings.TrimRight(base, "/") + "/" + image
}

func requiredField(field string) error {
	return errs.Validation(field, "this field is required")
}
