package templates

import (
	"context"
	"errors"
	"strings"

	"github.com/a-h/templ"
)

var ErrRender = errors.New("failed to render email template")

// Render executes c and returns the produced HTML.
func Render(ctx context.Context, c templ.Component) (string, error) {
	if c == nil {
		return "", ErrRender
	}
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", errors.Join(ErrRender, err)
	}
	return sb.String(), nil
}
