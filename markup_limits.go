package xaml

import (
	"cmp"
	"fmt"

	"github.com/jacoelho/xaml/pkg/markuptext"
)

const (
	defaultMaxDepth     = 256
	defaultMaxAttrs     = 256
	defaultMaxTokenSize = 4 << 20
)

type markupLimits struct {
	maxDepth     int
	maxAttrs     int
	maxTokenSize int
}

func resolveMarkupLimits(maxDepth, maxAttrs, maxTokenSize int) (markupLimits, error) {
	if maxDepth < 0 {
		return markupLimits{}, fmt.Errorf("max depth must be >= 0")
	}
	if maxAttrs < 0 {
		return markupLimits{}, fmt.Errorf("max attrs must be >= 0")
	}
	if maxTokenSize < 0 {
		return markupLimits{}, fmt.Errorf("max token size must be >= 0")
	}
	return markupLimits{
		maxDepth:     cmp.Or(maxDepth, defaultMaxDepth),
		maxAttrs:     cmp.Or(maxAttrs, defaultMaxAttrs),
		maxTokenSize: cmp.Or(maxTokenSize, defaultMaxTokenSize),
	}, nil
}

func (l markupLimits) options() []markuptext.Options {
	return []markuptext.Options{
		markuptext.MaxDepth(cmp.Or(l.maxDepth, defaultMaxDepth)),
		markuptext.MaxAttrs(cmp.Or(l.maxAttrs, defaultMaxAttrs)),
		markuptext.MaxTokenSize(cmp.Or(l.maxTokenSize, defaultMaxTokenSize)),
	}
}
