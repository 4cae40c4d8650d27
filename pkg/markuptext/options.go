package markuptext

// Options holds decoder configuration values.
// The zero value means no overrides.
type Options struct {
	entityMap    map[string]string
	maxDepth     int
	maxAttrs     int
	maxTokenSize int

	entityMapSet    bool
	maxDepthSet     bool
	maxAttrsSet     bool
	maxTokenSizeSet bool
}

// JoinOptions combines multiple option sets into one in declaration order.
// Later options override earlier ones when set.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (opts *Options) merge(src Options) {
	if src.entityMapSet {
		opts.entityMap = src.entityMap
		opts.entityMapSet = true
	}
	if src.maxDepthSet {
		opts.maxDepth = src.maxDepth
		opts.maxDepthSet = true
	}
	if src.maxAttrsSet {
		opts.maxAttrs = src.maxAttrs
		opts.maxAttrsSet = true
	}
	if src.maxTokenSizeSet {
		opts.maxTokenSize = src.maxTokenSize
		opts.maxTokenSizeSet = true
	}
}

// WithEntityMap configures custom named entity replacements.
func WithEntityMap(values map[string]string) Options {
	if values == nil {
		return Options{entityMapSet: true}
	}
	copyMap := make(map[string]string, len(values))
	for key, value := range values {
		copyMap[key] = value
	}
	return Options{entityMap: copyMap, entityMapSet: true}
}

// MaxDepth limits element nesting depth. Zero disables the limit.
func MaxDepth(value int) Options {
	return Options{maxDepth: value, maxDepthSet: true}
}

// MaxAttrs limits the number of attributes on a start element. Zero disables the limit.
func MaxAttrs(value int) Options {
	return Options{maxAttrs: value, maxAttrsSet: true}
}

// MaxTokenSize limits the size in bytes of a single name, attribute value or text run.
// Tokens exactly MaxTokenSize bytes long are allowed. Zero disables the limit.
func MaxTokenSize(value int) Options {
	return Options{maxTokenSize: value, maxTokenSizeSet: true}
}

// MaxDepthValue reports the configured depth limit.
func (opts Options) MaxDepthValue() (int, bool) {
	return opts.maxDepth, opts.maxDepthSet
}

// MaxAttrsValue reports the configured attribute limit.
func (opts Options) MaxAttrsValue() (int, bool) {
	return opts.maxAttrs, opts.maxAttrsSet
}

// MaxTokenSizeValue reports the configured token size limit.
func (opts Options) MaxTokenSizeValue() (int, bool) {
	return opts.maxTokenSize, opts.maxTokenSizeSet
}
