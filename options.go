package statfile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/statfile/codec"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/internal/options"
	"github.com/arloliu/statfile/table"
)

// Option configures Write, WriteTo and Read.
type Option = options.Option[*config]

type config struct {
	ext            format.Extension
	compression    format.CompressionType
	compressionSet bool
	registry       *codec.Registry
	build          []table.BuildOption
	logger         *zap.Logger
}

func newConfig(opts []Option) (*config, error) {
	cfg := &config{
		registry: codec.Default(),
		logger:   zap.NewNop(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithExt sets the target extension instead of deriving it from the path.
func WithExt(ext format.Extension) Option {
	return options.New(func(c *config) error {
		p, ok := format.Lookup(ext)
		if !ok {
			return fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext)
		}
		c.ext = p.Ext

		return nil
	})
}

// WithCompression sets the stream compression instead of deriving it from
// the path suffix. CompressionNone disables compression even for a .zst path.
func WithCompression(compressionType format.CompressionType) Option {
	return options.New(func(c *config) error {
		if compressionType < format.CompressionNone || compressionType > format.CompressionGzip {
			return fmt.Errorf("%w: compression %s", errs.ErrInvalidOption, compressionType)
		}
		c.compression = compressionType
		c.compressionSet = true

		return nil
	})
}

// WithRegistry selects the codec registry. Defaults to codec.Default().
func WithRegistry(r *codec.Registry) Option {
	return options.New(func(c *config) error {
		if r == nil {
			return fmt.Errorf("%w: nil codec registry", errs.ErrInvalidOption)
		}
		c.registry = r

		return nil
	})
}

// WithBuildOptions passes options to the table builder. Read ignores them.
func WithBuildOptions(opts ...table.BuildOption) Option {
	return options.NoError(func(c *config) {
		c.build = append(c.build, opts...)
	})
}

// WithLogger sets the logger for the dispatcher and the table builder.
// A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}
