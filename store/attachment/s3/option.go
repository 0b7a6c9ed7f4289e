package s3

import (
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultRegion      = "us-east-1"
	DefaultPrefix      = "ews/attachments"
	DefaultSessionName = "ews-attachment-archive"
)

// options holds S3 store configuration.
type options struct {
	bucket string
	prefix string
	region string

	// Custom endpoint (for S3-compatible services like MinIO)
	endpoint     string
	usePathStyle bool

	accessKey    string
	secretKey    string
	sessionToken string

	roleARN         string
	roleSessionName string
	roleDuration    time.Duration
	externalID      string

	logger *slog.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{
		region: DefaultRegion,
		prefix: DefaultPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the S3 store.
type Option func(*options)

// WithBucket sets the S3 bucket name (required).
func WithBucket(bucket string) Option {
	return func(o *options) {
		o.bucket = bucket
	}
}

// WithPrefix sets the key prefix for archived attachments.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *options) {
		if region != "" {
			o.region = region
		}
	}
}

// WithEndpoint sets a custom S3 endpoint for S3-compatible services (MinIO, LocalStack, etc.).
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithPathStyle enables path-style addressing (required for some S3-compatible services).
func WithPathStyle(enabled bool) Option {
	return func(o *options) {
		o.usePathStyle = enabled
	}
}

// WithStaticCredentials sets static AWS credentials (Access Key + Secret Key).
// For Kubernetes, prefer IAM Roles for Service Accounts (IRSA), which the
// default credential chain picks up without any option.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithSessionToken sets an optional session token for temporary credentials.
func WithSessionToken(token string) Option {
	return func(o *options) {
		o.sessionToken = token
	}
}

// WithAssumeRole configures STS role assumption on top of the default chain.
// An empty sessionName uses DefaultSessionName.
func WithAssumeRole(roleARN, sessionName string) Option {
	return func(o *options) {
		o.roleARN = roleARN
		o.roleSessionName = sessionName
		if o.roleSessionName == "" {
			o.roleSessionName = DefaultSessionName
		}
	}
}

// WithRoleDuration sets how long assumed-role credentials stay valid.
func WithRoleDuration(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.roleDuration = d
		}
	}
}

// WithExternalID sets the external ID for cross-account role assumption.
func WithExternalID(externalID string) Option {
	return func(o *options) {
		o.externalID = externalID
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
