package gcs

import "log/slog"

// DefaultPrefix is the object name prefix for archived attachments.
const DefaultPrefix = "ews/attachments"

type options struct {
	bucket       string
	prefix       string
	storageClass string
	chunkSize    int // 0: client default
	endpoint     string

	// At most one credential source applies, in this order.
	credentialsJSON []byte
	credentialsFile string
	apiKey          string

	logger *slog.Logger
}

func newOptions(opts ...Option) *options {
	o := &options{prefix: DefaultPrefix, chunkSize: -1, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures the GCS store.
type Option func(*options)

// WithBucket names the bucket. Required.
func WithBucket(bucket string) Option { return func(o *options) { o.bucket = bucket } }

// WithPrefix sets the object name prefix.
func WithPrefix(prefix string) Option { return func(o *options) { o.prefix = prefix } }

// WithStorageClass stores archived attachments in a storage class such as
// "NEARLINE" or "ARCHIVE". Empty uses the bucket default.
func WithStorageClass(class string) Option {
	return func(o *options) { o.storageClass = class }
}

// WithChunkSize sets the resumable upload chunk size in bytes. Zero
// uploads each attachment in a single request.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.chunkSize = n
		}
	}
}

// WithEndpoint points the client at an emulator or private endpoint.
func WithEndpoint(endpoint string) Option { return func(o *options) { o.endpoint = endpoint } }

// WithCredentialsJSON authenticates with service account key JSON.
//
//	key, _ := os.ReadFile("archive-writer.json")
//	blobs, _ := gcs.New(ctx, gcs.WithBucket("mail-archive"), gcs.WithCredentialsJSON(key))
func WithCredentialsJSON(json []byte) Option {
	return func(o *options) { o.credentialsJSON = json }
}

// WithCredentialsFile authenticates with a service account key file.
func WithCredentialsFile(path string) Option {
	return func(o *options) { o.credentialsFile = path }
}

// WithAPIKey authenticates with an API key. Without any credential option
// Application Default Credentials are used.
func WithAPIKey(key string) Option { return func(o *options) { o.apiKey = key } }

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
