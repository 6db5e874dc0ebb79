package imaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 is an image object in Amazon S3 (or an S3-compatible store),
// written "s3://bucket/key".
type S3 struct {
	Bucket string
	Key    string
}

func (S3) Kind() string { return "s3" }
func (S3) isSource()    {}

func (o S3) String() string {
	return "s3://" + o.Bucket + "/" + o.Key
}

// ObjectGetter is the part of the S3 API the Loader needs. *s3.Client
// implements it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// WithS3Client sets the client used for S3 sources. Without it the Loader
// builds one from the default AWS configuration (environment, shared
// config files, instance role) on first use.
func WithS3Client(c ObjectGetter) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.s3 = c
		}
	}
}

func parseS3(ref string) S3 {
	rest := ref[len("s3://"):]
	bucket, key, _ := strings.Cut(rest, "/")
	return S3{Bucket: bucket, Key: key}
}

func (l *Loader) s3Client() (ObjectGetter, error) {
	l.s3Once.Do(func() {
		if l.s3 != nil {
			return
		}
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			l.s3Err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		l.s3 = s3.NewFromConfig(cfg)
	})
	return l.s3, l.s3Err
}

func (l *Loader) fetchS3(ctx context.Context, o S3) ([]byte, error) {
	if o.Bucket == "" || o.Key == "" {
		return nil, fmt.Errorf("invalid S3 reference %q: want s3://bucket/key", o.String())
	}

	client, err := l.s3Client()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(o.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", o, err)
	}
	defer out.Body.Close()

	return readRemote(out.Body, o.String())
}
