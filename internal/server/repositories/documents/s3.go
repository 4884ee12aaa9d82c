package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
	"github.com/dmitrijs2005/aichopaicho/internal/logging"
)

// S3API is the part of *s3.Client the store needs.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Settings configures the S3-compatible endpoint.
type S3Settings struct {
	User         string
	Password     string
	Region       string
	BaseEndpoint string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds a path-style client with static credentials, which is
// what MinIO expects.
func NewS3Client(ctx context.Context, st S3Settings) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(st.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(st.User, st.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if st.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(st.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// S3Store keeps each document as a JSON object at
// <owner>/<collection>/<id>.json. Writes are serialized within the process;
// run a single server instance against one bucket.
type S3Store struct {
	client S3API
	bucket string
	clock  func() int64
	logger logging.Logger
	mu     sync.Mutex
}

func NewS3Store(client S3API, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		clock:  func() int64 { return time.Now().UnixMilli() },
		logger: logging.NewNopLogger(),
	}
}

// WithLogger sets where skipped objects are reported.
func (s *S3Store) WithLogger(l logging.Logger) *S3Store {
	s.logger = l
	return s
}

func objectKey(p docstore.Path) string {
	return p.String() + ".json"
}

func (s *S3Store) Get(ctx context.Context, p docstore.Path) (docstore.Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.get(ctx, objectKey(p))
}

func (s *S3Store) get(ctx context.Context, key string) (docstore.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", key, err)
	}
	return decode(body)
}

func (s *S3Store) SetMerge(ctx context.Context, p docstore.Path, fields docstore.Document) (docstore.Ack, error) {
	if err := p.Validate(); err != nil {
		return docstore.Ack{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := objectKey(p)
	stored, err := s.get(ctx, key)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return docstore.Ack{}, err
	}

	incoming := fields.Clone()
	incoming[docstore.FieldID] = p.ID

	merged, changed := docstore.Merge(stored, incoming, s.clock())
	ack := docstore.Ack{Path: p, UpdatedAt: merged.UpdatedAt(), Changed: changed}
	if !changed {
		return ack, nil
	}

	body, err := encode(merged)
	if err != nil {
		return docstore.Ack{}, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return docstore.Ack{}, fmt.Errorf("s3 put %s: %w", key, err)
	}
	return ack, nil
}

func (s *S3Store) Scan(ctx context.Context, owner, collection string) ([]docstore.Document, error) {
	if err := docstore.ValidateCollection(owner, collection); err != nil {
		return nil, err
	}

	prefix := owner + "/" + collection + "/"
	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var result []docstore.Document
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			doc, err := s.get(ctx, key)
			if errors.Is(err, ErrCorruptDocument) {
				s.logger.Warn(ctx, "skipping unreadable object", "key", key, "error", err)
				continue
			}
			if err != nil {
				return nil, err
			}
			result = append(result, doc)
		}
	}
	return result, nil
}
