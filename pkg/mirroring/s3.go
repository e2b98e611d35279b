package mirroring

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/serum-errors/go-serum"

	"github.com/hydrotools/cistern/csapi"
)

type s3Pusher struct {
	client *s3.Client
	cfg    csapi.S3PushConfig
}

func newS3Pusher(ctx context.Context, cfg csapi.S3PushConfig) (s3Pusher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
					SigningRegion:     cfg.Region,
				}, nil
			})),
	)
	if err != nil {
		return s3Pusher{}, serum.Errorf(csapi.ECodeMirror, "loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	// make sure we can access the specified bucket
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return s3Pusher{}, serum.Errorf(csapi.ECodeMirror, "could not access bucket %q: %w", cfg.Bucket, err)
	}

	return s3Pusher{
		client: client,
		cfg:    cfg,
	}, nil
}

func (p *s3Pusher) key(id csapi.VesselCID) string {
	key := vesselKey(id)
	if p.cfg.Path != nil {
		key = path.Join(*p.cfg.Path, key)
	}
	return key
}

func (p *s3Pusher) hasVessel(id csapi.VesselCID) (bool, error) {
	_, err := p.client.HeadObject(context.TODO(), &s3.HeadObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(p.key(id)),
	})
	if err != nil {
		var responseError *awshttp.ResponseError
		if errors.As(err, &responseError) && responseError.ResponseError.HTTPStatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, serum.Errorf(csapi.ECodeMirror, "checking bucket %q for %s: %w", p.cfg.Bucket, id, err)
	}
	return true, nil
}

func (p *s3Pusher) pushVessel(id csapi.VesselCID, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return csapi.ErrorIo("opening vessel for upload", localPath, err)
	}
	defer file.Close()

	key := p.key(id)
	uploader := manager.NewUploader(p.client)
	_, err = uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket: &p.cfg.Bucket,
		Key:    &key,
		Body:   file,
	})
	if err != nil {
		return serum.Errorf(csapi.ECodeMirror, "uploading %s to bucket %q: %w", id, p.cfg.Bucket, err)
	}
	return nil
}
