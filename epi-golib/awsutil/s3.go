// Package awsutil reads signal files and metadata from s3, through a local
// cache keyed by object etag.
package awsutil

import (
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/epiclass/epiatlas/epi-golib/envutil"
	"github.com/epiclass/epiatlas/epi-golib/errors"
)

var (
	// local copies of s3 objects
	cacheroot = envutil.GetenvDefault("EPIATLAS_S3CACHE", "/tmp/epiatlas/s3cache")
	// region used to locate buckets
	defaultRegion = envutil.GetenvDefault("AWS_REGION", "us-east-1")
)

// IsS3URI returns true for s3:// paths.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// SetCacheRoot changes the cache directory.
func SetCacheRoot(path string) {
	cacheroot = path
}

// CacheRoot returns the cache directory.
func CacheRoot() string {
	return cacheroot
}

// Object locates an s3 object.
type Object struct {
	Bucket string
	Key    string
}

// ParseURI parses an s3://bucket/key uri.
func ParseURI(uri string) (Object, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Object{}, errors.Config("invalid uri %s: %v", uri, err)
	}
	if u.Scheme != "s3" {
		return Object{}, errors.Config("%s is not an s3 uri", uri)
	}
	if u.Host == "" {
		return Object{}, errors.Config("%s has no bucket", uri)
	}
	return Object{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
}

// String returns the s3 uri of the object.
func (o Object) String() string {
	return "s3://" + o.Bucket + "/" + o.Key
}

// CachePath returns where the object is cached under root.
func (o Object) CachePath(root string) string {
	return filepath.Join(root, o.Bucket, filepath.FromSlash(o.Key))
}

var (
	clientsMu sync.Mutex
	// bucket -> client of the bucket's region
	clients = make(map[string]*s3.S3)
)

func newClient(region string) (*s3.S3, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return s3.New(sess, aws.NewConfig().WithRegion(region)), nil
}

// clientFor returns a client for the region of bucket, locating the bucket
// once per process.
func clientFor(bucket string) (*s3.S3, error) {
	clientsMu.Lock()
	defer clientsMu.Unlock()
	if c, ok := clients[bucket]; ok {
		return c, nil
	}

	locator, err := newClient(defaultRegion)
	if err != nil {
		return nil, err
	}
	loc, err := locator.GetBucketLocation(&s3.GetBucketLocationInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to locate bucket %s", bucket)
	}
	region := aws.StringValue(loc.LocationConstraint)
	if region == "" {
		region = "us-east-1"
	}

	c, err := newClient(region)
	if err != nil {
		return nil, err
	}
	clients[bucket] = c
	return c, nil
}

// NewS3Reader streams the object at uri.
func NewS3Reader(uri string) (io.ReadCloser, error) {
	o, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return o.open()
}

func (o Object) open() (io.ReadCloser, error) {
	c, err := clientFor(o.Bucket)
	if err != nil {
		return nil, err
	}
	out, err := c.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(o.Key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", o)
	}
	return out.Body, nil
}

// etag returns the unquoted etag of the object.
func (o Object) etag() ([]byte, error) {
	c, err := clientFor(o.Bucket)
	if err != nil {
		return nil, err
	}
	out, err := c.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(o.Key),
	})
	if err != nil {
		return nil, err
	}
	if out.ETag == nil {
		return nil, nil
	}
	return []byte(strings.Trim(*out.ETag, `"`)), nil
}
