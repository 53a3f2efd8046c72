/*
Copyright 2022 Cortex Labs, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/cortexlabs/trainer/pkg/lib/files"
	"github.com/cortexlabs/trainer/pkg/lib/json"
	"github.com/cortexlabs/trainer/pkg/lib/msgpack"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

const _defaultAWSRegion = "us-east-1"

// Bucket is a directory-like location: a local directory, s3://bucket/prefix or gs://bucket/prefix
type Bucket struct {
	URI    string
	bucket *blob.Bucket
}

func IsS3Path(p string) bool {
	return strings.HasPrefix(strings.ToLower(p), "s3://")
}

func IsGCSPath(p string) bool {
	return strings.HasPrefix(strings.ToLower(p), "gs://")
}

func IsRemotePath(p string) bool {
	return IsS3Path(p) || IsGCSPath(p)
}

// Open opens the location at uri; local directories are created if missing
func Open(ctx context.Context, uri string) (*Bucket, error) {
	if IsS3Path(uri) {
		return openS3(ctx, uri)
	}
	if IsGCSPath(uri) {
		return openGCS(ctx, uri)
	}
	return openLocal(uri)
}

func openLocal(uri string) (*Bucket, error) {
	dir := strings.TrimPrefix(uri, "file://")
	dir, err := files.EscapeTilde(dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, uri)
	}

	if _, err := files.CreateDirIfMissing(dir); err != nil {
		return nil, err
	}

	b, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorOpenBucket(uri)))
	}
	return &Bucket{URI: uri, bucket: b}, nil
}

func splitBucketURI(uri string) (string, string, error) {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Host == "" {
		return "", "", ErrorInvalidURI(uri)
	}
	return parsed.Host, strings.Trim(parsed.Path, "/"), nil
}

func withPrefix(b *blob.Bucket, prefix string) *blob.Bucket {
	if prefix == "" {
		return b
	}
	return blob.PrefixedBucket(b, prefix+"/")
}

func openS3(ctx context.Context, uri string) (*Bucket, error) {
	bucketName, prefix, err := splitBucketURI(uri)
	if err != nil {
		return nil, err
	}

	region, err := GetBucketRegion(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewSession(&aws.Config{
		Region:     aws.String(region),
		DisableSSL: aws.Bool(false),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorOpenBucket(uri)))
	}

	b, err := s3blob.OpenBucket(ctx, sess, bucketName, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorOpenBucket(uri)))
	}
	return &Bucket{URI: uri, bucket: withPrefix(b, prefix)}, nil
}

// GetBucketRegion looks up the region an S3 bucket lives in
func GetBucketRegion(ctx context.Context, bucketName string) (string, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(_defaultAWSRegion),
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	region, err := s3manager.GetBucketRegion(ctx, sess, bucketName, _defaultAWSRegion)
	if err != nil {
		return "", errors.Wrap(err, errors.Message(ErrorBucketRegion(bucketName)))
	}
	return region, nil
}

func openGCS(ctx context.Context, uri string) (*Bucket, error) {
	bucketName, prefix, err := splitBucketURI(uri)
	if err != nil {
		return nil, err
	}

	b, err := blob.OpenBucket(ctx, "gs://"+bucketName)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorOpenBucket(uri)))
	}
	return &Bucket{URI: uri, bucket: withPrefix(b, prefix)}, nil
}

func (b *Bucket) Close() error {
	return b.bucket.Close()
}

func (b *Bucket) Path(key string) string {
	return Join(b.URI, key)
}

func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := b.bucket.Exists(ctx, key)
	if err != nil {
		return false, errors.Wrap(err, b.Path(key))
	}
	return exists, nil
}

func (b *Bucket) PutBytes(ctx context.Context, key string, data []byte) error {
	w, err := b.NewWriter(ctx, key)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return errors.Wrap(err, errors.Message(ErrorWrite(b.Path(key))))
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.Message(ErrorWrite(b.Path(key))))
	}
	return nil
}

func (b *Bucket) NewWriter(ctx context.Context, key string) (io.WriteCloser, error) {
	w, err := b.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorWrite(b.Path(key))))
	}
	return w, nil
}

func (b *Bucket) NewReader(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrorNotFound(b.Path(key))
		}
		return nil, errors.Wrap(err, errors.Message(ErrorRead(b.Path(key))))
	}
	return r, nil
}

func (b *Bucket) GetBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := b.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrorNotFound(b.Path(key))
		}
		return nil, errors.Wrap(err, errors.Message(ErrorRead(b.Path(key))))
	}
	return data, nil
}

func (b *Bucket) PutJSON(ctx context.Context, key string, obj interface{}) error {
	jsonBytes, err := json.MarshalIndent(obj)
	if err != nil {
		return err
	}
	return b.PutBytes(ctx, key, jsonBytes)
}

func (b *Bucket) GetJSON(ctx context.Context, key string, objPtr interface{}) error {
	jsonBytes, err := b.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	return errors.Wrap(json.Unmarshal(jsonBytes, objPtr), b.Path(key))
}

func (b *Bucket) PutMsgpack(ctx context.Context, key string, obj interface{}) error {
	msgpackBytes, err := msgpack.Marshal(obj)
	if err != nil {
		return err
	}
	return b.PutBytes(ctx, key, msgpackBytes)
}

func (b *Bucket) GetMsgpack(ctx context.Context, key string, objPtr interface{}) error {
	msgpackBytes, err := b.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	return errors.Wrap(msgpack.Unmarshal(msgpackBytes, objPtr), b.Path(key))
}

// List returns the keys under prefix in lexical order
func (b *Bucket) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := b.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.Message(ErrorFailedToListBlobs(b.Path(prefix))))
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (b *Bucket) DeleteByPrefix(ctx context.Context, prefix string) error {
	keys, err := b.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := b.bucket.Delete(ctx, key); err != nil {
			return errors.Wrap(err, "delete failed", b.Path(key))
		}
	}
	return nil
}

// Split separates a file path or URI into its containing location and its key
func Split(p string) (string, string) {
	if IsRemotePath(p) {
		idx := strings.LastIndex(p, "/")
		if idx < len("s3://") {
			return p, ""
		}
		return p[:idx], p[idx+1:]
	}
	dir, key := filepath.Split(p)
	if dir == "" {
		dir = "."
	}
	return dir, key
}

func Join(uri string, elems ...string) string {
	if IsRemotePath(uri) {
		scheme := uri[:5]
		return scheme + path.Join(append([]string{uri[5:]}, elems...)...)
	}
	return filepath.Join(append([]string{uri}, elems...)...)
}

// ReadFile reads a single file given its full path or URI
func ReadFile(ctx context.Context, p string) ([]byte, error) {
	dir, key := Split(p)
	b, err := Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.GetBytes(ctx, key)
}

// WriteFile writes a single file given its full path or URI
func WriteFile(ctx context.Context, p string, data []byte) error {
	dir, key := Split(p)
	b, err := Open(ctx, dir)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.PutBytes(ctx, key, data)
}

type fileReader struct {
	io.ReadCloser
	bucket *Bucket
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	r.bucket.Close()
	return err
}

// OpenFile streams a single file given its full path or URI; closing the reader releases the bucket
func OpenFile(ctx context.Context, p string) (io.ReadCloser, error) {
	dir, key := Split(p)
	b, err := Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	r, err := b.NewReader(ctx, key)
	if err != nil {
		b.Close()
		return nil, err
	}
	return &fileReader{ReadCloser: r, bucket: b}, nil
}
