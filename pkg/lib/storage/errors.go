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
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrInvalidURI        = "storage.invalid_uri"
	ErrOpenBucket        = "storage.open_bucket"
	ErrBucketRegion      = "storage.bucket_region"
	ErrNotFound          = "storage.not_found"
	ErrRead              = "storage.read"
	ErrWrite             = "storage.write"
	ErrFailedToListBlobs = "storage.failed_to_list_blobs"
)

func ErrorInvalidURI(uri string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInvalidURI,
		Message: fmt.Sprintf("%s: invalid bucket uri (expected s3://<bucket>/<prefix> or gs://<bucket>/<prefix>)", uri),
	})
}

func ErrorOpenBucket(uri string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrOpenBucket,
		Message: fmt.Sprintf("%s: unable to open bucket", uri),
	})
}

func ErrorBucketRegion(bucket string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrBucketRegion,
		Message: fmt.Sprintf("unable to determine the region of bucket %s", bucket),
	})
}

func ErrorNotFound(p string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s: not found", p),
	})
}

func ErrorRead(p string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrRead,
		Message: fmt.Sprintf("%s: unable to read", p),
	})
}

func ErrorWrite(p string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrWrite,
		Message: fmt.Sprintf("%s: unable to write", p),
	})
}

func ErrorFailedToListBlobs(p string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrFailedToListBlobs,
		Message: fmt.Sprintf("%s: failed to list objects", p),
	})
}
