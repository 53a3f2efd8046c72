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

package files

import (
	"fmt"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrCreateDir                    = "files.create_dir"
	ErrCreateFile                   = "files.create_file"
	ErrReadFile                     = "files.read_file"
	ErrFileAlreadyExists            = "files.file_already_exists"
	ErrFileDoesNotExist             = "files.file_does_not_exist"
	ErrDirDoesNotExist              = "files.dir_does_not_exist"
	ErrNotAFile                     = "files.not_a_file"
	ErrNotADir                      = "files.not_a_dir"
	ErrInsufficientMemoryToReadFile = "files.insufficient_memory_to_read_file"
)

func ErrorCreateDir(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrCreateDir,
		Message: fmt.Sprintf("%s: unable to create directory", path),
	})
}

func ErrorCreateFile(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrCreateFile,
		Message: fmt.Sprintf("%s: unable to create file", path),
	})
}

func ErrorReadFile(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrReadFile,
		Message: fmt.Sprintf("%s: unable to read file", path),
	})
}

func ErrorFileAlreadyExists(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrFileAlreadyExists,
		Message: fmt.Sprintf("%s: file already exists", path),
	})
}

func ErrorFileDoesNotExist(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrFileDoesNotExist,
		Message: fmt.Sprintf("%s: file does not exist", path),
	})
}

func ErrorDirDoesNotExist(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrDirDoesNotExist,
		Message: fmt.Sprintf("%s: directory does not exist", path),
	})
}

func ErrorNotAFile(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNotAFile,
		Message: fmt.Sprintf("%s: no such file", path),
	})
}

func ErrorNotADir(path string) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrNotADir,
		Message: fmt.Sprintf("%s: not a directory", path),
	})
}

func ErrorInsufficientMemoryToReadFile(fileSizeBytes int64, availableMemBytes int64) error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrInsufficientMemoryToReadFile,
		Message: fmt.Sprintf("insufficient memory available to read file (file size: %d bytes, available memory: %d bytes)", fileSizeBytes, availableMemBytes),
	})
}
