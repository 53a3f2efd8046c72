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
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/cortexlabs/trainer/pkg/lib/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/shirou/gopsutil/mem"
)

var (
	_homeDir string
)

// the returned file should be closed by the caller
func Open(path string) (*os.File, error) {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorReadFile(path)))
	}

	return file, nil
}

// the returned file should be closed by the caller
func Create(path string) (*os.File, error) {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Create(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorCreateFile(path)))
	}

	return file, nil
}

func ReadFileBytes(path string) ([]byte, error) {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return nil, err
	}

	if err := CheckFile(cleanPath); err != nil {
		return nil, err
	}

	fileBytes, err := ioutil.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.Message(ErrorReadFile(path)))
	}

	return fileBytes, nil
}

func WriteFile(data []byte, path string) error {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return err
	}

	if err := ioutil.WriteFile(cleanPath, data, 0664); err != nil {
		return errors.Wrap(err, errors.Message(ErrorCreateFile(path)))
	}

	return nil
}

func WriteFileFromReader(reader io.Reader, path string) error {
	file, err := Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return errors.Wrap(err, errors.Message(ErrorCreateFile(path)))
	}

	return nil
}

// e.g. ~/path -> /home/ubuntu/path
// returns original path if there was an error
func EscapeTilde(path string) (string, error) {
	if !(path == "~" || strings.HasPrefix(path, "~/")) {
		return path, nil
	}

	if _homeDir == "" {
		homeDir, err := homedir.Dir()
		if err != nil {
			return path, err
		}
		if homeDir == "" || homeDir == "/" {
			return path, nil
		}
		_homeDir = homeDir
	}

	if path == "~" {
		return _homeDir, nil
	}

	// path starts with "~/"
	return filepath.Join(_homeDir, path[2:]), nil
}

func IsDir(path string) bool {
	return CheckDir(path) == nil
}

// CheckDir returns nil if the path is a directory
func CheckDir(dirPath string) error {
	cleanPath, err := EscapeTilde(dirPath)
	if err != nil {
		return err
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return errors.Wrap(err, errors.Message(ErrorDirDoesNotExist(dirPath)))
	}

	if !fileInfo.IsDir() {
		return ErrorNotADir(dirPath)
	}

	return nil
}

func IsFile(path string) bool {
	return CheckFile(path) == nil
}

// CheckFile returns nil if the path is a file
func CheckFile(path string) error {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return err
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return ErrorFileDoesNotExist(path)
	}
	if fileInfo.IsDir() {
		return ErrorNotAFile(path)
	}

	return nil
}

func CreateDir(path string) error {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cleanPath, os.ModePerm); err != nil {
		return errors.Wrap(err, errors.Message(ErrorCreateDir(path)))
	}

	return nil
}

func CreateDirIfMissing(path string) (bool, error) {
	if IsDir(path) {
		return false, nil
	}

	if IsFile(path) {
		return false, ErrorFileAlreadyExists(path)
	}

	if err := CreateDir(path); err != nil {
		return false, err
	}

	return true, nil
}

// CheckFitsInMemory errors if reading the whole file would exceed the available memory
func CheckFitsInMemory(path string) error {
	cleanPath, err := EscapeTilde(path)
	if err != nil {
		return err
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return ErrorFileDoesNotExist(path)
	}

	virtual, err := mem.VirtualMemory()
	if err != nil {
		// memory stats are unavailable on some platforms
		return nil
	}
	if fileInfo.Size() > int64(virtual.Available) {
		return errors.Wrap(ErrorInsufficientMemoryToReadFile(fileInfo.Size(), int64(virtual.Available)), path)
	}

	return nil
}

func CloseSilent(closer io.Closer, closers ...io.Closer) {
	closer.Close()
	for _, closer := range closers {
		closer.Close()
	}
}
