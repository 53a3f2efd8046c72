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

package msgpack

import (
	"github.com/cortexlabs/trainer/pkg/lib/errors"
)

const (
	ErrMarshalMsgpack   = "msgpack.marshal_msgpack"
	ErrUnmarshalMsgpack = "msgpack.unmarshal_msgpack"
)

func ErrorMarshalMsgpack() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrMarshalMsgpack,
		Message: "unable to marshal msgpack",
	})
}

func ErrorUnmarshalMsgpack() error {
	return errors.WithStack(&errors.Error{
		Kind:    ErrUnmarshalMsgpack,
		Message: "unable to unmarshal msgpack",
	})
}
