// Copyright Sift Labs, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lang

import "strings"

// FunctionName is the unique identity of a function, method or receiver.
// Methods are qualified as "Contract::method"; free functions are bare names.
type FunctionName string

// Origin distinguishes user code from the language's standard library. Most
// detectors skip standard-library functions unless configured otherwise.
type Origin int

const (
	// OriginUser marks a function written by the contract author.
	OriginUser Origin = iota
	// OriginStdlib marks a function from the language's standard library.
	OriginStdlib
)

func (o Origin) String() string {
	if o == OriginStdlib {
		return "stdlib"
	}
	return "user"
}

// Contract returns the contract part of a qualified method name, or "" for a
// free function.
func (f FunctionName) Contract() string {
	if i := strings.Index(string(f), "::"); i >= 0 {
		return string(f)[:i]
	}
	return ""
}

// Short returns the method part of a qualified name, or the bare name itself.
func (f FunctionName) Short() string {
	if i := strings.Index(string(f), "::"); i >= 0 {
		return string(f)[i+2:]
	}
	return string(f)
}
