// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prompt

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain", input: "Hello from the support team"},
		{name: "newline and tab", input: "line one\n\tline two"},
		{name: "null byte", input: "a\x00b", wantErr: true},
		{name: "bell", input: "a\x07b", wantErr: true},
		{name: "oversized", input: strings.Repeat("x", MaxInputSize+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateString() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNumber(t *testing.T) {
	if got, err := ValidateNumber(" 42 "); err != nil || got != 42 {
		t.Errorf("ValidateNumber(42) = %v, %v", got, err)
	}
	if got, err := ValidateNumber("1.5"); err != nil || got != 1.5 {
		t.Errorf("ValidateNumber(1.5) = %v, %v", got, err)
	}
	for _, input := range []string{"", "abc", "1,5"} {
		if _, err := ValidateNumber(input); err == nil {
			t.Errorf("ValidateNumber(%q) should fail", input)
		}
	}
}

func TestValidateBool(t *testing.T) {
	for _, input := range []string{"y", "YES", "true", "1"} {
		if got, err := ValidateBool(input); err != nil || !got {
			t.Errorf("ValidateBool(%q) = %v, %v", input, got, err)
		}
	}
	for _, input := range []string{"n", "No", "false", "0"} {
		if got, err := ValidateBool(input); err != nil || got {
			t.Errorf("ValidateBool(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ValidateBool("maybe"); err == nil {
		t.Error("ValidateBool(maybe) should fail")
	}
}

func TestValidateEnum(t *testing.T) {
	options := []string{"open", "resolved", "pending"}

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "resolved", want: "resolved"},
		{input: "PENDING", want: "pending"},
		{input: "1", want: "open"},
		{input: "4", wantErr: true},
		{input: "snoozed", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ValidateEnum(tt.input, options)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEnum(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ValidateEnum(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if _, err := ValidateEnum("open", nil); err == nil {
		t.Error("ValidateEnum with no options should fail")
	}
}

func TestValidateJSON(t *testing.T) {
	got, err := ValidateJSON(`[{"id": 1}]`)
	if err != nil {
		t.Fatalf("ValidateJSON() error = %v", err)
	}
	want := []interface{}{map[string]interface{}{"id": float64(1)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ValidateJSON() = %v, want %v", got, want)
	}

	if _, err := ValidateJSON("{broken"); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := ValidateJSON(""); err == nil {
		t.Error("empty input should fail")
	}

	deep := strings.Repeat("[", MaxNestedDepth+2) + strings.Repeat("]", MaxNestedDepth+2)
	if _, err := ValidateJSON(deep); err == nil {
		t.Error("deeply nested input should fail")
	}
}

func TestValidateObject(t *testing.T) {
	got, err := ValidateObject(`{"email": "ada@example.com"}`)
	if err != nil {
		t.Fatalf("ValidateObject() error = %v", err)
	}
	if got["email"] != "ada@example.com" {
		t.Errorf("ValidateObject() = %v", got)
	}

	if _, err := ValidateObject(`["a"]`); err == nil {
		t.Error("array should be rejected")
	}
}
