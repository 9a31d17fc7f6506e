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

package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationID ties together the logs, spans and history rows of one run.
type CorrelationID string

type correlationKeyType struct{}

var correlationKey = correlationKeyType{}

// HeaderCorrelationID carries the correlation ID on outbound requests.
const HeaderCorrelationID = "X-Correlation-ID"

// NewCorrelationID generates a random correlation ID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString())
}

func (c CorrelationID) String() string {
	return string(c)
}

// IsValid reports whether c is an RFC 4122 UUID in canonical form.
func (c CorrelationID) IsValid() bool {
	if len(c) != 36 {
		return false
	}
	_, err := uuid.Parse(string(c))
	return err == nil
}

// ToContext returns a context carrying id.
func ToContext(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

// FromContext returns the correlation ID carried by ctx, or "" when absent.
func FromContext(ctx context.Context) CorrelationID {
	if id, ok := ctx.Value(correlationKey).(CorrelationID); ok {
		return id
	}
	return ""
}

// EnsureContext returns ctx with a correlation ID, generating one when ctx has
// none.
func EnsureContext(ctx context.Context) (context.Context, CorrelationID) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewCorrelationID()
	return ToContext(ctx, id), id
}

// InjectHeaders sets the correlation header from ctx on headers.
// headers is returned unchanged when ctx carries no ID.
func InjectHeaders(ctx context.Context, headers map[string]string) map[string]string {
	id := FromContext(ctx)
	if id == "" {
		return headers
	}
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	headers[HeaderCorrelationID] = id.String()
	return headers
}

// CorrelationMiddleware stores the request's X-Correlation-ID in the request
// context, generating one when the header is absent. Malformed IDs are
// rejected with 400.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := CorrelationID(r.Header.Get(HeaderCorrelationID))
		switch {
		case id == "":
			id = NewCorrelationID()
		case !id.IsValid():
			http.Error(w, "Invalid X-Correlation-ID format: must be UUID", http.StatusBadRequest)
			return
		}

		w.Header().Set(HeaderCorrelationID, id.String())
		next.ServeHTTP(w, r.WithContext(ToContext(r.Context(), id)))
	})
}
