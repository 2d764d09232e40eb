package httpapi

import (
	"mime"
	"net/http"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/types"
)

const protobufContentType = "application/x-protobuf"

// wantsProtobuf reports whether any media range in the Accept header names
// a protobuf encoding.  Quality values are ignored.
func wantsProtobuf(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case protobufContentType, "application/protobuf":
			return true
		}
	}
	return false
}

// statusToProto carries the JSON field names over unchanged so that both
// encodings can be decoded with the same keys.
func statusToProto(r types.StatusResponse) (*structpb.Struct, error) {
	fields := map[string]any{
		"ok":             r.OK,
		"known":          r.Known,
		"on_for_seconds": r.OnForSeconds,
		"on_for":         r.OnFor,
		"server_time":    r.ServerTime,
	}
	if r.PowerResumedAt != "" {
		fields["power_resumed_at"] = r.PowerResumedAt
	}
	return structpb.NewStruct(fields)
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", protobufContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
