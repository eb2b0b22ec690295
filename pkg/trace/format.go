package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format is an on-disk encoding.
type Format string

const (
	JSON      Format = "json"
	ProtoJSON Format = "protojson"
	MsgPack   Format = "msgpack"
)

// ErrUnknownFormat is returned for an unsupported format name or file extension.
var ErrUnknownFormat = errors.New("unknown trace format")

// ParseFormat accepts a format name, empty meaning JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return JSON, nil
	case JSON, ProtoJSON, MsgPack:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext is the file extension of the format.
func (f Format) Ext() string {
	switch f {
	case ProtoJSON:
		return ".pb.json"
	case MsgPack:
		return ".msgpack"
	}
	return ".json"
}

// FormatOf guesses the format from a file name.
func FormatOf(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ProtoJSON.Ext()):
		return ProtoJSON, nil
	case strings.HasSuffix(path, MsgPack.Ext()):
		return MsgPack, nil
	case strings.HasSuffix(path, JSON.Ext()):
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
}

type protoMessage interface {
	ToProto() (*structpb.Struct, error)
}

// Write encodes v to w.
func Write(w io.Writer, v any, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case MsgPack:
		return msgpack.NewEncoder(w).Encode(v)
	case ProtoJSON:
		st, err := toStruct(v)
		if err != nil {
			return err
		}
		b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(st)
		if err != nil {
			return fmt.Errorf("failed to marshal protojson: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Read decodes r into v.
func Read(r io.Reader, v any, f Format) error {
	switch f {
	case JSON:
		return json.NewDecoder(r).Decode(v)
	case MsgPack:
		return msgpack.NewDecoder(r).Decode(v)
	case ProtoJSON:
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		var st structpb.Struct
		if err := protojson.Unmarshal(b, &st); err != nil {
			return fmt.Errorf("failed to unmarshal protojson: %w", err)
		}
		return fromStruct(&st, v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func toStruct(v any) (*structpb.Struct, error) {
	if m, ok := v.(protoMessage); ok {
		return m.ToProto()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%T is not an object: %w", v, err)
	}
	return structpb.NewStruct(m)
}

func fromStruct(st *structpb.Struct, v any) error {
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// SaveFile writes v to dir/name plus the format extension and returns the path.
func SaveFile(dir, name string, v any, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, name+f.Ext())
	return path, writeFile(path, v, f)
}

// WriteFile writes v to path, the format comes from its extension.
func WriteFile(path string, v any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	return writeFile(path, v, f)
}

func writeFile(path string, v any, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(out, v, f); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

// LoadFile reads a file written by SaveFile, the format comes from its extension.
func LoadFile(path string, v any) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := Read(in, v, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
