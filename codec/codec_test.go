package codec

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type sample struct {
	A  uint32            `cbor:"a" json:"a" msgpack:"a"`
	B  string            `cbor:"b" json:"b" msgpack:"b"`
	C  float64           `cbor:"c" json:"c" msgpack:"c"`
	M  map[string]string `cbor:"m" json:"m" msgpack:"m"`
	At time.Time         `cbor:"at" json:"at" msgpack:"at"`
}

func newSample() sample {
	return sample{
		A:  1,
		B:  "two",
		C:  3.0,
		M:  map[string]string{"z": "1", "a": "2", "m": "3"},
		At: time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC),
	}
}

func roundTrip[V any](t *testing.T, cd Codec[V], v V) V {
	t.Helper()
	b, err := cd.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := cd.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	want := newSample()
	cases := map[string]Codec[sample]{
		"cbor-det":   MustCBOR[sample](true),
		"cbor":       MustCBOR[sample](false),
		"msgpack":    Msgpack[sample]{},
		"json":       JSON[sample]{},
		"framed":     Framed[sample]{Inner: MustCBOR[sample](true)},
		"limit":      LimitCodec[sample]{Inner: Msgpack[sample]{}, MaxDecode: 1 << 10},
		"framed-msg": Framed[sample]{Inner: Msgpack[sample]{}},
	}
	for name, cd := range cases {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, cd, want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCBORDeterministic(t *testing.T) {
	cd := MustCBOR[sample](true)
	first, err := cd.Encode(newSample())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		b, err := cd.Encode(newSample())
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, b) {
			t.Fatalf("encoding %d differs from first", i)
		}
	}
}

func TestCBORUntypedMapsDecodeWithStringKeys(t *testing.T) {
	b, err := MustCBOR[map[string]any](true).Encode(map[string]any{"k": map[string]any{"n": 1}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := MustCBOR[any](true).Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("top level decoded as %T", got)
	}
	if _, ok := m["k"].(map[string]any); !ok {
		t.Fatalf("nested map decoded as %T", m["k"])
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	v := newSample()
	codecs := map[string]Codec[sample]{
		"cbor":    MustCBOR[sample](true),
		"msgpack": Msgpack[sample]{},
		"json":    JSON[sample]{},
		"framed":  Framed[sample]{Inner: MustCBOR[sample](true)},
	}
	for name, cd := range codecs {
		t.Run(name, func(t *testing.T) {
			valid, err := cd.Encode(v)
			if err != nil {
				t.Fatal(err)
			}
			bad := map[string][]byte{
				"empty":     nil,
				"truncated": valid[:len(valid)/2],
				"lastbyte":  valid[:len(valid)-1],
				"trailing":  append(append([]byte(nil), valid...), 0x01),
			}
			for kind, b := range bad {
				got, err := cd.Decode(b)
				if err == nil {
					t.Fatalf("%s: expected error, got %+v", kind, got)
				}
				if diff := cmp.Diff(sample{}, got); diff != "" {
					t.Fatalf("%s: failed decode must return zero value:\n%s", kind, diff)
				}
			}
		})
	}
}

func TestLimitCodec(t *testing.T) {
	cd := LimitCodec[string]{Inner: String{}, MaxDecode: 4}
	if _, err := cd.Decode([]byte("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if s, err := cd.Decode([]byte("1234")); err != nil || s != "1234" {
		t.Fatalf("Decode at limit: %q %v", s, err)
	}
	unlimited := LimitCodec[string]{Inner: String{}}
	if _, err := unlimited.Decode(bytes.Repeat([]byte("x"), 1<<16)); err != nil {
		t.Fatalf("MaxDecode=0 must disable the limit: %v", err)
	}
}

func TestRawCodecs(t *testing.T) {
	if _, err := (Bytes{}).Decode(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Bytes: expected ErrEmpty, got %v", err)
	}
	if _, err := (String{}).Decode([]byte{}); !errors.Is(err, ErrEmpty) {
		t.Fatalf("String: expected ErrEmpty, got %v", err)
	}

	in := []byte("abc")
	out, err := Bytes{}.Decode(in)
	if err != nil {
		t.Fatal(err)
	}
	in[0] = 'X'
	if string(out) != "abc" {
		t.Fatalf("Bytes.Decode must copy its input, got %q", out)
	}
}

func TestFramedCatchesShortPayloads(t *testing.T) {
	cd := Framed[string]{Inner: String{}}
	b, err := cd.Encode("hello")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cd.Decode(b[:len(b)-2]); !errors.Is(err, ErrCorruptFrame) {
		t.Fatalf("expected ErrCorruptFrame, got %v", err)
	}
	if _, err := cd.Decode([]byte("hello")); !errors.Is(err, ErrCorruptFrame) {
		t.Fatalf("unframed input must be rejected, got %v", err)
	}
}

func TestFramedPropagatesInnerEncodeError(t *testing.T) {
	cd := Framed[chan int]{Inner: JSON[chan int]{}}
	if _, err := cd.Encode(make(chan int)); err == nil {
		t.Fatalf("expected encode error for chan")
	}
}

func TestProtobuf(t *testing.T) {
	cd := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	in, err := structpb.NewStruct(map[string]any{"a": 1.0, "b": "two", "c": true})
	if err != nil {
		t.Fatal(err)
	}
	got := roundTrip[*structpb.Struct](t, cd, in)
	if !proto.Equal(in, got) {
		t.Fatalf("mismatch: got %v want %v", got, in)
	}

	wcd := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := wcd.Encode(wrapperspb.String("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wcd.Decode(b[:len(b)-1]); err == nil {
		t.Fatalf("expected error on truncated protobuf")
	}
}
