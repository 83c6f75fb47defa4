package msgpack

import "testing"

type event struct {
	Name  string
	Count int
}

func TestCodecRoundTrip(t *testing.T) {
	c := New[event]()
	want := event{Name: "deploy", Count: 3}

	b, err := c.Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(b, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, wanted %+v", got, want)
	}
}

func TestCodecIgnoresTypeTag(t *testing.T) {
	c := New[event]()
	b, err := c.Encode(event{Name: "x", Count: 1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	a, err := c.Decode(b, 7)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b2, err := c.Decode(b, 200)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if a != b2 {
		t.Fatalf("decode result depended on the type tag: %+v vs %+v", a, b2)
	}
}
